// Package termination tracks move-out cases: notice to settlement to refund,
// with an 8-item checklist and a deposit settlement calculation.
package termination

import (
	"context"
	"slices"
	"strconv"
	"time"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
)

// Store is the data-gateway capability for termination cases. The three
// lifecycle transitions that must also flip the contract status go through
// dedicated methods backed by server-side procedures, so the case/contract
// pair is committed atomically.
type Store interface {
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	// FindOpenCase returns the non-terminal case for a contract, or (nil, nil).
	FindOpenCase(ctx context.Context, contractID int64) (*models.TerminationCase, error)
	GetCase(ctx context.Context, id int64) (*models.TerminationCase, error)
	UpdateCase(ctx context.Context, id int64, fields map[string]any) (*models.TerminationCase, error)

	// OpenCase inserts the case and sets the contract to pending_termination.
	OpenCase(ctx context.Context, c *models.TerminationCase) (*models.TerminationCase, error)
	// CloseCase completes the case and sets the contract to terminated.
	CloseCase(ctx context.Context, caseID int64, fields map[string]any) (*models.TerminationCase, error)
	// CancelCase cancels the case and restores the contract to active.
	CancelCase(ctx context.Context, caseID int64, fields map[string]any) (*models.TerminationCase, error)
}

// Service runs every termination-case operation.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateParams are the inputs for opening a case.
type CreateParams struct {
	ContractID      int64
	TerminationType string
	NoticeDate      models.Date
	ExpectedEndDate models.Date
	Notes           string
	CreatedBy       string
}

// CreateCase opens a termination case for a contract. At most one
// non-terminal case may exist per contract; an existing open case is a
// conflict naming its id. The application-level check here is backed by a
// partial unique index on contract_id in the store, so a concurrent double
// create fails on commit rather than slipping through.
func (s *Service) CreateCase(ctx context.Context, p CreateParams) (*models.TerminationCase, error) {
	if !slices.Contains(models.TerminationTypes, p.TerminationType) {
		return nil, faults.InvalidEnum("termination_type", p.TerminationType, models.TerminationTypes)
	}

	contract, err := s.store.GetContract(ctx, p.ContractID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindOpenCase(ctx, p.ContractID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, faults.Conflictf(itoa(existing.ID),
			"contract %d already has an open termination case %d (%s)",
			p.ContractID, existing.ID, existing.Status)
	}

	notice := p.NoticeDate
	if notice.IsZero() {
		notice = models.NewDate(s.now())
	}
	expectedEnd := p.ExpectedEndDate
	if expectedEnd.IsZero() {
		expectedEnd = contract.EndDate
	}

	checklist := models.Checklist{}
	for _, item := range models.ChecklistItems {
		checklist[item] = false
	}

	c := &models.TerminationCase{
		ContractID:      p.ContractID,
		TerminationType: p.TerminationType,
		Status:          models.CaseNoticeReceived,
		NoticeDate:      notice,
		ExpectedEndDate: expectedEnd,
		Checklist:       checklist,
		DepositAmount:   contract.Deposit,
		DailyRate:       contract.MonthlyRent.Div(thirty).Round(2),
		Notes:           p.Notes,
		CreatedBy:       p.CreatedBy,
	}

	return s.store.OpenCase(ctx, c)
}

// UpdateStatus moves the case to any enumerated non-terminal target.
// No transition table is enforced between the open statuses; branch staff
// reorder steps in practice. Completion and cancellation have their own
// operations and are refused here.
func (s *Service) UpdateStatus(ctx context.Context, caseID int64, status string) (*models.TerminationCase, error) {
	if !slices.Contains(models.CaseStatuses, status) {
		return nil, faults.InvalidEnum("status", status, models.CaseStatuses)
	}
	if models.IsTerminalCaseStatus(status) {
		return nil, faults.Validationf("status %s is terminal, use the refund or cancel operation", status)
	}

	c, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalCaseStatus(c.Status) {
		return nil, faults.Conflictf(itoa(c.ID), "case is already %s", c.Status)
	}

	return s.store.UpdateCase(ctx, caseID, map[string]any{"status": status})
}

// GetCase fetches one case.
func (s *Service) GetCase(ctx context.Context, id int64) (*models.TerminationCase, error) {
	return s.store.GetCase(ctx, id)
}

// CancelCase closes the case without terminating: the contract goes back
// to active.
func (s *Service) CancelCase(ctx context.Context, caseID int64, reason string) (*models.TerminationCase, error) {
	if reason == "" {
		return nil, faults.Validationf("cancel reason is required")
	}

	c, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalCaseStatus(c.Status) {
		return nil, faults.Conflictf(itoa(c.ID), "case is already %s and cannot be cancelled", c.Status)
	}

	return s.store.CancelCase(ctx, caseID, map[string]any{
		"status":        models.CaseCancelled,
		"cancel_reason": reason,
		"cancelled_at":  s.now().UTC(),
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
