package renewal

import (
	"context"
	"encoding/json"
	"strconv"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
	"github.com/shopspring/decimal"
)

// CaseStore is the gateway capability for the renewal-case flow.
type CaseStore interface {
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	InsertRenewalCase(ctx context.Context, c *models.RenewalCase) (*models.RenewalCase, error)
	GetRenewalCase(ctx context.Context, id int64) (*models.RenewalCase, error)
	UpdateRenewalCase(ctx context.Context, id int64, fields map[string]any) (*models.RenewalCase, error)
	// GetOperationRecord returns (nil, nil) when no record exists for the key.
	GetOperationRecord(ctx context.Context, key string) (*models.OperationRecord, error)
	// ActivateRenewal invokes the server-side procedure that flips the case
	// to activated, applies the new terms to the contract and writes the
	// operation record, all in one transaction.
	ActivateRenewal(ctx context.Context, caseID int64, operationKey string) (json.RawMessage, error)
}

// CaseService runs the two-phase renewal flow: drafts are free to create
// and retry, activation is a keyed atomic commit.
type CaseService struct {
	store CaseStore
}

func NewCaseService(store CaseStore) *CaseService {
	return &CaseService{store: store}
}

// DraftTerms are the renewal terms captured on a draft.
type DraftTerms struct {
	NewMonthlyRent decimal.Decimal
	NewEndDate     models.Date
	Notes          string
	CreatedBy      string
}

// CreateDraft records a renewal intent. Drafts have no financial effect,
// so there is no idempotency guard here; a duplicate draft is harmless
// and visible.
func (s *CaseService) CreateDraft(ctx context.Context, contractID int64, terms DraftTerms) (*models.RenewalCase, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractActive {
		return nil, faults.Conflictf(contract.ContractNumber,
			"contract status is %s, only active contracts can draft a renewal", contract.Status)
	}
	if terms.NewMonthlyRent.IsNegative() {
		return nil, faults.Validationf("new_monthly_rent must not be negative")
	}
	if terms.NewEndDate.IsZero() {
		return nil, faults.Validationf("new_end_date is required")
	}
	if !terms.NewEndDate.After(contract.EndDate.Time) {
		return nil, faults.Validationf("new_end_date %s must be after current end date %s",
			terms.NewEndDate, contract.EndDate)
	}

	return s.store.InsertRenewalCase(ctx, &models.RenewalCase{
		ContractID:     contractID,
		Status:         models.RenewalCaseDraft,
		NewMonthlyRent: terms.NewMonthlyRent,
		NewEndDate:     terms.NewEndDate,
		Notes:          terms.Notes,
		CreatedBy:      terms.CreatedBy,
	})
}

// ActivateResult is what an activation commit (or its replay) reports.
type ActivateResult struct {
	CaseID        int64  `json:"case_id"`
	ContractID    int64  `json:"contract_id"`
	Status        string `json:"status"`
	NewEndDate    string `json:"new_end_date"`
	NewContractID int64  `json:"new_contract_id,omitempty"`
	// Replayed is true when a prior commit with the same operation key was
	// found and its stored result returned instead of re-executing.
	Replayed bool `json:"replayed"`
}

// Activate commits a drafted renewal under the caller-supplied operation
// key. Safe to retry after a timeout: a completed record with the same key
// short-circuits to the stored result, so the contract writes happen at
// most once.
func (s *CaseService) Activate(ctx context.Context, caseID int64, operationKey string) (*ActivateResult, error) {
	if operationKey == "" {
		return nil, faults.Validationf("operation_key is required")
	}

	record, err := s.store.GetOperationRecord(ctx, operationKey)
	if err != nil {
		return nil, err
	}
	if record != nil {
		var result ActivateResult
		if err := json.Unmarshal(record.Result, &result); err != nil {
			return nil, faults.FromUpstream(err, "decode stored operation result")
		}
		result.Replayed = true
		return &result, nil
	}

	rc, err := s.store.GetRenewalCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	switch rc.Status {
	case models.RenewalCaseDraft:
	case models.RenewalCaseActivated:
		return nil, faults.Conflictf(itoa(rc.ID), "renewal case already activated")
	default:
		return nil, faults.Conflictf(itoa(rc.ID), "renewal case is %s and cannot be activated", rc.Status)
	}

	raw, err := s.store.ActivateRenewal(ctx, caseID, operationKey)
	if err != nil {
		return nil, err
	}

	var result ActivateResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, faults.FromUpstream(err, "decode activation result")
	}
	return &result, nil
}

// CancelDraft withdraws a draft before activation.
func (s *CaseService) CancelDraft(ctx context.Context, caseID int64, reason string) (*models.RenewalCase, error) {
	if reason == "" {
		return nil, faults.Validationf("cancel reason is required")
	}

	rc, err := s.store.GetRenewalCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if rc.Status != models.RenewalCaseDraft {
		return nil, faults.Conflictf(itoa(rc.ID), "renewal case is %s, only drafts can be cancelled", rc.Status)
	}

	return s.store.UpdateRenewalCase(ctx, caseID, map[string]any{
		"status":        models.RenewalCaseCancelled,
		"cancel_reason": reason,
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
