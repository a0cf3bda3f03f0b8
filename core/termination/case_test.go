package termination

import (
	"context"
	"testing"
	"time"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps one contract and its cases in memory and mimics the
// server-side procedures by flipping both rows together.
type fakeStore struct {
	contract models.Contract
	cases    map[int64]*models.TerminationCase
	nextID   int64
}

func newFakeStore(contract models.Contract) *fakeStore {
	return &fakeStore{contract: contract, cases: map[int64]*models.TerminationCase{}, nextID: 1}
}

func (f *fakeStore) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	if id != f.contract.ID {
		return nil, faults.NotFoundf("", "contract %d not found", id)
	}
	c := f.contract
	return &c, nil
}

func (f *fakeStore) FindOpenCase(ctx context.Context, contractID int64) (*models.TerminationCase, error) {
	for _, c := range f.cases {
		if c.ContractID == contractID && !models.IsTerminalCaseStatus(c.Status) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetCase(ctx context.Context, id int64) (*models.TerminationCase, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, faults.NotFoundf("", "termination case %d not found", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) applyFields(c *models.TerminationCase, fields map[string]any) {
	for col, val := range fields {
		switch col {
		case "status":
			c.Status = val.(string)
		case "checklist":
			c.Checklist = val.(models.Checklist)
		case "doc_submitted_date":
			d := val.(models.Date)
			c.DocSubmittedDate = &d
		case "doc_approved_date":
			d := val.(models.Date)
			c.DocApprovedDate = &d
		case "refund_date":
			d := val.(models.Date)
			c.RefundDate = &d
		case "deduction_days":
			c.DeductionDays = val.(int)
		case "deduction_amount":
			d := val.(decimal.Decimal)
			c.DeductionAmount = &d
		case "other_deductions":
			d := val.(decimal.Decimal)
			c.OtherDeductions = &d
		case "refund_amount":
			d := val.(decimal.Decimal)
			c.RefundAmount = &d
		case "refund_method":
			c.RefundMethod = val.(string)
		case "refund_account":
			c.RefundAccount = val.(string)
		case "refund_receipt":
			c.RefundReceipt = val.(string)
		case "cancel_reason":
			c.CancelReason = val.(string)
		case "cancelled_at":
			t := val.(time.Time)
			c.CancelledAt = &t
		case "notes":
			c.Notes = val.(string)
		}
	}
}

func (f *fakeStore) UpdateCase(ctx context.Context, id int64, fields map[string]any) (*models.TerminationCase, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, faults.NotFoundf("", "termination case %d not found", id)
	}
	f.applyFields(c, fields)
	copied := *c
	return &copied, nil
}

func (f *fakeStore) OpenCase(ctx context.Context, c *models.TerminationCase) (*models.TerminationCase, error) {
	stored := *c
	stored.ID = f.nextID
	f.nextID++
	f.cases[stored.ID] = &stored
	f.contract.Status = models.ContractPendingTermination
	copied := stored
	return &copied, nil
}

func (f *fakeStore) CloseCase(ctx context.Context, caseID int64, fields map[string]any) (*models.TerminationCase, error) {
	c, ok := f.cases[caseID]
	if !ok {
		return nil, faults.NotFoundf("", "termination case %d not found", caseID)
	}
	f.applyFields(c, fields)
	f.contract.Status = models.ContractTerminated
	copied := *c
	return &copied, nil
}

func (f *fakeStore) CancelCase(ctx context.Context, caseID int64, fields map[string]any) (*models.TerminationCase, error) {
	c, ok := f.cases[caseID]
	if !ok {
		return nil, faults.NotFoundf("", "termination case %d not found", caseID)
	}
	f.applyFields(c, fields)
	f.contract.Status = models.ContractActive
	copied := *c
	return &copied, nil
}

func leasedContract() models.Contract {
	return models.Contract{
		ID:          42,
		Status:      models.ContractActive,
		MonthlyRent: decimal.NewFromInt(1800),
		Deposit:     decimal.NewFromInt(6000),
		EndDate:     models.NewDate(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)),
	}
}

func newTestService(store *fakeStore) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateCase(t *testing.T) {
	store := newFakeStore(leasedContract())
	svc := newTestService(store)

	c, err := svc.CreateCase(context.Background(), CreateParams{
		ContractID:      42,
		TerminationType: models.TerminationNotRenewing,
	})
	require.NoError(t, err)

	assert.Equal(t, models.CaseNoticeReceived, c.Status)
	assert.Equal(t, models.ContractPendingTermination, store.contract.Status)
	assert.True(t, c.DepositAmount.Equal(decimal.NewFromInt(6000)), "deposit snapshot")
	assert.Equal(t, "60", c.DailyRate.String(), "1800/30 rounded to 2dp")
	assert.Equal(t, "2026-05-01", c.NoticeDate.String(), "defaults to today")
	assert.Equal(t, "2026-06-30", c.ExpectedEndDate.String(), "defaults to contract end")
	assert.Equal(t, 0, c.Checklist.Progress())
}

func TestCreateCaseDailyRateRounding(t *testing.T) {
	contract := leasedContract()
	contract.MonthlyRent = decimal.NewFromInt(1000)
	store := newFakeStore(contract)
	svc := newTestService(store)

	c, err := svc.CreateCase(context.Background(), CreateParams{
		ContractID:      42,
		TerminationType: models.TerminationEarly,
	})
	require.NoError(t, err)
	assert.Equal(t, "33.33", c.DailyRate.String())
}

func TestCreateCaseContractNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(leasedContract()))

	_, err := svc.CreateCase(context.Background(), CreateParams{
		ContractID:      99,
		TerminationType: models.TerminationEarly,
	})
	require.Error(t, err)
	assert.Equal(t, faults.NotFound, faults.KindOf(err))
}

func TestCreateCaseInvalidType(t *testing.T) {
	svc := newTestService(newFakeStore(leasedContract()))

	_, err := svc.CreateCase(context.Background(), CreateParams{
		ContractID:      42,
		TerminationType: "eviction",
	})
	require.Error(t, err)
	assert.Equal(t, faults.Validation, faults.KindOf(err))
	assert.Contains(t, err.Error(), "early, not_renewing, breach")
}

func TestCreateCaseUniqueness(t *testing.T) {
	store := newFakeStore(leasedContract())
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.CreateCase(ctx, CreateParams{ContractID: 42, TerminationType: models.TerminationEarly})
	require.NoError(t, err)

	_, err = svc.CreateCase(ctx, CreateParams{ContractID: 42, TerminationType: models.TerminationEarly})
	require.Error(t, err)
	assert.Equal(t, faults.Conflict, faults.KindOf(err))
	assert.Contains(t, err.Error(), "1", "conflict names the existing case id")

	// a cancelled case no longer blocks a new one
	_, err = svc.CancelCase(ctx, first.ID, "gave up")
	require.NoError(t, err)

	_, err = svc.CreateCase(ctx, CreateParams{ContractID: 42, TerminationType: models.TerminationEarly})
	require.NoError(t, err)
}

func TestUpdateStatus(t *testing.T) {
	store := newFakeStore(leasedContract())
	svc := newTestService(store)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateParams{ContractID: 42, TerminationType: models.TerminationEarly})
	require.NoError(t, err)

	// no transition table between open statuses: jumping ahead is allowed
	updated, err := svc.UpdateStatus(ctx, c.ID, models.CasePendingDoc)
	require.NoError(t, err)
	assert.Equal(t, models.CasePendingDoc, updated.Status)

	// and going back is allowed too
	updated, err = svc.UpdateStatus(ctx, c.ID, models.CaseMovingOut)
	require.NoError(t, err)
	assert.Equal(t, models.CaseMovingOut, updated.Status)

	_, err = svc.UpdateStatus(ctx, c.ID, "ghosted")
	require.Error(t, err)
	assert.Equal(t, faults.Validation, faults.KindOf(err))

	_, err = svc.UpdateStatus(ctx, c.ID, models.CaseCompleted)
	require.Error(t, err)
	assert.Equal(t, faults.Validation, faults.KindOf(err), "terminal statuses go through refund/cancel")
}

func TestCancelCase(t *testing.T) {
	store := newFakeStore(leasedContract())
	svc := newTestService(store)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, CreateParams{ContractID: 42, TerminationType: models.TerminationNotRenewing})
	require.NoError(t, err)
	require.Equal(t, models.ContractPendingTermination, store.contract.Status)

	cancelled, err := svc.CancelCase(ctx, c.ID, "customer renewed instead")
	require.NoError(t, err)

	assert.Equal(t, models.CaseCancelled, cancelled.Status)
	assert.Equal(t, "customer renewed instead", cancelled.CancelReason)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, models.ContractActive, store.contract.Status, "contract reverts to active")

	// terminal: a second cancel fails
	_, err = svc.CancelCase(ctx, c.ID, "again")
	require.Error(t, err)
	assert.Equal(t, faults.Conflict, faults.KindOf(err))
}

func TestCancelCaseRequiresReason(t *testing.T) {
	svc := newTestService(newFakeStore(leasedContract()))

	_, err := svc.CancelCase(context.Background(), 1, "")
	require.Error(t, err)
	assert.Equal(t, faults.Validation, faults.KindOf(err))
}
