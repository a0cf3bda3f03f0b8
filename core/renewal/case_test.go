package renewal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaseStore struct {
	contract models.Contract
	rc       *models.RenewalCase
	record   *models.OperationRecord

	inserted    *models.RenewalCase
	rpcCalls    int
	rpcResult   json.RawMessage
	lastUpdates map[string]any
}

func (f *fakeCaseStore) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	if id != f.contract.ID {
		return nil, faults.NotFoundf("", "contract %d not found", id)
	}
	c := f.contract
	return &c, nil
}

func (f *fakeCaseStore) InsertRenewalCase(ctx context.Context, c *models.RenewalCase) (*models.RenewalCase, error) {
	inserted := *c
	inserted.ID = 7
	f.inserted = &inserted
	return &inserted, nil
}

func (f *fakeCaseStore) GetRenewalCase(ctx context.Context, id int64) (*models.RenewalCase, error) {
	if f.rc == nil || f.rc.ID != id {
		return nil, faults.NotFoundf("", "renewal case %d not found", id)
	}
	c := *f.rc
	return &c, nil
}

func (f *fakeCaseStore) UpdateRenewalCase(ctx context.Context, id int64, fields map[string]any) (*models.RenewalCase, error) {
	f.lastUpdates = fields
	if status, ok := fields["status"].(string); ok {
		f.rc.Status = status
	}
	if reason, ok := fields["cancel_reason"].(string); ok {
		f.rc.CancelReason = reason
	}
	c := *f.rc
	return &c, nil
}

func (f *fakeCaseStore) GetOperationRecord(ctx context.Context, key string) (*models.OperationRecord, error) {
	if f.record != nil && f.record.OperationKey == key {
		return f.record, nil
	}
	return nil, nil
}

func (f *fakeCaseStore) ActivateRenewal(ctx context.Context, caseID int64, operationKey string) (json.RawMessage, error) {
	f.rpcCalls++
	return f.rpcResult, nil
}

func activeContract() models.Contract {
	return models.Contract{
		ID:          42,
		Status:      models.ContractActive,
		MonthlyRent: decimal.NewFromInt(12000),
		EndDate:     models.NewDate(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)),
	}
}

func TestCreateDraft(t *testing.T) {
	store := &fakeCaseStore{contract: activeContract()}
	svc := NewCaseService(store)

	terms := DraftTerms{
		NewMonthlyRent: decimal.NewFromInt(12500),
		NewEndDate:     models.NewDate(time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)),
		CreatedBy:      "agent",
	}
	rc, err := svc.CreateDraft(context.Background(), 42, terms)
	require.NoError(t, err)

	assert.Equal(t, models.RenewalCaseDraft, rc.Status)
	assert.Equal(t, int64(42), rc.ContractID)
	assert.True(t, rc.NewMonthlyRent.Equal(decimal.NewFromInt(12500)))
}

func TestCreateDraftValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Contract)
		terms  DraftTerms
		kind   faults.Kind
	}{
		{
			name:   "terminated contract",
			mutate: func(c *models.Contract) { c.Status = models.ContractTerminated },
			terms:  DraftTerms{NewMonthlyRent: decimal.NewFromInt(1), NewEndDate: models.NewDate(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))},
			kind:   faults.Conflict,
		},
		{
			name:   "missing end date",
			mutate: func(c *models.Contract) {},
			terms:  DraftTerms{NewMonthlyRent: decimal.NewFromInt(1)},
			kind:   faults.Validation,
		},
		{
			name:   "end date not after current",
			mutate: func(c *models.Contract) {},
			terms:  DraftTerms{NewMonthlyRent: decimal.NewFromInt(1), NewEndDate: models.NewDate(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))},
			kind:   faults.Validation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract := activeContract()
			tt.mutate(&contract)
			svc := NewCaseService(&fakeCaseStore{contract: contract})

			_, err := svc.CreateDraft(context.Background(), 42, tt.terms)
			require.Error(t, err)
			assert.Equal(t, tt.kind, faults.KindOf(err))
		})
	}
}

func TestActivateCommitsOnce(t *testing.T) {
	store := &fakeCaseStore{
		contract:  activeContract(),
		rc:        &models.RenewalCase{ID: 7, ContractID: 42, Status: models.RenewalCaseDraft},
		rpcResult: json.RawMessage(`{"case_id":7,"contract_id":42,"status":"activated","new_end_date":"2027-06-30"}`),
	}
	svc := NewCaseService(store)

	res, err := svc.Activate(context.Background(), 7, "op-key-1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.rpcCalls)
	assert.Equal(t, models.RenewalCaseActivated, res.Status)
	assert.False(t, res.Replayed)
}

// Retrying a commit whose record already exists must return the stored
// result without touching the store again.
func TestActivateReplaysStoredResult(t *testing.T) {
	store := &fakeCaseStore{
		contract: activeContract(),
		rc:       &models.RenewalCase{ID: 7, ContractID: 42, Status: models.RenewalCaseActivated},
		record: &models.OperationRecord{
			OperationKey: "op-key-1",
			Operation:    "activate_renewal",
			Result:       json.RawMessage(`{"case_id":7,"contract_id":42,"status":"activated","new_end_date":"2027-06-30"}`),
		},
	}
	svc := NewCaseService(store)

	res, err := svc.Activate(context.Background(), 7, "op-key-1")
	require.NoError(t, err)

	assert.True(t, res.Replayed)
	assert.Equal(t, int64(7), res.CaseID)
	assert.Zero(t, store.rpcCalls, "replay must not re-execute the procedure")
}

func TestActivateRequiresDraft(t *testing.T) {
	store := &fakeCaseStore{
		contract: activeContract(),
		rc:       &models.RenewalCase{ID: 7, Status: models.RenewalCaseCancelled},
	}
	svc := NewCaseService(store)

	_, err := svc.Activate(context.Background(), 7, "op-key-2")
	require.Error(t, err)
	assert.Equal(t, faults.Conflict, faults.KindOf(err))
}

func TestActivateRequiresOperationKey(t *testing.T) {
	svc := NewCaseService(&fakeCaseStore{contract: activeContract()})

	_, err := svc.Activate(context.Background(), 7, "")
	require.Error(t, err)
	assert.Equal(t, faults.Validation, faults.KindOf(err))
}

func TestCancelDraft(t *testing.T) {
	store := &fakeCaseStore{
		contract: activeContract(),
		rc:       &models.RenewalCase{ID: 7, Status: models.RenewalCaseDraft},
	}
	svc := NewCaseService(store)

	rc, err := svc.CancelDraft(context.Background(), 7, "customer changed mind")
	require.NoError(t, err)
	assert.Equal(t, models.RenewalCaseCancelled, rc.Status)

	_, err = svc.CancelDraft(context.Background(), 7, "again")
	require.Error(t, err)
	assert.Equal(t, faults.Conflict, faults.KindOf(err))
}
