package einvoice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	records   map[string]*models.OperationRecord
	ackErr    error
	ackWrites int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[string]*models.OperationRecord{}}
}

func (f *fakeLedger) GetOperationRecord(ctx context.Context, key string) (*models.OperationRecord, error) {
	return f.records[key], nil
}

func (f *fakeLedger) RecordInvoiceIssued(ctx context.Context, operationKey string, result any) error {
	if f.ackErr != nil {
		return f.ackErr
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	f.records[operationKey] = &models.OperationRecord{
		OperationKey: operationKey,
		Operation:    "issue_invoice",
		Result:       raw,
	}
	f.ackWrites++
	return nil
}

func newProviderServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Write([]byte(`{"invoice_number":"AB-12345678"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func validInvoice() Invoice {
	return Invoice{
		ContractID: 42,
		BuyerName:  "Acme Ltd",
		Amount:     decimal.NewFromInt(12500),
	}
}

func TestIssueCallsProviderAndRecordsAck(t *testing.T) {
	calls := 0
	srv := newProviderServer(t, &calls)
	ledger := newFakeLedger()
	client := NewClient(srv.URL, "key", ledger)

	res, err := client.Issue(context.Background(), validInvoice(), "op-1")
	require.NoError(t, err)

	assert.Equal(t, "AB-12345678", res.InvoiceNumber)
	assert.False(t, res.Replayed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, ledger.ackWrites)
	require.NotNil(t, ledger.records["op-1"])
}

func TestIssueReplaysStoredResult(t *testing.T) {
	calls := 0
	srv := newProviderServer(t, &calls)
	ledger := newFakeLedger()
	ledger.records["op-1"] = &models.OperationRecord{
		OperationKey: "op-1",
		Operation:    "issue_invoice",
		Result:       json.RawMessage(`{"invoice_number":"AB-00000001"}`),
	}
	client := NewClient(srv.URL, "key", ledger)

	res, err := client.Issue(context.Background(), validInvoice(), "op-1")
	require.NoError(t, err)

	assert.Equal(t, "AB-00000001", res.InvoiceNumber)
	assert.True(t, res.Replayed)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, ledger.ackWrites)
}

func TestIssueRequiresOperationKey(t *testing.T) {
	calls := 0
	srv := newProviderServer(t, &calls)
	client := NewClient(srv.URL, "key", newFakeLedger())

	_, err := client.Issue(context.Background(), validInvoice(), "")
	require.Error(t, err)
	assert.Equal(t, faults.Validation, faults.KindOf(err))
	assert.Equal(t, 0, calls)
}

func TestIssueRejectsNonPositiveAmount(t *testing.T) {
	calls := 0
	srv := newProviderServer(t, &calls)
	client := NewClient(srv.URL, "key", newFakeLedger())

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		inv := validInvoice()
		inv.Amount = amount
		_, err := client.Issue(context.Background(), inv, "op-1")
		require.Error(t, err)
		assert.Equal(t, faults.Validation, faults.KindOf(err))
	}
	assert.Equal(t, 0, calls)
}

func TestIssueSurfacesAckFailureForKeyedRetry(t *testing.T) {
	calls := 0
	srv := newProviderServer(t, &calls)
	ledger := newFakeLedger()
	ledger.ackErr = errors.New("ledger unavailable")
	client := NewClient(srv.URL, "key", ledger)

	_, err := client.Issue(context.Background(), validInvoice(), "op-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ackErr)
	// The provider was reached; the caller retries under the same key.
	assert.Equal(t, 1, calls)
	assert.Nil(t, ledger.records["op-1"])

	ledger.ackErr = nil
	res, err := client.Issue(context.Background(), validInvoice(), "op-1")
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, ledger.ackWrites)
}

func TestIssueRejectsCorruptStoredResult(t *testing.T) {
	calls := 0
	srv := newProviderServer(t, &calls)
	ledger := newFakeLedger()
	ledger.records["op-1"] = &models.OperationRecord{
		OperationKey: "op-1",
		Result:       json.RawMessage(`not-json`),
	}
	client := NewClient(srv.URL, "key", ledger)

	_, err := client.Issue(context.Background(), validInvoice(), "op-1")
	require.Error(t, err)
	assert.Equal(t, faults.Upstream, faults.KindOf(err))
	assert.Equal(t, 0, calls)
}
