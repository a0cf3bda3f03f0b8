// Package store implements the domain gateway interfaces on top of the
// PostgREST data API. Every read is a filtered GET, every write a PATCH or
// POST asking for the row back, and every multi-table transition a call to
// a server-side procedure that commits atomically.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
	v1 "deskhive.com/deskhive/postgrest/v1"
)

type DataStore struct {
	transport *v1.Transport
}

func New(client *v1.PostgrestClient) *DataStore {
	return &DataStore{transport: client.Transport}
}

func decodeRows[T any](resp *v1.Response) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(resp.Data, &rows); err != nil {
		return nil, faults.FromUpstream(err, "decode data api response")
	}
	return rows, nil
}

func eq(id int64) string {
	return fmt.Sprintf("eq.%d", id)
}

func (s *DataStore) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	resp, err := s.transport.Get(ctx, "/contracts", map[string]string{"id": eq(id)})
	if err != nil {
		return nil, faults.FromUpstream(err, "fetch contract")
	}
	rows, err := decodeRows[models.Contract](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.NotFoundf(fmt.Sprint(id), "contract %d not found", id)
	}
	return &rows[0], nil
}

func (s *DataStore) UpdateContract(ctx context.Context, id int64, fields map[string]any) (*models.Contract, error) {
	resp, err := s.transport.Patch(ctx, "/contracts", fields, map[string]string{"id": eq(id)})
	if err != nil {
		return nil, faults.FromUpstream(err, "update contract")
	}
	rows, err := decodeRows[models.Contract](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.NotFoundf(fmt.Sprint(id), "contract %d not found", id)
	}
	return &rows[0], nil
}

// ListExpiring returns active contracts ending within the given window that
// have not been notified yet. Used by the renewal reminder job.
func (s *DataStore) ListExpiring(ctx context.Context, from, to models.Date) ([]models.Contract, error) {
	resp, err := s.transport.Get(ctx, "/contracts", map[string]string{
		"status":              "eq." + models.ContractActive,
		"renewal_notified_at": "is.null",
		"and":                 fmt.Sprintf("(end_date.gte.%s,end_date.lte.%s)", from, to),
		"order":               "end_date.asc",
	})
	if err != nil {
		return nil, faults.FromUpstream(err, "list expiring contracts")
	}
	return decodeRows[models.Contract](resp)
}

func (s *DataStore) FindOpenCase(ctx context.Context, contractID int64) (*models.TerminationCase, error) {
	resp, err := s.transport.Get(ctx, "/termination_cases", map[string]string{
		"contract_id": eq(contractID),
		"status":      "not.in.(completed,cancelled)",
		"limit":       "1",
	})
	if err != nil {
		return nil, faults.FromUpstream(err, "find open termination case")
	}
	rows, err := decodeRows[models.TerminationCase](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *DataStore) GetCase(ctx context.Context, id int64) (*models.TerminationCase, error) {
	resp, err := s.transport.Get(ctx, "/termination_cases", map[string]string{"id": eq(id)})
	if err != nil {
		return nil, faults.FromUpstream(err, "fetch termination case")
	}
	rows, err := decodeRows[models.TerminationCase](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.NotFoundf(fmt.Sprint(id), "termination case %d not found", id)
	}
	return &rows[0], nil
}

func (s *DataStore) UpdateCase(ctx context.Context, id int64, fields map[string]any) (*models.TerminationCase, error) {
	resp, err := s.transport.Patch(ctx, "/termination_cases", fields, map[string]string{"id": eq(id)})
	if err != nil {
		return nil, faults.FromUpstream(err, "update termination case")
	}
	rows, err := decodeRows[models.TerminationCase](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.NotFoundf(fmt.Sprint(id), "termination case %d not found", id)
	}
	return &rows[0], nil
}

func (s *DataStore) rpcCase(ctx context.Context, proc string, params any) (*models.TerminationCase, error) {
	resp, err := s.transport.Rpc(ctx, proc, params)
	if err != nil {
		return nil, faults.FromUpstream(err, proc)
	}
	var c models.TerminationCase
	if err := json.Unmarshal(resp.Data, &c); err != nil {
		return nil, faults.FromUpstream(err, "decode "+proc+" result")
	}
	return &c, nil
}

func (s *DataStore) OpenCase(ctx context.Context, c *models.TerminationCase) (*models.TerminationCase, error) {
	return s.rpcCase(ctx, "open_termination_case", map[string]any{"p_case": c})
}

func (s *DataStore) CloseCase(ctx context.Context, caseID int64, fields map[string]any) (*models.TerminationCase, error) {
	return s.rpcCase(ctx, "close_termination_case", map[string]any{"p_case_id": caseID, "p_fields": fields})
}

func (s *DataStore) CancelCase(ctx context.Context, caseID int64, fields map[string]any) (*models.TerminationCase, error) {
	return s.rpcCase(ctx, "cancel_termination_case", map[string]any{"p_case_id": caseID, "p_fields": fields})
}

func (s *DataStore) InsertRenewalCase(ctx context.Context, c *models.RenewalCase) (*models.RenewalCase, error) {
	resp, err := s.transport.Post(ctx, "/renewal_cases", c, nil)
	if err != nil {
		return nil, faults.FromUpstream(err, "insert renewal case")
	}
	rows, err := decodeRows[models.RenewalCase](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.FromUpstream(fmt.Errorf("empty representation"), "insert renewal case")
	}
	return &rows[0], nil
}

func (s *DataStore) GetRenewalCase(ctx context.Context, id int64) (*models.RenewalCase, error) {
	resp, err := s.transport.Get(ctx, "/renewal_cases", map[string]string{"id": eq(id)})
	if err != nil {
		return nil, faults.FromUpstream(err, "fetch renewal case")
	}
	rows, err := decodeRows[models.RenewalCase](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.NotFoundf(fmt.Sprint(id), "renewal case %d not found", id)
	}
	return &rows[0], nil
}

func (s *DataStore) UpdateRenewalCase(ctx context.Context, id int64, fields map[string]any) (*models.RenewalCase, error) {
	resp, err := s.transport.Patch(ctx, "/renewal_cases", fields, map[string]string{"id": eq(id)})
	if err != nil {
		return nil, faults.FromUpstream(err, "update renewal case")
	}
	rows, err := decodeRows[models.RenewalCase](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, faults.NotFoundf(fmt.Sprint(id), "renewal case %d not found", id)
	}
	return &rows[0], nil
}

func (s *DataStore) GetOperationRecord(ctx context.Context, key string) (*models.OperationRecord, error) {
	resp, err := s.transport.Get(ctx, "/operation_records", map[string]string{"operation_key": "eq." + key})
	if err != nil {
		return nil, faults.FromUpstream(err, "fetch operation record")
	}
	rows, err := decodeRows[models.OperationRecord](resp)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// RecordInvoiceIssued commits the issuance acknowledgment under its
// operation key in one transaction server-side.
func (s *DataStore) RecordInvoiceIssued(ctx context.Context, operationKey string, result any) error {
	_, err := s.transport.Rpc(ctx, "record_invoice_issued", map[string]any{
		"p_operation_key": operationKey,
		"p_result":        result,
	})
	if err != nil {
		return faults.FromUpstream(err, "record_invoice_issued")
	}
	return nil
}

func (s *DataStore) ActivateRenewal(ctx context.Context, caseID int64, operationKey string) (json.RawMessage, error) {
	resp, err := s.transport.Rpc(ctx, "activate_renewal", map[string]any{
		"p_case_id":       caseID,
		"p_operation_key": operationKey,
	})
	if err != nil {
		return nil, faults.FromUpstream(err, "activate_renewal")
	}
	return resp.Data, nil
}
