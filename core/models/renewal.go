package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Renewal case statuses. A draft carries no financial effect until activated.
const (
	RenewalCaseDraft     = "draft"
	RenewalCaseActivated = "activated"
	RenewalCaseCancelled = "cancelled"
)

// RenewalCase decouples renewal-intent tracking from direct contract-field
// mutation. Activation is a single server-side transaction keyed by an
// idempotency token.
type RenewalCase struct {
	ID             int64           `json:"id"`
	ContractID     int64           `json:"contract_id"`
	Status         string          `json:"status"`
	NewMonthlyRent decimal.Decimal `json:"new_monthly_rent"`
	NewEndDate     Date            `json:"new_end_date"`
	Notes          string          `json:"notes"`
	OperationKey   string          `json:"operation_key"`
	CancelReason   string          `json:"cancel_reason"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      *time.Time      `json:"created_at"`
	ActivatedAt    *time.Time      `json:"activated_at"`
}

// OperationRecord is one row of the idempotency ledger. A commit writes its
// record inside the same transaction as its effects, so a record implies the
// effects happened exactly once and Result holds what the caller saw.
type OperationRecord struct {
	OperationKey string          `json:"operation_key"`
	Operation    string          `json:"operation"`
	Result       json.RawMessage `json:"result"`
	CreatedAt    *time.Time      `json:"created_at"`
}
