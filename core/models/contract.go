package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract statuses as stored in the data API.
const (
	ContractActive             = "active"
	ContractExpired            = "expired"
	ContractTerminated         = "terminated"
	ContractPendingTermination = "pending_termination"
)

// Renewal stages derived from the milestone flags.
const (
	RenewalPending    = "pending"
	RenewalInProgress = "in_progress"
	RenewalCompleted  = "completed"
)

// InvoiceStatusPendingTaxID marks an invoice request that is parked until
// the customer supplies a tax id. It does not count as invoiced.
const InvoiceStatusPendingTaxID = "pending_tax_id"

// Contract is a lease/service agreement row. The data API owns the row;
// this system reads and mutates fields but never creates one from scratch.
type Contract struct {
	ID             int64           `json:"id"`
	ContractNumber string          `json:"contract_number"`
	CustomerID     int64           `json:"customer_id"`
	BranchID       int64           `json:"branch_id"`
	RoomCode       string          `json:"room_code"`
	StartDate      Date            `json:"start_date"`
	EndDate        Date            `json:"end_date"`
	MonthlyRent    decimal.Decimal `json:"monthly_rent"`
	Deposit        decimal.Decimal `json:"deposit"`
	Status         string          `json:"status"`

	// Renewal milestone flags. Each nullable timestamp doubles as a
	// boolean flag and an audit trail.
	RenewalNotifiedAt  *time.Time `json:"renewal_notified_at"`
	RenewalConfirmedAt *time.Time `json:"renewal_confirmed_at"`
	RenewalPaidAt      *time.Time `json:"renewal_paid_at"`
	RenewalSignedAt    *time.Time `json:"renewal_signed_at"`

	InvoiceStatus string `json:"invoice_status"`
	RenewalStatus string `json:"renewal_status"`
	RenewalNotes  string `json:"renewal_notes"`

	LineUserID string `json:"line_user_id"`
	Email      string `json:"email"`
	LegacyID   string `json:"legacy_id"`

	UpdatedAt *time.Time `json:"updated_at"`
}

// IsInvoiced reports whether a renewal invoice exists and is not parked
// on the pending-tax-id sentinel.
func (c *Contract) IsInvoiced() bool {
	return c.InvoiceStatus != "" && c.InvoiceStatus != InvoiceStatusPendingTaxID
}
