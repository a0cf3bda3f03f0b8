package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Termination case statuses. The graph below is the recommended order;
// update_status accepts any enumerated value (operator flexibility kept
// from the original workflow, see DESIGN.md).
//
//	notice_received -> moving_out -> pending_doc -> pending_settlement -> completed
//	any non-terminal -> cancelled
const (
	CaseNoticeReceived    = "notice_received"
	CaseMovingOut         = "moving_out"
	CasePendingDoc        = "pending_doc"
	CasePendingSettlement = "pending_settlement"
	CaseCompleted         = "completed"
	CaseCancelled         = "cancelled"
)

// Termination types.
const (
	TerminationEarly       = "early"
	TerminationNotRenewing = "not_renewing"
	TerminationBreach      = "breach"
)

// Refund methods.
const (
	RefundCash     = "cash"
	RefundTransfer = "transfer"
	RefundCheck    = "check"
)

// CaseStatuses enumerates every valid case status.
var CaseStatuses = []string{
	CaseNoticeReceived,
	CaseMovingOut,
	CasePendingDoc,
	CasePendingSettlement,
	CaseCompleted,
	CaseCancelled,
}

// TerminationTypes enumerates every valid termination type.
var TerminationTypes = []string{TerminationEarly, TerminationNotRenewing, TerminationBreach}

// RefundMethods enumerates every valid refund method.
var RefundMethods = []string{RefundCash, RefundTransfer, RefundCheck}

// ChecklistItems is the fixed set of move-out checklist items, in display order.
var ChecklistItems = []string{
	"notice_confirmed",
	"belongings_removed",
	"keys_returned",
	"room_inspected",
	"doc_submitted",
	"doc_approved",
	"settlement_calculated",
	"refund_processed",
}

// Checklist maps item name to done. Stored as a single jsonb field on the case.
type Checklist map[string]bool

// Progress counts completed items.
func (c Checklist) Progress() int {
	n := 0
	for _, item := range ChecklistItems {
		if c[item] {
			n++
		}
	}
	return n
}

// IsTerminalCaseStatus reports whether the status closes the case.
func IsTerminalCaseStatus(status string) bool {
	return status == CaseCompleted || status == CaseCancelled
}

// TerminationCase is one in-flight termination. Never deleted; it reaches
// a terminal status instead.
type TerminationCase struct {
	ID              int64     `json:"id"`
	ContractID      int64     `json:"contract_id"`
	TerminationType string    `json:"termination_type"`
	Status          string    `json:"status"`
	NoticeDate      Date      `json:"notice_date"`
	ExpectedEndDate Date      `json:"expected_end_date"`
	Checklist       Checklist `json:"checklist"`

	// Deposit snapshot taken at case creation, not a live reference.
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	DailyRate     decimal.Decimal `json:"daily_rate"`

	DeductionDays   int              `json:"deduction_days"`
	DeductionAmount *decimal.Decimal `json:"deduction_amount"`
	OtherDeductions *decimal.Decimal `json:"other_deductions"`
	RefundAmount    *decimal.Decimal `json:"refund_amount"`

	DocSubmittedDate *Date `json:"doc_submitted_date"`
	DocApprovedDate  *Date `json:"doc_approved_date"`

	RefundMethod  string `json:"refund_method"`
	RefundAccount string `json:"refund_account"`
	RefundReceipt string `json:"refund_receipt"`
	RefundDate    *Date  `json:"refund_date"`

	CancelReason string     `json:"cancel_reason"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	Notes        string     `json:"notes"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    *time.Time `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
