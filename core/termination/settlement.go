package termination

import (
	"context"
	"fmt"
	"slices"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
	"github.com/shopspring/decimal"
)

var thirty = decimal.NewFromInt(30)

// SettlementResult carries the computed deposit settlement. DeductionAmount
// is the unclamped days*rate figure for the audit trail; RefundAmount is
// clamped at zero.
type SettlementResult struct {
	CaseID          int64                   `json:"case_id"`
	DeductionDays   int                     `json:"deduction_days"`
	DeductionAmount decimal.Decimal         `json:"deduction_amount"`
	OtherDeductions decimal.Decimal         `json:"other_deductions"`
	RefundAmount    decimal.Decimal         `json:"refund_amount"`
	Breakdown       string                  `json:"breakdown"`
	Case            *models.TerminationCase `json:"case"`
}

// CalculateSettlement computes the deposit settlement as of the document
// approval date. Days past the contract end date while paperwork was being
// processed are charged at the case's daily rate.
func (s *Service) CalculateSettlement(ctx context.Context, caseID int64, docApprovedDate models.Date, otherDeductions decimal.Decimal, notes string) (*SettlementResult, error) {
	if docApprovedDate.IsZero() {
		return nil, faults.Validationf("doc_approved_date is required")
	}
	if otherDeductions.IsNegative() {
		return nil, faults.Validationf("other_deductions must not be negative")
	}

	c, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalCaseStatus(c.Status) {
		return nil, faults.Conflictf(itoa(c.ID), "case is already %s", c.Status)
	}

	contract, err := s.store.GetContract(ctx, c.ContractID)
	if err != nil {
		return nil, err
	}

	deductionDays := docApprovedDate.DaysSince(contract.EndDate)
	if deductionDays < 0 {
		deductionDays = 0
	}
	deductionAmount := c.DailyRate.Mul(decimal.NewFromInt(int64(deductionDays)))

	refund := c.DepositAmount.Sub(deductionAmount).Sub(otherDeductions)
	if refund.IsNegative() {
		refund = decimal.Zero
	}

	checklist := models.Checklist{}
	for k, v := range c.Checklist {
		checklist[k] = v
	}
	checklist["doc_approved"] = true
	checklist["settlement_calculated"] = true

	fields := map[string]any{
		"status":            models.CasePendingSettlement,
		"checklist":         checklist,
		"doc_approved_date": docApprovedDate,
		"deduction_days":    deductionDays,
		"deduction_amount":  deductionAmount,
		"other_deductions":  otherDeductions,
		"refund_amount":     refund,
	}
	if notes != "" {
		fields["notes"] = notes
	}

	updated, err := s.store.UpdateCase(ctx, caseID, fields)
	if err != nil {
		return nil, err
	}

	breakdown := fmt.Sprintf("deposit %s - %d day(s) x %s = %s - other deductions %s = refund %s",
		c.DepositAmount, deductionDays, c.DailyRate, deductionAmount, otherDeductions, refund)

	return &SettlementResult{
		CaseID:          updated.ID,
		DeductionDays:   deductionDays,
		DeductionAmount: deductionAmount,
		OtherDeductions: otherDeductions,
		RefundAmount:    refund,
		Breakdown:       breakdown,
		Case:            updated,
	}, nil
}

// RefundParams are the inputs for paying out the settled deposit.
type RefundParams struct {
	Method  string
	Account string
	Receipt string
	Notes   string
}

// ProcessRefund pays out the calculated refund and completes the case. The
// case completion and the contract's flip to terminated commit together.
func (s *Service) ProcessRefund(ctx context.Context, caseID int64, p RefundParams) (*models.TerminationCase, error) {
	if !slices.Contains(models.RefundMethods, p.Method) {
		return nil, faults.InvalidEnum("refund_method", p.Method, models.RefundMethods)
	}

	c, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalCaseStatus(c.Status) {
		return nil, faults.Conflictf(itoa(c.ID), "case is already %s", c.Status)
	}
	if c.RefundAmount == nil {
		return nil, faults.Conflictf(itoa(c.ID),
			"settlement has not been calculated, run the deposit settlement calculation first")
	}

	checklist := models.Checklist{}
	for k, v := range c.Checklist {
		checklist[k] = v
	}
	checklist["refund_processed"] = true

	fields := map[string]any{
		"status":         models.CaseCompleted,
		"checklist":      checklist,
		"refund_method":  p.Method,
		"refund_account": p.Account,
		"refund_receipt": p.Receipt,
		"refund_date":    models.NewDate(s.now()),
	}
	if p.Notes != "" {
		fields["notes"] = p.Notes
	}

	return s.store.CloseCase(ctx, caseID, fields)
}
