package deskhive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deskhive.com/deskhive/core/models"
	"deskhive.com/deskhive/core/renewal"
	"deskhive.com/deskhive/core/store"
	"deskhive.com/deskhive/core/termination"
	"deskhive.com/deskhive/utils"
)

// Toolbox bundles the back-office services the assistant is allowed to
// reach. Tools are read-only except for the renewal flag setter.
type Toolbox struct {
	Store        *store.DataStore
	Tracker      *renewal.Tracker
	Terminations *termination.Service
}

func toJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ContractRenewal returns the contract row and its derived renewal stage.
func (t *Toolbox) ContractRenewal(ctx context.Context, contractID int64) (string, error) {
	contract, err := t.Store.GetContract(ctx, contractID)
	if err != nil {
		return "", err
	}
	status, err := t.Tracker.Status(ctx, contractID)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{
		"contract": contract,
		"renewal":  status,
	})
}

// TerminationCase returns a termination case with its checklist progress.
func (t *Toolbox) TerminationCase(ctx context.Context, caseID int64) (string, error) {
	tc, err := t.Terminations.GetCase(ctx, caseID)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{
		"case":               tc,
		"checklist_progress": fmt.Sprintf("%d/%d", tc.Checklist.Progress(), len(models.ChecklistItems)),
	})
}

// ExpiringContracts lists contracts ending within the next windowDays days.
func (t *Toolbox) ExpiringContracts(ctx context.Context, windowDays int) (string, error) {
	if windowDays <= 0 {
		windowDays = 60
	}
	today := utils.TaipeiNow()
	contracts, err := t.Store.ListExpiring(ctx,
		models.NewDate(today),
		models.NewDate(today.AddDate(0, 0, windowDays)))
	if err != nil {
		return "", err
	}
	type summary struct {
		ID             int64  `json:"id"`
		ContractNumber string `json:"contract_number"`
		EndDate        string `json:"end_date"`
		Notified       bool   `json:"notified"`
	}
	return toJSON(utils.Map(contracts, func(c models.Contract) summary {
		return summary{
			ID:             c.ID,
			ContractNumber: c.ContractNumber,
			EndDate:        c.EndDate.String(),
			Notified:       c.RenewalNotifiedAt != nil,
		}
	}))
}

// SetRenewalFlag stamps or clears a renewal milestone on behalf of the
// operator. The notes field records who asked for the change.
func (t *Toolbox) SetRenewalFlag(ctx context.Context, contractID int64, flag string, value bool) (string, error) {
	notes := fmt.Sprintf("set via assistant at %s", time.Now().Format(time.RFC3339))
	result, err := t.Tracker.SetFlag(ctx, contractID, flag, value, notes)
	if err != nil {
		return "", err
	}
	return toJSON(result)
}
