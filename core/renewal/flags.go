// Package renewal tracks contract-renewal progress: four ordered milestone
// flags stored as nullable timestamps on the contract, and an explicit
// renewal-case entity for the draft/activate flow.
package renewal

import (
	"context"
	"time"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
)

// Flag names accepted by SetFlag, in milestone order.
const (
	FlagNotified  = "notified"
	FlagConfirmed = "confirmed"
	FlagPaid      = "paid"
	FlagSigned    = "signed"
)

var FlagNames = []string{FlagNotified, FlagConfirmed, FlagPaid, FlagSigned}

// flagColumns maps a flag name to its backing timestamp column.
var flagColumns = map[string]string{
	FlagNotified:  "renewal_notified_at",
	FlagConfirmed: "renewal_confirmed_at",
	FlagPaid:      "renewal_paid_at",
	FlagSigned:    "renewal_signed_at",
}

// Store is the data-gateway capability the tracker needs. Passed in at
// construction so tests can substitute a double.
type Store interface {
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	// UpdateContract patches the given columns and returns the updated row.
	UpdateContract(ctx context.Context, id int64, fields map[string]any) (*models.Contract, error)
}

// Tracker maintains the renewal milestone flags on a contract.
type Tracker struct {
	store Store
	now   func() time.Time
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Flags is the derived boolean view over the four milestone columns plus
// the invoice status.
type Flags struct {
	IsNotified  bool `json:"is_notified"`
	IsConfirmed bool `json:"is_confirmed"`
	IsPaid      bool `json:"is_paid"`
	IsSigned    bool `json:"is_signed"`
	IsInvoiced  bool `json:"is_invoiced"`
}

func deriveFlags(c *models.Contract) Flags {
	return Flags{
		IsNotified:  c.RenewalNotifiedAt != nil,
		IsConfirmed: c.RenewalConfirmedAt != nil,
		IsPaid:      c.RenewalPaidAt != nil,
		IsSigned:    c.RenewalSignedAt != nil,
		IsInvoiced:  c.IsInvoiced(),
	}
}

func (f Flags) Progress() int {
	n := 0
	for _, b := range []bool{f.IsNotified, f.IsConfirmed, f.IsPaid, f.IsSigned, f.IsInvoiced} {
		if b {
			n++
		}
	}
	return n
}

// Stage collapses progress into the coarse renewal status.
func (f Flags) Stage() string {
	switch f.Progress() {
	case 0:
		return models.RenewalPending
	case 5:
		return models.RenewalCompleted
	default:
		return models.RenewalInProgress
	}
}

// FlagResult is what SetFlag reports back to the caller.
type FlagResult struct {
	ContractID       int64     `json:"contract_id"`
	ContractNumber   string    `json:"contract_number"`
	Flag             string    `json:"flag"`
	Value            bool      `json:"value"`
	Flags            Flags     `json:"flags"`
	Progress         int       `json:"progress"`
	Stage            string    `json:"stage"`
	UpdatedAt        time.Time `json:"updated_at"`
	CascadeTriggered bool      `json:"cascade_triggered"`
}

// SetFlag sets or clears one milestone flag.
//
// Setting paid or signed while confirmed is still unset also stamps
// confirmed with the same timestamp: a contract cannot be paid or signed
// without the customer having confirmed renewal intent. Clearing a flag
// never cascades; clearing paid leaves confirmed stamped. That asymmetry
// is intentional: the cleared flag was a data-entry mistake, the implied
// milestone usually was not.
func (t *Tracker) SetFlag(ctx context.Context, contractID int64, flag string, value bool, notes string) (*FlagResult, error) {
	column, ok := flagColumns[flag]
	if !ok {
		return nil, faults.InvalidEnum("flag", flag, FlagNames)
	}

	contract, err := t.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	now := t.now().UTC()
	fields := map[string]any{}
	cascade := false

	if value {
		fields[column] = now
		if (flag == FlagPaid || flag == FlagSigned) && contract.RenewalConfirmedAt == nil {
			fields[flagColumns[FlagConfirmed]] = now
			cascade = true
		}
	} else {
		fields[column] = nil
	}
	if notes != "" {
		fields["renewal_notes"] = notes
	}

	updated, err := t.store.UpdateContract(ctx, contractID, fields)
	if err != nil {
		return nil, err
	}

	flags := deriveFlags(updated)
	stage := flags.Stage()

	// Self-heal the stored derived status when it drifted.
	if updated.RenewalStatus != stage {
		if updated, err = t.store.UpdateContract(ctx, contractID, map[string]any{"renewal_status": stage}); err != nil {
			return nil, err
		}
	}

	return &FlagResult{
		ContractID:       updated.ID,
		ContractNumber:   updated.ContractNumber,
		Flag:             flag,
		Value:            value,
		Flags:            flags,
		Progress:         flags.Progress(),
		Stage:            stage,
		UpdatedAt:        now,
		CascadeTriggered: cascade,
	}, nil
}

// Status reports the current derived view without writing anything.
func (t *Tracker) Status(ctx context.Context, contractID int64) (*FlagResult, error) {
	contract, err := t.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	flags := deriveFlags(contract)
	res := &FlagResult{
		ContractID:     contract.ID,
		ContractNumber: contract.ContractNumber,
		Flags:          flags,
		Progress:       flags.Progress(),
		Stage:          flags.Stage(),
	}
	if contract.UpdatedAt != nil {
		res.UpdatedAt = *contract.UpdatedAt
	}
	return res, nil
}
