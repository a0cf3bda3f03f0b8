package termination

import (
	"context"
	"fmt"
	"slices"

	"deskhive.com/deskhive/core/faults"
	"deskhive.com/deskhive/core/models"
)

// itemDateColumns are the checklist items that also stamp a date column
// when ticked.
var itemDateColumns = map[string]string{
	"doc_submitted":    "doc_submitted_date",
	"doc_approved":     "doc_approved_date",
	"refund_processed": "refund_date",
}

// ChecklistResult reports the merged checklist after an item update.
type ChecklistResult struct {
	CaseID    int64            `json:"case_id"`
	Item      string           `json:"item"`
	Value     bool             `json:"value"`
	Checklist models.Checklist `json:"checklist"`
	Progress  string           `json:"progress"`
	Done      int              `json:"done"`
	Total     int              `json:"total"`
}

// UpdateChecklistItem merges a single item into the stored checklist.
// Read-modify-write with last-write-wins; concurrent updates to different
// items can overwrite each other (open product question, kept as-is).
func (s *Service) UpdateChecklistItem(ctx context.Context, caseID int64, item string, value bool) (*ChecklistResult, error) {
	if !slices.Contains(models.ChecklistItems, item) {
		return nil, faults.InvalidEnum("checklist item", item, models.ChecklistItems)
	}

	c, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalCaseStatus(c.Status) {
		return nil, faults.Conflictf(itoa(c.ID), "case is %s, checklist is frozen", c.Status)
	}

	checklist := models.Checklist{}
	for k, v := range c.Checklist {
		checklist[k] = v
	}
	checklist[item] = value

	fields := map[string]any{"checklist": checklist}
	if col, ok := itemDateColumns[item]; ok && value {
		fields[col] = models.NewDate(s.now())
	}

	updated, err := s.store.UpdateCase(ctx, caseID, fields)
	if err != nil {
		return nil, err
	}

	done := updated.Checklist.Progress()
	total := len(models.ChecklistItems)
	return &ChecklistResult{
		CaseID:    updated.ID,
		Item:      item,
		Value:     value,
		Checklist: updated.Checklist,
		Progress:  fmt.Sprintf("%d/%d", done, total),
		Done:      done,
		Total:     total,
	}, nil
}
