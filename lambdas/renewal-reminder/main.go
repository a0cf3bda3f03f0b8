// renewal-reminder runs on a daily schedule. It finds contracts whose end
// date falls inside the notice window, pushes a LINE reminder to each tenant,
// and stamps the notified milestone so the next run skips them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"deskhive.com/deskhive/core/models"
	"deskhive.com/deskhive/core/renewal"
	"deskhive.com/deskhive/core/store"
	"deskhive.com/deskhive/infrastructure/communication"
	"deskhive.com/deskhive/infrastructure/devops"
	v1 "deskhive.com/deskhive/postgrest/v1"
	"deskhive.com/deskhive/utils"
	"github.com/aws/aws-lambda-go/lambda"
)

type ReminderEvent struct {
	WindowDays int  `json:"windowDays"`
	DryRun     bool `json:"dryRun"`
}

type ReminderStats struct {
	Scanned  int     `json:"scanned"`
	Notified int     `json:"notified"`
	Skipped  int     `json:"skipped"`
	Failed   []int64 `json:"failed,omitempty"`
}

const defaultWindowDays = 60

func RemindExpiring(ctx context.Context, windowDays int, dryRun bool) (*ReminderStats, error) {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}

	cfg, err := devops.LoadServiceConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dataStore := store.New(v1.NewPostgrestClient(cfg.DataAPI.BaseURL, cfg.DataAPI.Token))
	line, err := communication.NewLine(cfg.Line.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE client: %w", err)
	}
	tracker := renewal.NewTracker(dataStore)

	today := utils.TaipeiNow()
	from := models.NewDate(today)
	to := models.NewDate(today.AddDate(0, 0, windowDays))

	contracts, err := dataStore.ListExpiring(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring contracts: %w", err)
	}

	stats := &ReminderStats{Scanned: len(contracts)}
	pending := utils.Filter(contracts, func(c models.Contract) bool {
		return c.RenewalNotifiedAt == nil && c.LineUserID != ""
	})
	stats.Skipped = len(contracts) - len(pending)

	for _, contract := range pending {
		fmt.Printf("[INFO] Reminding contract %s (ends %s)\n", contract.ContractNumber, contract.EndDate)
		if dryRun {
			stats.Notified++
			continue
		}

		text := communication.RenewalNoticeText(contract.ContractNumber, contract.EndDate.String())
		if err := line.Push(ctx, contract.LineUserID, text); err != nil {
			fmt.Printf("[ERROR] LINE push for contract %d: %v\n", contract.ID, err)
			stats.Failed = append(stats.Failed, contract.ID)
			continue
		}

		// Stamp after the push succeeds so a failed push is retried tomorrow.
		if _, err := tracker.SetFlag(ctx, contract.ID, renewal.FlagNotified, true, "auto reminder"); err != nil {
			fmt.Printf("[ERROR] Stamping notified for contract %d: %v\n", contract.ID, err)
			stats.Failed = append(stats.Failed, contract.ID)
			continue
		}
		stats.Notified++
	}

	return stats, nil
}

func HandleRequest(ctx context.Context, event ReminderEvent) (*ReminderStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	return RemindExpiring(ctx, event.WindowDays, event.DryRun)
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
	} else {
		stats, err := RemindExpiring(context.Background(), defaultWindowDays, true)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			os.Exit(1)
		}
		resJson, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
	}
}
