// importcontracts loads legacy contract workbooks into the data API.
// Date columns may use the ROC calendar (year + 1911); both conventions
// are accepted.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"deskhive.com/deskhive/core/models"
	v1 "deskhive.com/deskhive/postgrest/v1"
	"deskhive.com/deskhive/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

var (
	flagFile    string
	flagSheet   string
	flagBaseURL string
	flagToken   string
	flagDryRun  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "importcontracts",
		Short: "Import legacy contracts from an Excel workbook or CSV into the data API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	rootCmd.Flags().StringVar(&flagFile, "file", "", "workbook (.xlsx) or .csv to import")
	rootCmd.Flags().StringVar(&flagSheet, "sheet", "Sheet1", "worksheet name")
	rootCmd.Flags().StringVar(&flagBaseURL, "data-api", os.Getenv("DATA_API_URL"), "data API base URL")
	rootCmd.Flags().StringVar(&flagToken, "token", os.Getenv("DATA_API_TOKEN"), "data API token")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "parse and report without writing")
	rootCmd.MarkFlagRequired("file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// row is one parsed workbook line.
type row struct {
	ContractNumber string
	LegacyID       string
	LineUserID     string
	RoomCode       string
	StartDate      models.Date
	EndDate        models.Date
	MonthlyRent    decimal.Decimal
	Deposit        decimal.Decimal
}

func run(ctx context.Context) error {
	records, err := readRecords(flagFile, flagSheet)
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return fmt.Errorf("%s has no data rows", flagFile)
	}

	rows := []row{}
	for i, record := range records[1:] { // skip header
		parsed, err := parseRow(record)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, *parsed)
	}

	fmt.Printf("Parsed %d contracts from %s\n", len(rows), flagFile)
	if flagDryRun {
		for _, r := range rows {
			fmt.Printf("  %s room %s %s..%s rent %s deposit %s\n",
				r.ContractNumber, r.RoomCode, r.StartDate, r.EndDate, r.MonthlyRent, r.Deposit)
		}
		return nil
	}

	if flagBaseURL == "" {
		return fmt.Errorf("data API base URL is required (--data-api or DATA_API_URL)")
	}

	client := v1.NewPostgrestClient(flagBaseURL, flagToken)
	imported := 0
	for _, r := range rows {
		payload := map[string]any{
			"contract_number": r.ContractNumber,
			"legacy_id":       r.LegacyID,
			"line_user_id":    r.LineUserID,
			"room_code":       r.RoomCode,
			"start_date":      r.StartDate,
			"end_date":        r.EndDate,
			"monthly_rent":    r.MonthlyRent,
			"deposit":         r.Deposit,
			"status":          models.ContractActive,
		}
		if _, err := client.Transport.Post(ctx, "/contracts", payload, nil); err != nil {
			return fmt.Errorf("import %s: %w", r.ContractNumber, err)
		}
		imported++
	}

	fmt.Printf("Imported %d contracts\n", imported)
	return nil
}

func readRecords(path, sheet string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return utils.ParseCSV(f)
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.GetRows(sheet)
}

func parseRow(record []string) (*row, error) {
	if len(record) < 8 {
		return nil, fmt.Errorf("expected 8 columns, got %d", len(record))
	}

	start, err := utils.ParseLegacyDate(strings.TrimSpace(record[4]))
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := utils.ParseLegacyDate(strings.TrimSpace(record[5]))
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}

	rent, err := decimal.NewFromString(strings.TrimSpace(record[6]))
	if err != nil {
		return nil, fmt.Errorf("monthly rent: %w", err)
	}
	deposit, err := decimal.NewFromString(strings.TrimSpace(record[7]))
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}

	return &row{
		ContractNumber: strings.TrimSpace(record[0]),
		LegacyID:       strings.TrimSpace(record[1]),
		LineUserID:     strings.TrimSpace(record[2]),
		RoomCode:       strings.TrimSpace(record[3]),
		StartDate:      models.NewDate(start),
		EndDate:        models.NewDate(end),
		MonthlyRent:    rent,
		Deposit:        deposit,
	}, nil
}
