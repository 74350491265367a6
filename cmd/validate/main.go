// cmd/validate/main.go

// Command validate checks every record of a CSV file against the sales
// validation rules, splitting it into valid and invalid CSVs and writing a
// text report of the failures.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/format"
	"github.com/mayursurani/datapipe/pkg/ingest"
	"github.com/mayursurani/datapipe/pkg/logging"
	"github.com/mayursurani/datapipe/pkg/model"
	"github.com/mayursurani/datapipe/pkg/validate"
)

// reportSampleSize limits how many issues the text report lists in full.
const reportSampleSize = 20

func main() {
	_ = godotenv.Load()

	var (
		input  = flag.String("input", "", "input CSV file (required)")
		outDir = flag.String("outdir", "output", "directory for valid/invalid CSVs and the report")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: validate -input sales.csv [-outdir output]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *input, *outDir); err != nil {
		logger.Fatal("validation failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, input, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tbl, err := ingest.ReadCSV(input, "")
	if err != nil {
		return err
	}

	validator, err := validate.NewRecordValidator(validate.Config{})
	if err != nil {
		return err
	}

	valid, invalid, report, err := validator.ValidateTable(tbl)
	if err != nil {
		return err
	}

	validPath := filepath.Join(outDir, valid.Name+".csv")
	if err := ingest.WriteCSV(validPath, valid); err != nil {
		return err
	}
	invalidPath := filepath.Join(outDir, invalid.Name+".csv")
	if err := ingest.WriteCSV(invalidPath, invalid); err != nil {
		return err
	}

	reportPath := filepath.Join(outDir, "validation_report.txt")
	if err := os.WriteFile(reportPath, []byte(renderReport(tbl.Name, report)), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	logger.Info("validation outputs written",
		zap.String("valid", validPath),
		zap.String("invalid", invalidPath),
		zap.String("report", reportPath),
		zap.Int("valid_records", report.ValidRecords),
		zap.Int("invalid_records", report.InvalidRecords))

	return nil
}

// renderReport formats the validation report as plain text.
func renderReport(tableName string, report *model.ValidationReport) string {
	var b strings.Builder
	divider := strings.Repeat("=", 60) + "\n"

	b.WriteString(divider)
	fmt.Fprintf(&b, "VALIDATION REPORT: %s\n", tableName)
	fmt.Fprintf(&b, "Generated: %s\n", report.Timestamp.Format("2006-01-02 15:04:05"))
	b.WriteString(divider)
	fmt.Fprintf(&b, "Total records:   %s\n", format.Number(float64(report.TotalRecords), 0))
	fmt.Fprintf(&b, "Valid records:   %s\n", format.Number(float64(report.ValidRecords), 0))
	fmt.Fprintf(&b, "Invalid records: %s\n", format.Number(float64(report.InvalidRecords), 0))
	fmt.Fprintf(&b, "Valid rate:      %s\n", format.Percentage(report.ValidRate(), 1))
	b.WriteString("\n")

	writeIssues(&b, "ERRORS", report.Errors)
	writeIssues(&b, "WARNINGS", report.Warnings)

	return b.String()
}

func writeIssues(b *strings.Builder, heading string, issues []model.ValidationIssue) {
	fmt.Fprintf(b, "%s (%d)\n", heading, len(issues))
	for i, issue := range issues {
		if i >= reportSampleSize {
			fmt.Fprintf(b, "  ... and %d more\n", len(issues)-reportSampleSize)
			break
		}
		fmt.Fprintf(b, "  record %d: %s\n", issue.RecordNum, issue.Message)
	}
	b.WriteString("\n")
}
