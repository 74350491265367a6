// cmd/clean/main.go

// Command clean reads a CSV file, runs the cleaning pipeline over it, and
// writes the cleaned CSV alongside a JSON report of every stage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/cleaner"
	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/connector"
	"github.com/mayursurani/datapipe/pkg/ingest"
	"github.com/mayursurani/datapipe/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		input            = flag.String("input", "", "input CSV file (required)")
		output           = flag.String("output", "", "cleaned CSV file (default <input>_cleaned.csv)")
		reportPath       = flag.String("report", "cleaning_report.json", "cleaning report JSON file")
		numericStrategy  = flag.String("numeric-strategy", cleaner.StrategyMedian, "missing numeric fill: mean, median or zero")
		categoryStrategy = flag.String("categorical-strategy", cleaner.StrategyMode, "missing categorical fill: mode or constant")
		fillConstant     = flag.String("fill-constant", "Unknown", "fill value for the constant strategy")
		dropThreshold    = flag.Float64("drop-threshold", 0.5, "drop columns whose missing ratio exceeds this")
		dupSubset        = flag.String("dedupe-columns", "", "comma-separated duplicate key columns (default all)")
		dupKeep          = flag.String("dedupe-keep", cleaner.KeepFirst, "which duplicate to keep: first or last")
		outlierMethod    = flag.String("outlier-method", cleaner.MethodIQR, "outlier capping: iqr or zscore")
		outlierThreshold = flag.Float64("outlier-threshold", 1.5, "IQR multiplier or sigma count")
		noConvert        = flag.Bool("no-convert", false, "skip automatic type conversion")
		track            = flag.Bool("track", false, "record cleaning operations to the configured Postgres database")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: clean -input data.csv [flags]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *output == "" {
		*output = strings.TrimSuffix(*input, ".csv") + "_cleaned.csv"
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

	cleanConfig := cleaner.Config{
		Missing: cleaner.MissingConfig{
			NumericStrategy:     *numericStrategy,
			CategoricalStrategy: *categoryStrategy,
			Constant:            *fillConstant,
			DropThreshold:       *dropThreshold,
		},
		Duplicates: cleaner.DuplicateConfig{
			Subset: splitColumns(*dupSubset),
			Keep:   *dupKeep,
		},
		Outliers: cleaner.OutlierConfig{
			Method:    *outlierMethod,
			Threshold: *outlierThreshold,
		},
		Text:  cleaner.DefaultConfig().Text,
		Types: cleaner.TypeConfig{AutoConvert: !*noConvert},
	}

	ctx := context.Background()
	if err := run(ctx, cfg, logger, cleanConfig, *input, *output, *reportPath, *track); err != nil {
		logger.Fatal("cleaning failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, cleanConfig cleaner.Config, input, output, reportPath string, track bool) error {
	tbl, err := ingest.ReadCSV(input, "")
	if err != nil {
		return err
	}

	c, err := cleaner.NewCleaner(cleanConfig)
	if err != nil {
		return err
	}

	if track {
		if cfg.Postgres == nil {
			return fmt.Errorf("-track requires a configured Postgres database")
		}
		conn, err := connector.NewPostgresConnector(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer conn.Close()

		tracker, err := cleaner.NewTracker(conn.DB())
		if err != nil {
			return err
		}
		c = c.WithTracker(tracker)
	}

	cleaned, report, err := c.Run(ctx, tbl)
	if err != nil {
		return err
	}

	if err := ingest.WriteCSV(output, cleaned); err != nil {
		return err
	}
	logger.Info("wrote cleaned table",
		zap.String("path", output),
		zap.Int("rows", len(cleaned.Rows)))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.Info("wrote cleaning report", zap.String("path", reportPath))

	return nil
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			cols = append(cols, trimmed)
		}
	}
	return cols
}
