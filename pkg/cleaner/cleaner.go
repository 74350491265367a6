// pkg/cleaner/cleaner.go

// Package cleaner implements a staged, config-driven cleaning pipeline over
// in-memory tables: quality analysis, missing values, duplicates, outliers,
// text standardization and type conversion. Every cell-level change is
// recorded as a CleaningOperation for auditability.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
)

// Cleaner runs the cleaning pipeline. A Tracker may be attached to persist
// cleaning operations to the database.
type Cleaner struct {
	config  Config
	logger  *zap.Logger
	tracker *Tracker
}

// NewCleaner creates a cleaning pipeline with the given configuration.
func NewCleaner(config Config) (*Cleaner, error) {
	switch config.Missing.NumericStrategy {
	case StrategyMean, StrategyMedian, StrategyZero:
	default:
		return nil, fmt.Errorf("unknown numeric strategy: %s", config.Missing.NumericStrategy)
	}
	switch config.Missing.CategoricalStrategy {
	case StrategyMode, StrategyConstant:
	default:
		return nil, fmt.Errorf("unknown categorical strategy: %s", config.Missing.CategoricalStrategy)
	}
	switch config.Outliers.Method {
	case MethodIQR, MethodZScore:
	default:
		return nil, fmt.Errorf("unknown outlier method: %s", config.Outliers.Method)
	}
	if config.Duplicates.Keep != KeepFirst && config.Duplicates.Keep != KeepLast {
		return nil, fmt.Errorf("unknown duplicate keep policy: %s", config.Duplicates.Keep)
	}
	if config.Outliers.Threshold <= 0 {
		return nil, errors.New("outlier threshold must be positive")
	}

	return &Cleaner{
		config: config,
		logger: zap.L().Named("cleaner"),
	}, nil
}

// WithTracker attaches a database tracker that persists cleaning
// operations after the run completes.
func (c *Cleaner) WithTracker(tracker *Tracker) *Cleaner {
	c.tracker = tracker
	return c
}

// Run executes the full pipeline against a copy of the table and returns
// the cleaned table with its report. The input table is not modified.
func (c *Cleaner) Run(ctx context.Context, tbl *model.Table) (*model.Table, *model.CleaningReport, error) {
	if tbl == nil {
		return nil, nil, errors.New("table cannot be nil")
	}

	start := time.Now()
	report := model.NewCleaningReport()
	cleaned := tbl.Copy()

	c.logger.Info("cleaning pipeline started",
		zap.String("table", tbl.Name),
		zap.Int("rows", len(tbl.Rows)),
		zap.Int("columns", len(tbl.Columns)),
	)

	report.Initial = c.analyzeQuality(cleaned, report, "analyze_quality")

	c.handleMissing(cleaned, report)
	c.removeDuplicates(cleaned, report)
	c.handleOutliers(cleaned, report)
	c.cleanText(cleaned, report)
	if c.config.Types.AutoConvert {
		c.convertTypes(cleaned, report)
	}

	report.Final = c.analyzeQuality(cleaned, report, "final_quality")
	report.Duration = time.Since(start)

	if c.tracker != nil && len(report.Ops) > 0 {
		if err := c.tracker.Record(ctx, report.Ops); err != nil {
			return cleaned, report, fmt.Errorf("recording cleaning operations: %w", err)
		}
	}

	c.logger.Info("cleaning pipeline completed",
		zap.String("table", tbl.Name),
		zap.Int("rows_before", report.Initial.TotalRows),
		zap.Int("rows_after", report.Final.TotalRows),
		zap.Int("missing_before", report.Initial.MissingValues),
		zap.Int("missing_after", report.Final.MissingValues),
		zap.Int("operations", len(report.Ops)),
		zap.Duration("duration", report.Duration),
	)

	return cleaned, report, nil
}

// analyzeQuality computes row, column, missing and duplicate statistics.
func (c *Cleaner) analyzeQuality(tbl *model.Table, report *model.CleaningReport, step string) model.QualityStats {
	stats := model.QualityStats{
		TotalRows:     len(tbl.Rows),
		TotalColumns:  len(tbl.Columns),
		MissingValues: tbl.MissingCount(),
		DuplicateRows: countDuplicates(tbl, nil),
	}
	if cells := stats.TotalRows * stats.TotalColumns; cells > 0 {
		stats.MissingPercentage = float64(stats.MissingValues) / float64(cells) * 100
	}

	report.LogStep(step, map[string]interface{}{
		"total_rows":         stats.TotalRows,
		"total_columns":      stats.TotalColumns,
		"missing_values":     stats.MissingValues,
		"missing_percentage": stats.MissingPercentage,
		"duplicate_rows":     stats.DuplicateRows,
	})

	c.logger.Info("data quality analyzed",
		zap.String("step", step),
		zap.Int("rows", stats.TotalRows),
		zap.Int("missing_values", stats.MissingValues),
		zap.Float64("missing_pct", stats.MissingPercentage),
		zap.Int("duplicate_rows", stats.DuplicateRows),
	)

	return stats
}
