// pkg/cleaner/missing.go

package cleaner

import (
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/calc"
	"github.com/mayursurani/datapipe/pkg/model"
)

// handleMissing drops columns that are mostly empty, then fills the
// remaining missing cells per the configured strategies.
func (c *Cleaner) handleMissing(tbl *model.Table, report *model.CleaningReport) {
	missingBefore := tbl.MissingCount()

	dropped := c.dropSparseColumns(tbl, report)

	for _, col := range tbl.NumericColumns() {
		c.fillNumericColumn(tbl, col, report)
	}
	for _, col := range tbl.CategoricalColumns() {
		c.fillCategoricalColumn(tbl, col, report)
	}

	missingAfter := tbl.MissingCount()
	report.LogStep("handle_missing", map[string]interface{}{
		"before":          missingBefore,
		"after":           missingAfter,
		"filled":          missingBefore - missingAfter,
		"columns_dropped": dropped,
	})

	c.logger.Info("missing values handled",
		zap.Int("before", missingBefore),
		zap.Int("after", missingAfter),
		zap.Strings("columns_dropped", dropped),
	)
}

// dropSparseColumns removes columns whose missing ratio exceeds the drop
// threshold. Returns the dropped column names.
func (c *Cleaner) dropSparseColumns(tbl *model.Table, report *model.CleaningReport) []string {
	if len(tbl.Rows) == 0 || c.config.Missing.DropThreshold <= 0 {
		return nil
	}

	var dropped []string
	for _, col := range tbl.ColumnNames() {
		missing := 0
		for _, row := range tbl.Rows {
			if model.IsMissing(row[col]) {
				missing++
			}
		}
		ratio := float64(missing) / float64(len(tbl.Rows))
		if ratio > c.config.Missing.DropThreshold {
			tbl.DropColumn(col)
			dropped = append(dropped, col)
			report.RecordOp(model.CleaningOperation{
				TableName:     tbl.Name,
				ColumnName:    col,
				NewValue:      "",
				RowIdentifier: "*",
				Operation:     "drop_column",
				Reason:        fmt.Sprintf("missing_ratio_%.2f_exceeds_threshold", ratio),
			})
		}
	}
	return dropped
}

func (c *Cleaner) fillNumericColumn(tbl *model.Table, col string, report *model.CleaningReport) {
	values := columnFloats(tbl, col)
	if len(values) == 0 {
		return
	}

	var fill float64
	switch c.config.Missing.NumericStrategy {
	case StrategyMean:
		fill, _ = calc.Average(values)
	case StrategyMedian:
		fill, _ = calc.Quantile(values, 0.5)
	default:
		fill = 0
	}

	filled := 0
	for i, row := range tbl.Rows {
		if !model.IsMissing(row[col]) {
			continue
		}
		original := row[col]
		row[col] = fill
		filled++
		report.RecordOp(model.CleaningOperation{
			TableName:     tbl.Name,
			ColumnName:    col,
			OriginalValue: original,
			NewValue:      strconv.FormatFloat(fill, 'f', -1, 64),
			RowIdentifier: rowIdentifier(i),
			Operation:     "fill_" + c.config.Missing.NumericStrategy,
			Reason:        "missing_value",
		})
	}

	if filled > 0 {
		c.logger.Debug("numeric column filled",
			zap.String("column", col),
			zap.Int("filled", filled),
			zap.Float64("fill_value", fill),
		)
	}
}

func (c *Cleaner) fillCategoricalColumn(tbl *model.Table, col string, report *model.CleaningReport) {
	fill := c.config.Missing.Constant
	if c.config.Missing.CategoricalStrategy == StrategyMode {
		if mode, ok := columnMode(tbl, col); ok {
			fill = mode
		}
	}

	filled := 0
	for i, row := range tbl.Rows {
		if !model.IsMissing(row[col]) {
			continue
		}
		original := row[col]
		row[col] = fill
		filled++
		report.RecordOp(model.CleaningOperation{
			TableName:     tbl.Name,
			ColumnName:    col,
			OriginalValue: original,
			NewValue:      fill,
			RowIdentifier: rowIdentifier(i),
			Operation:     "fill_" + c.config.Missing.CategoricalStrategy,
			Reason:        "missing_value",
		})
	}

	if filled > 0 {
		c.logger.Debug("categorical column filled",
			zap.String("column", col),
			zap.Int("filled", filled),
			zap.String("fill_value", fill),
		)
	}
}

// columnFloats returns the non-missing numeric values of a column.
func columnFloats(tbl *model.Table, col string) []float64 {
	var values []float64
	for _, row := range tbl.Rows {
		if model.IsMissing(row[col]) {
			continue
		}
		if f, ok := model.AsFloat(row[col]); ok {
			values = append(values, f)
		}
	}
	return values
}

// columnMode returns the most frequent non-missing value of a column.
// Ties resolve to the lexicographically smallest value.
func columnMode(tbl *model.Table, col string) (string, bool) {
	counts := make(map[string]int)
	for _, row := range tbl.Rows {
		if model.IsMissing(row[col]) {
			continue
		}
		counts[fmt.Sprintf("%v", row[col])]++
	}
	if len(counts) == 0 {
		return "", false
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}

func rowIdentifier(idx int) string {
	return strconv.Itoa(idx + 1)
}
