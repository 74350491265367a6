// pkg/cleaner/outliers.go

package cleaner

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/calc"
	"github.com/mayursurani/datapipe/pkg/model"
)

// handleOutliers caps numeric values outside the configured bounds.
// Values are clipped, never removed, so row counts are stable.
func (c *Cleaner) handleOutliers(tbl *model.Table, report *model.CleaningReport) {
	capped := make(map[string]interface{})
	total := 0

	for _, col := range tbl.NumericColumns() {
		values := columnFloats(tbl, col)
		if len(values) < 4 {
			continue
		}

		lower, upper, ok := c.outlierBounds(values)
		if !ok {
			continue
		}

		count := 0
		for i, row := range tbl.Rows {
			f, isNum := model.AsFloat(row[col])
			if !isNum {
				continue
			}
			clipped := f
			if f < lower {
				clipped = lower
			} else if f > upper {
				clipped = upper
			}
			if clipped == f {
				continue
			}
			original := row[col]
			row[col] = clipped
			count++
			report.RecordOp(model.CleaningOperation{
				TableName:     tbl.Name,
				ColumnName:    col,
				OriginalValue: original,
				NewValue:      strconv.FormatFloat(clipped, 'f', -1, 64),
				RowIdentifier: rowIdentifier(i),
				Operation:     "cap_outlier",
				Reason:        "outlier_" + c.config.Outliers.Method,
			})
		}

		if count > 0 {
			capped[col] = count
			total += count
		}
	}

	report.LogStep("handle_outliers", capped)
	c.logger.Info("outliers capped", zap.Int("total", total))
}

// outlierBounds computes the clipping range for a column.
func (c *Cleaner) outlierBounds(values []float64) (lower, upper float64, ok bool) {
	threshold := c.config.Outliers.Threshold

	switch c.config.Outliers.Method {
	case MethodIQR:
		q1, err1 := calc.Quantile(values, 0.25)
		q3, err3 := calc.Quantile(values, 0.75)
		if err1 != nil || err3 != nil {
			return 0, 0, false
		}
		iqr := q3 - q1
		return q1 - threshold*iqr, q3 + threshold*iqr, true
	case MethodZScore:
		summary, err := calc.Metrics(values)
		if err != nil || summary.StdDev == 0 {
			return 0, 0, false
		}
		return summary.Mean - threshold*summary.StdDev, summary.Mean + threshold*summary.StdDev, true
	default:
		return 0, 0, false
	}
}
