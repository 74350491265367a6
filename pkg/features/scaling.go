// pkg/features/scaling.go

package features

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/calc"
	"github.com/mayursurani/datapipe/pkg/model"
)

// Scaling methods. Z-score centers on the mean and divides by the
// standard deviation; min-max maps onto [0,1]; robust centers on the
// median and divides by the interquartile range, so extreme values do
// not dominate the scale.
const (
	ScaleZScore = "zscore"
	ScaleMinMax = "minmax"
	ScaleRobust = "robust"
)

// Scale rescales numeric columns in place using the given method. With
// no columns named, every numeric column is scaled. Integer columns
// become float columns; missing and non-numeric cells are left alone.
// A constant column scales to all zeros under every method.
func (e *Engineer) Scale(tbl *model.Table, method string, cols ...string) error {
	if tbl == nil {
		return errors.New("table is required")
	}
	switch method {
	case ScaleZScore, ScaleMinMax, ScaleRobust:
	default:
		return fmt.Errorf("unknown scaling method %q", method)
	}

	if len(cols) == 0 {
		cols = tbl.NumericColumns()
	} else {
		for _, col := range cols {
			if err := requireNumeric(tbl, col); err != nil {
				return err
			}
		}
	}

	scaled := 0
	for _, col := range cols {
		values := columnValues(tbl, col)
		if len(values) == 0 {
			continue
		}

		center, denom, err := scaleParams(values, method)
		if err != nil {
			return fmt.Errorf("scaling column %q: %w", col, err)
		}
		if denom == 0 {
			denom = 1
		}

		for _, row := range tbl.Rows {
			f, ok := model.AsFloat(row[col])
			if !ok {
				continue
			}
			row[col] = (f - center) / denom
		}
		if def := tbl.GetColumnByName(col); def != nil {
			def.DataType = model.TypeFloat
		}
		scaled++
	}

	e.logger.Info("columns scaled",
		zap.String("table", tbl.Name),
		zap.String("method", method),
		zap.Int("columns", scaled))
	return nil
}

// scaleParams returns the center and divisor for one column under the
// given method.
func scaleParams(values []float64, method string) (center, denom float64, err error) {
	switch method {
	case ScaleZScore:
		summary, err := calc.Metrics(values)
		if err != nil {
			return 0, 0, err
		}
		return summary.Mean, summary.StdDev, nil
	case ScaleMinMax:
		summary, err := calc.Metrics(values)
		if err != nil {
			return 0, 0, err
		}
		return summary.Min, summary.Max - summary.Min, nil
	default:
		q1, err := calc.Quantile(values, 0.25)
		if err != nil {
			return 0, 0, err
		}
		median, err := calc.Quantile(values, 0.5)
		if err != nil {
			return 0, 0, err
		}
		q3, err := calc.Quantile(values, 0.75)
		if err != nil {
			return 0, 0, err
		}
		return median, q3 - q1, nil
	}
}

func columnValues(tbl *model.Table, col string) []float64 {
	values := make([]float64, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		if f, ok := model.AsFloat(row[col]); ok {
			values = append(values, f)
		}
	}
	return values
}
