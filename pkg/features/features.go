// pkg/features/features.go

// Package features derives new columns from existing ones: date parts,
// numeric transforms and bins, categorical encodings, per-key aggregates,
// text statistics and column interactions.
package features

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
	"github.com/mayursurani/datapipe/pkg/transform"
)

// Engineer adds derived columns to tables. Methods mutate the table in
// place; callers wanting the original keep a Copy.
type Engineer struct {
	logger *zap.Logger
}

// NewEngineer creates a feature engineer.
func NewEngineer() *Engineer {
	return &Engineer{logger: zap.L().Named("features")}
}

// DateFeatures expands a timestamp column into <col>_year, <col>_month,
// <col>_day, <col>_weekday (0=Monday), <col>_quarter, is_weekend and
// season columns. String cells are parsed with the shared date layouts;
// unparseable or missing cells yield nil feature values.
func (e *Engineer) DateFeatures(tbl *model.Table, col string) error {
	if tbl == nil {
		return errors.New("table is required")
	}
	if tbl.GetColumnByName(col) == nil {
		return fmt.Errorf("column %q not found", col)
	}

	parts := []struct {
		suffix   string
		dataType string
		fn       func(time.Time) interface{}
	}{
		{"_year", model.TypeInteger, func(t time.Time) interface{} { return int64(t.Year()) }},
		{"_month", model.TypeInteger, func(t time.Time) interface{} { return int64(t.Month()) }},
		{"_day", model.TypeInteger, func(t time.Time) interface{} { return int64(t.Day()) }},
		{"_weekday", model.TypeInteger, func(t time.Time) interface{} { return mondayIndexed(t.Weekday()) }},
		{"_quarter", model.TypeInteger, func(t time.Time) interface{} { return int64((int(t.Month())-1)/3 + 1) }},
		{"_is_weekend", model.TypeInteger, func(t time.Time) interface{} { return boolFlag(isWeekend(t.Weekday())) }},
		{"_season", model.TypeText, func(t time.Time) interface{} { return Season(t.Month()) }},
	}

	for _, part := range parts {
		fn := part.fn
		tbl.AddColumn(col+part.suffix, part.dataType, func(row model.Record) interface{} {
			t, ok := cellTime(row[col])
			if !ok {
				return nil
			}
			return fn(t)
		})
	}

	e.logger.Info("date features created",
		zap.String("table", tbl.Name),
		zap.String("column", col),
		zap.Int("features", len(parts)))
	return nil
}

// Season maps a month to the Indian season name used across the sample
// datasets: Winter, Summer, Monsoon or Autumn.
func Season(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Summer"
	case time.June, time.July, time.August, time.September:
		return "Monsoon"
	default:
		return "Autumn"
	}
}

// Log1p adds <col>_log holding log(1+x) of a numeric column. Negative
// values below -1 and non-numeric cells yield nil.
func (e *Engineer) Log1p(tbl *model.Table, col string) error {
	if err := requireNumeric(tbl, col); err != nil {
		return err
	}

	tbl.AddColumn(col+"_log", model.TypeFloat, func(row model.Record) interface{} {
		f, ok := model.AsFloat(row[col])
		if !ok || f < -1 {
			return nil
		}
		return math.Log1p(f)
	})

	e.logger.Info("log feature created", zap.String("table", tbl.Name), zap.String("column", col))
	return nil
}

// Ratio adds a column holding numerator/denominator for two numeric
// columns. Rows with a zero or missing denominator get nil.
func (e *Engineer) Ratio(tbl *model.Table, name, numerator, denominator string) error {
	if err := requireNumeric(tbl, numerator); err != nil {
		return err
	}
	if err := requireNumeric(tbl, denominator); err != nil {
		return err
	}

	tbl.AddColumn(name, model.TypeFloat, func(row model.Record) interface{} {
		num, okN := model.AsFloat(row[numerator])
		den, okD := model.AsFloat(row[denominator])
		if !okN || !okD || den == 0 {
			return nil
		}
		return num / den
	})

	e.logger.Info("ratio feature created",
		zap.String("table", tbl.Name),
		zap.String("column", name))
	return nil
}

// Interaction adds a column holding the product of two numeric columns.
func (e *Engineer) Interaction(tbl *model.Table, name, colA, colB string) error {
	if err := requireNumeric(tbl, colA); err != nil {
		return err
	}
	if err := requireNumeric(tbl, colB); err != nil {
		return err
	}

	tbl.AddColumn(name, model.TypeFloat, func(row model.Record) interface{} {
		a, okA := model.AsFloat(row[colA])
		b, okB := model.AsFloat(row[colB])
		if !okA || !okB {
			return nil
		}
		return a * b
	})

	e.logger.Info("interaction feature created",
		zap.String("table", tbl.Name),
		zap.String("column", name))
	return nil
}

// Bin buckets a numeric column into labeled ranges. Edges must be
// ascending and one longer than labels; a value lands in the bin whose
// range is (edges[i], edges[i+1]]. Values at or below the first edge or
// above the last get nil, matching the pandas cut behavior the sample
// datasets were built with.
func (e *Engineer) Bin(tbl *model.Table, col, target string, edges []float64, labels []string) error {
	if err := requireNumeric(tbl, col); err != nil {
		return err
	}
	if len(edges) != len(labels)+1 {
		return fmt.Errorf("need %d edges for %d labels, got %d", len(labels)+1, len(labels), len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("bin edges must be ascending: %v", edges)
		}
	}
	if target == "" {
		target = col + "_bin"
	}

	tbl.AddColumn(target, model.TypeText, func(row model.Record) interface{} {
		f, ok := model.AsFloat(row[col])
		if !ok {
			return nil
		}
		for i := 0; i < len(labels); i++ {
			if f > edges[i] && f <= edges[i+1] {
				return labels[i]
			}
		}
		return nil
	})

	e.logger.Info("bin feature created",
		zap.String("table", tbl.Name),
		zap.String("column", target),
		zap.Int("bins", len(labels)))
	return nil
}

// OneHot expands a categorical column into <prefix>_<value> indicator
// columns, one per distinct non-missing value, in sorted value order.
func (e *Engineer) OneHot(tbl *model.Table, col, prefix string) error {
	if tbl == nil {
		return errors.New("table is required")
	}
	if tbl.GetColumnByName(col) == nil {
		return fmt.Errorf("column %q not found", col)
	}
	if prefix == "" {
		prefix = col
	}

	seen := make(map[string]bool)
	for _, row := range tbl.Rows {
		if model.IsMissing(row[col]) {
			continue
		}
		seen[cellCategory(row[col])] = true
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)

	for _, value := range values {
		value := value
		tbl.AddColumn(prefix+"_"+slugify(value), model.TypeInteger, func(row model.Record) interface{} {
			if model.IsMissing(row[col]) {
				return int64(0)
			}
			return boolFlag(cellCategory(row[col]) == value)
		})
	}

	e.logger.Info("one-hot features created",
		zap.String("table", tbl.Name),
		zap.String("column", col),
		zap.Int("categories", len(values)))
	return nil
}

// FrequencyEncode adds <col>_frequency holding the share of rows carrying
// each category, in [0,1]. Missing cells get nil.
func (e *Engineer) FrequencyEncode(tbl *model.Table, col string) error {
	if tbl == nil {
		return errors.New("table is required")
	}
	if tbl.GetColumnByName(col) == nil {
		return fmt.Errorf("column %q not found", col)
	}
	if len(tbl.Rows) == 0 {
		return errors.New("table has no rows")
	}

	counts := make(map[string]int)
	for _, row := range tbl.Rows {
		if model.IsMissing(row[col]) {
			continue
		}
		counts[cellCategory(row[col])]++
	}

	total := float64(len(tbl.Rows))
	tbl.AddColumn(col+"_frequency", model.TypeFloat, func(row model.Record) interface{} {
		if model.IsMissing(row[col]) {
			return nil
		}
		return float64(counts[cellCategory(row[col])]) / total
	})

	e.logger.Info("frequency encoding created",
		zap.String("table", tbl.Name),
		zap.String("column", col),
		zap.Int("categories", len(counts)))
	return nil
}

// TextFeatures adds <col>_length and <col>_word_count for a text column.
func (e *Engineer) TextFeatures(tbl *model.Table, col string) error {
	if tbl == nil {
		return errors.New("table is required")
	}
	if tbl.GetColumnByName(col) == nil {
		return fmt.Errorf("column %q not found", col)
	}

	tbl.AddColumn(col+"_length", model.TypeInteger, func(row model.Record) interface{} {
		s, ok := cellText(row[col])
		if !ok {
			return nil
		}
		return int64(len([]rune(s)))
	})
	tbl.AddColumn(col+"_word_count", model.TypeInteger, func(row model.Record) interface{} {
		s, ok := cellText(row[col])
		if !ok {
			return nil
		}
		return int64(len(strings.Fields(s)))
	})

	e.logger.Info("text features created",
		zap.String("table", tbl.Name),
		zap.String("column", col))
	return nil
}

func requireNumeric(tbl *model.Table, col string) error {
	if tbl == nil {
		return errors.New("table is required")
	}
	def := tbl.GetColumnByName(col)
	if def == nil {
		return fmt.Errorf("column %q not found", col)
	}
	if def.DataType != model.TypeInteger && def.DataType != model.TypeFloat {
		return fmt.Errorf("column %q is %s, not numeric", col, def.DataType)
	}
	return nil
}

// mondayIndexed converts Go's Sunday-first weekday to the Monday-first
// index the sample datasets use (Monday=0 .. Sunday=6).
func mondayIndexed(d time.Weekday) int64 {
	return int64((int(d) + 6) % 7)
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func boolFlag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func cellTime(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return transform.ParseDate(x)
	default:
		return time.Time{}, false
	}
}

func cellText(v interface{}) (string, bool) {
	if model.IsMissing(v) {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func cellCategory(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// slugify makes a category value safe as a column name suffix.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer(" ", "_", "-", "_", "/", "_")
	return replacer.Replace(s)
}
