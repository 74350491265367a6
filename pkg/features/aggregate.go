// pkg/features/aggregate.go

package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
)

// GroupStats holds per-key aggregates of one numeric column.
type GroupStats struct {
	Key   string
	Count int
	Sum   float64
	Mean  float64
	Min   float64
	Max   float64
}

// Aggregate computes count/sum/mean/min/max of valueCol per distinct
// keyCol value. Rows with a missing key or a non-numeric value are
// skipped. Results are sorted by key.
func (e *Engineer) Aggregate(tbl *model.Table, keyCol, valueCol string) ([]GroupStats, error) {
	if tbl == nil {
		return nil, errors.New("table is required")
	}
	if tbl.GetColumnByName(keyCol) == nil {
		return nil, fmt.Errorf("column %q not found", keyCol)
	}
	if err := requireNumeric(tbl, valueCol); err != nil {
		return nil, err
	}

	groups := make(map[string]*GroupStats)
	for _, row := range tbl.Rows {
		if model.IsMissing(row[keyCol]) {
			continue
		}
		f, ok := model.AsFloat(row[valueCol])
		if !ok {
			continue
		}

		key := cellCategory(row[keyCol])
		stats, exists := groups[key]
		if !exists {
			stats = &GroupStats{Key: key, Min: math.Inf(1), Max: math.Inf(-1)}
			groups[key] = stats
		}
		stats.Count++
		stats.Sum += f
		stats.Min = math.Min(stats.Min, f)
		stats.Max = math.Max(stats.Max, f)
	}

	results := make([]GroupStats, 0, len(groups))
	for _, stats := range groups {
		stats.Mean = stats.Sum / float64(stats.Count)
		results = append(results, *stats)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })

	e.logger.Info("aggregation computed",
		zap.String("table", tbl.Name),
		zap.String("key", keyCol),
		zap.String("value", valueCol),
		zap.Int("groups", len(results)))

	return results, nil
}

// AggregateTable renders per-key aggregates as a new table with key,
// count, sum, mean, min and max columns.
func (e *Engineer) AggregateTable(tbl *model.Table, keyCol, valueCol string) (*model.Table, error) {
	stats, err := e.Aggregate(tbl, keyCol, valueCol)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Record, len(stats))
	for i, s := range stats {
		rows[i] = model.Record{
			keyCol:             s.Key,
			valueCol + "_count": int64(s.Count),
			valueCol + "_sum":   s.Sum,
			valueCol + "_mean":  s.Mean,
			valueCol + "_min":   s.Min,
			valueCol + "_max":   s.Max,
		}
	}

	columns := []string{keyCol,
		valueCol + "_count", valueCol + "_sum", valueCol + "_mean",
		valueCol + "_min", valueCol + "_max"}
	return model.NewTable(tbl.Name+"_by_"+keyCol, columns, rows), nil
}

// MergeAggregates joins per-key aggregates back onto the source table as
// <valueCol>_count, <valueCol>_sum and <valueCol>_mean columns. Rows whose
// key was skipped during aggregation get nil.
func (e *Engineer) MergeAggregates(tbl *model.Table, keyCol, valueCol string) error {
	stats, err := e.Aggregate(tbl, keyCol, valueCol)
	if err != nil {
		return err
	}

	byKey := make(map[string]GroupStats, len(stats))
	for _, s := range stats {
		byKey[s.Key] = s
	}

	lookup := func(row model.Record) (GroupStats, bool) {
		if model.IsMissing(row[keyCol]) {
			return GroupStats{}, false
		}
		s, ok := byKey[cellCategory(row[keyCol])]
		return s, ok
	}

	tbl.AddColumn(valueCol+"_count", model.TypeInteger, func(row model.Record) interface{} {
		s, ok := lookup(row)
		if !ok {
			return nil
		}
		return int64(s.Count)
	})
	tbl.AddColumn(valueCol+"_sum", model.TypeFloat, func(row model.Record) interface{} {
		s, ok := lookup(row)
		if !ok {
			return nil
		}
		return s.Sum
	})
	tbl.AddColumn(valueCol+"_mean", model.TypeFloat, func(row model.Record) interface{} {
		s, ok := lookup(row)
		if !ok {
			return nil
		}
		return s.Mean
	})

	return nil
}
