// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single data cleaning operation applied to
// one cell, recorded for auditability.
type CleaningOperation struct {
	TableName     string      // Logical table name
	ColumnName    string      // Column that was cleaned
	OriginalValue interface{} // Original value (may be nil)
	NewValue      string      // New value after cleaning
	RowIdentifier string      // Identifies the row (row index or ID column)
	Operation     string      // Type of cleaning performed (e.g. "fill_median")
	Reason        string      // Reason for cleaning (e.g. "missing_value")
	CleanedAt     time.Time   // When the cleaning occurred
}

// CleaningStep records one pipeline stage in the cleaning report.
type CleaningStep struct {
	Step      string                 `json:"step"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details"`
}

// QualityStats summarizes data quality at a point in time.
type QualityStats struct {
	TotalRows         int     `json:"total_rows"`
	TotalColumns      int     `json:"total_columns"`
	MissingValues     int     `json:"missing_values"`
	MissingPercentage float64 `json:"missing_percentage"`
	DuplicateRows     int     `json:"duplicate_rows"`
}

// CleaningReport aggregates the stage log and before/after statistics of a
// cleaning pipeline run.
type CleaningReport struct {
	Timestamp time.Time           `json:"timestamp"`
	Steps     []CleaningStep      `json:"steps"`
	Initial   QualityStats        `json:"initial"`
	Final     QualityStats        `json:"final"`
	Duration  time.Duration       `json:"duration_ns"`
	Ops       []CleaningOperation `json:"-"`
	OpCounts  map[string]int      `json:"operation_counts"`
}

// NewCleaningReport initializes an empty report.
func NewCleaningReport() *CleaningReport {
	return &CleaningReport{
		Timestamp: time.Now(),
		OpCounts:  make(map[string]int),
	}
}

// LogStep appends a stage entry to the report.
func (r *CleaningReport) LogStep(step string, details map[string]interface{}) {
	r.Steps = append(r.Steps, CleaningStep{
		Step:      step,
		Timestamp: time.Now(),
		Details:   details,
	})
}

// RecordOp appends a cleaning operation and bumps its counter.
func (r *CleaningReport) RecordOp(op CleaningOperation) {
	op.CleanedAt = time.Now()
	r.Ops = append(r.Ops, op)
	r.OpCounts[op.Operation]++
}
