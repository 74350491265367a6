// pkg/model/validation.go
package model

import "time"

// ValidationIssue ties an error or warning message to a record.
type ValidationIssue struct {
	RecordNum int    `json:"record_num"` // 1-based position in the source table
	Message   string `json:"message"`
}

// ValidationReport summarizes a table validation run.
type ValidationReport struct {
	Timestamp      time.Time         `json:"timestamp"`
	TotalRecords   int               `json:"total_records"`
	ValidRecords   int               `json:"valid_records"`
	InvalidRecords int               `json:"invalid_records"`
	Errors         []ValidationIssue `json:"errors"`
	Warnings       []ValidationIssue `json:"warnings"`
}

// NewValidationReport initializes an empty report.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{Timestamp: time.Now()}
}

// ValidRate returns the percentage of records that passed validation.
func (r *ValidationReport) ValidRate() float64 {
	if r.TotalRecords == 0 {
		return 0
	}
	return float64(r.ValidRecords) / float64(r.TotalRecords) * 100
}
