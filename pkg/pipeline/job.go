package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/mayursurani/datapipe/pkg/model"
)

// SourceJob represents one ingestion attempt for a registered source.
type SourceJob struct {
	ID         string
	SourceName string
	CreatedAt  time.Time
	RetryCount int
	MaxRetries int
}

// NewSourceJob creates a job with defaults.
func NewSourceJob(sourceName string) SourceJob {
	return SourceJob{
		ID:         uuid.New().String(),
		SourceName: sourceName,
		CreatedAt:  time.Now(),
		MaxRetries: 3,
	}
}

// WithMaxRetries sets the maximum retry count and returns the modified job.
func (j SourceJob) WithMaxRetries(maxRetries int) SourceJob {
	j.MaxRetries = maxRetries
	return j
}

// IsRetryable checks if the job can be retried.
func (j SourceJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}

// Retry increments the retry count and returns the modified job.
func (j SourceJob) Retry() SourceJob {
	j.RetryCount++
	return j
}

// SourceResult represents the outcome of fetching one source.
type SourceResult struct {
	JobID      string
	SourceName string
	Success    bool
	Table      *model.Table
	RowsRead   int64
	Errors     []ErrorRecord
	Warnings   []string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	RetryCount int
	WorkerID   int
}

// NewSourceResult initializes a result for a job.
func NewSourceResult(job SourceJob, workerID int) *SourceResult {
	return &SourceResult{
		JobID:      job.ID,
		SourceName: job.SourceName,
		StartTime:  time.Now(),
		RetryCount: job.RetryCount,
		WorkerID:   workerID,
		Errors:     make([]ErrorRecord, 0),
		Warnings:   make([]string, 0),
	}
}

// Complete marks the fetch as finished and calculates duration.
func (r *SourceResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddError adds an error to the result and marks it failed.
func (r *SourceResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// AddWarning adds a warning to the result.
func (r *SourceResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// HasErrors checks if any errors occurred.
func (r *SourceResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// RunSummary represents the final outcome of a pipeline run.
type RunSummary struct {
	RunID             string
	Sources           []string
	SuccessfulSources []string
	FailedSources     map[string]string
	TotalRows         int64
	ErrorCategories   map[ErrorCategory]int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
	Throughput        float64 // rows/second
}

// NewRunSummary initializes a summary for a new run.
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:             uuid.New().String(),
		Sources:           make([]string, 0),
		SuccessfulSources: make([]string, 0),
		FailedSources:     make(map[string]string),
		ErrorCategories:   make(map[ErrorCategory]int),
		StartTime:         time.Now(),
	}
}

// AddResult incorporates a source result into the summary.
func (s *RunSummary) AddResult(result SourceResult) {
	s.Sources = append(s.Sources, result.SourceName)

	if result.Success {
		s.SuccessfulSources = append(s.SuccessfulSources, result.SourceName)
		s.TotalRows += result.RowsRead
		return
	}

	if len(result.Errors) > 0 {
		s.FailedSources[result.SourceName] = result.Errors[0].Message
	} else {
		s.FailedSources[result.SourceName] = "unknown error"
	}
	for _, rec := range result.Errors {
		s.ErrorCategories[rec.Category]++
	}
}

// Complete marks the run as finished and calculates throughput.
func (s *RunSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	if s.Duration.Seconds() > 0 {
		s.Throughput = float64(s.TotalRows) / s.Duration.Seconds()
	}
}

// SuccessRate returns the percentage of sources fetched successfully.
func (s *RunSummary) SuccessRate() float64 {
	if len(s.Sources) == 0 {
		return 0
	}
	return float64(len(s.SuccessfulSources)) / float64(len(s.Sources)) * 100
}
