package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/format"
)

// RunMetrics tracks per-source and aggregate metrics for a pipeline run.
type RunMetrics struct {
	mu              sync.Mutex
	logger          *zap.Logger
	StartTime       time.Time
	EndTime         time.Time
	RowsBySource    map[string]int64
	DurationsBySrc  map[string]time.Duration
	RetriesBySource map[string]int
	TotalRows       int64
	FailedSources   int
	ErrorCounts     map[ErrorCategory]int
}

// NewRunMetrics creates a metrics collector.
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		logger:          logger,
		RowsBySource:    make(map[string]int64),
		DurationsBySrc:  make(map[string]time.Duration),
		RetriesBySource: make(map[string]int),
		ErrorCounts:     make(map[ErrorCategory]int),
	}
}

// Start marks the beginning of a run.
func (m *RunMetrics) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartTime = time.Now()
	m.EndTime = time.Time{}
}

// RecordSourceResult records metrics for one completed source fetch.
func (m *RunMetrics) RecordSourceResult(result SourceResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RowsBySource[result.SourceName] = result.RowsRead
	m.DurationsBySrc[result.SourceName] = result.Duration
	m.RetriesBySource[result.SourceName] = result.RetryCount

	if result.Success {
		m.TotalRows += result.RowsRead
	} else {
		m.FailedSources++
		for _, rec := range result.Errors {
			m.ErrorCounts[rec.Category]++
		}
	}
}

// Complete marks the run as finished.
func (m *RunMetrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EndTime = time.Now()
}

// Duration returns the total elapsed run time.
func (m *RunMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// Throughput returns rows per second over the whole run.
func (m *RunMetrics) Throughput() float64 {
	seconds := m.Duration().Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(m.TotalRows) / seconds
}

// Report renders a plain-text metrics report.
func (m *RunMetrics) Report() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("Ingestion Metrics\n")
	sb.WriteString("=================\n")
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", format.Duration(m.unlockedDuration())))
	sb.WriteString(fmt.Sprintf("Total Rows:     %d\n", m.TotalRows))
	sb.WriteString(fmt.Sprintf("Failed Sources: %d\n", m.FailedSources))

	sources := make([]string, 0, len(m.RowsBySource))
	for name := range m.RowsBySource {
		sources = append(sources, name)
	}
	sort.Strings(sources)

	sb.WriteString("\nPer Source\n----------\n")
	for _, name := range sources {
		sb.WriteString(fmt.Sprintf("- %s: %d rows in %s (retries: %d)\n",
			name,
			m.RowsBySource[name],
			format.Duration(m.DurationsBySrc[name]),
			m.RetriesBySource[name]))
	}

	if len(m.ErrorCounts) > 0 {
		sb.WriteString("\nErrors\n------\n")
		for category, count := range m.ErrorCounts {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", category.String(), count))
		}
	}

	return sb.String()
}

func (m *RunMetrics) unlockedDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// ToJSON serializes the metrics for the run results file.
func (m *RunMetrics) ToJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	errorCounts := make(map[string]int, len(m.ErrorCounts))
	for category, count := range m.ErrorCounts {
		errorCounts[category.String()] = count
	}

	durations := make(map[string]string, len(m.DurationsBySrc))
	for name, d := range m.DurationsBySrc {
		durations[name] = d.String()
	}

	return json.Marshal(struct {
		DurationSeconds float64           `json:"duration_seconds"`
		TotalRows       int64             `json:"total_rows"`
		FailedSources   int               `json:"failed_sources"`
		RowsBySource    map[string]int64  `json:"rows_by_source"`
		SourceDurations map[string]string `json:"source_durations"`
		ErrorCounts     map[string]int    `json:"error_counts"`
	}{
		DurationSeconds: m.unlockedDuration().Seconds(),
		TotalRows:       m.TotalRows,
		FailedSources:   m.FailedSources,
		RowsBySource:    m.RowsBySource,
		SourceDurations: durations,
		ErrorCounts:     errorCounts,
	})
}
