// Package pipeline fans out over registered ingestion sources with a
// worker pool, retries recoverable failures, and merges the fetched
// tables into a single run result.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/ingest"
	"github.com/mayursurani/datapipe/pkg/model"
)

// Pipeline orchestrates a multi-source ingestion run.
type Pipeline struct {
	sources      map[string]ingest.Source
	order        []string
	errorHandler *ErrorHandler
	metrics      *RunMetrics
	logger       *zap.Logger
	workerCount  int
	maxRetries   int
	retryDelay   time.Duration
}

// NewPipeline creates a pipeline from configuration. Sources are added
// afterwards with Register.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := zap.L().Named("pipeline")

	workerCount := cfg.WorkerPoolSize
	if workerCount <= 0 {
		workerCount = defaultWorkerCount()
	}

	return &Pipeline{
		sources:      make(map[string]ingest.Source),
		errorHandler: NewErrorHandler(logger),
		metrics:      NewRunMetrics(logger),
		logger:       logger,
		workerCount:  workerCount,
		maxRetries:   cfg.RetryAttempts,
		retryDelay:   cfg.RetryDelay,
	}, nil
}

// Register adds a source to the run. Registering a second source under the
// same name is an error.
func (p *Pipeline) Register(src ingest.Source) error {
	if src == nil {
		return fmt.Errorf("source is nil")
	}
	name := src.Name()
	if name == "" {
		return fmt.Errorf("source name is empty")
	}
	if _, exists := p.sources[name]; exists {
		return fmt.Errorf("source %q is already registered", name)
	}

	p.sources[name] = src
	p.order = append(p.order, name)
	return nil
}

// SourceNames returns registered source names in registration order.
func (p *Pipeline) SourceNames() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Run fetches every registered source concurrently and returns the fetched
// tables keyed by source name together with a run summary. A failed source
// does not fail the run; it is reported in the summary.
func (p *Pipeline) Run(ctx context.Context) (map[string]*model.Table, *RunSummary, error) {
	if len(p.sources) == 0 {
		return nil, nil, fmt.Errorf("no sources registered")
	}

	summary := NewRunSummary()
	p.metrics.Start()

	workerCount := p.workerCount
	if workerCount > len(p.sources) {
		workerCount = len(p.sources)
	}

	p.logger.Info("starting pipeline run",
		zap.String("runID", summary.RunID),
		zap.Int("sources", len(p.sources)),
		zap.Int("workers", workerCount))

	jobs := make(chan SourceJob, len(p.sources))
	results := make(chan SourceResult, len(p.sources))

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		worker := NewWorker(i, p.sources, p.errorHandler, p.retryDelay, p.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(workerCtx, jobs, results)
		}()
	}

	for _, name := range p.order {
		jobs <- NewSourceJob(name).WithMaxRetries(p.maxRetries)
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	tables := make(map[string]*model.Table, len(p.sources))
	for result := range results {
		p.metrics.RecordSourceResult(result)
		summary.AddResult(result)

		if result.Success {
			tables[result.SourceName] = result.Table
		} else if p.errorHandler.ShouldAbortRun() {
			p.logger.Error("aborting run due to error threshold",
				zap.String("source", result.SourceName))
			cancelWorkers()
		}
	}

	summary.Complete()
	p.metrics.Complete()

	p.logger.Info("pipeline run completed",
		zap.String("runID", summary.RunID),
		zap.Int("successfulSources", len(summary.SuccessfulSources)),
		zap.Int("failedSources", len(summary.FailedSources)),
		zap.Int64("totalRows", summary.TotalRows),
		zap.Duration("duration", summary.Duration))

	if err := ctx.Err(); err != nil {
		return tables, summary, fmt.Errorf("run interrupted: %w", err)
	}

	return tables, summary, nil
}

// FetchOne runs a single named source outside the pool, still honoring the
// retry policy.
func (p *Pipeline) FetchOne(ctx context.Context, name string) (*model.Table, error) {
	if _, ok := p.sources[name]; !ok {
		return nil, fmt.Errorf("source %q is not registered", name)
	}

	worker := NewWorker(-1, p.sources, p.errorHandler, p.retryDelay, p.logger)
	result := worker.ProcessJob(ctx, NewSourceJob(name).WithMaxRetries(p.maxRetries))
	p.metrics.RecordSourceResult(result)

	if !result.Success {
		return nil, fmt.Errorf("fetching %s: %s", name, result.Errors[0].Message)
	}
	return result.Table, nil
}

// Metrics returns the run metrics collector.
func (p *Pipeline) Metrics() *RunMetrics {
	return p.metrics
}

// GetErrorSummary returns accumulated error counts by category.
func (p *Pipeline) GetErrorSummary() map[ErrorCategory]int {
	return p.errorHandler.GetErrorSummary()
}

// MergeTables concatenates tables that share a column layout into one table.
// Columns are unioned; rows missing a column get nil. Source order follows
// the names slice so merged output is deterministic.
func MergeTables(name string, tables map[string]*model.Table, names []string) *model.Table {
	var columns []string
	seen := make(map[string]bool)
	var rows []model.Record

	for _, srcName := range names {
		tbl, ok := tables[srcName]
		if !ok || tbl == nil {
			continue
		}
		for _, col := range tbl.ColumnNames() {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
		rows = append(rows, tbl.Rows...)
	}

	return model.NewTable(name, columns, rows)
}

// defaultWorkerCount derives a pool size from CPU count, clamped so a small
// run does not spawn idle goroutines and a big host does not flood sources.
func defaultWorkerCount() int {
	n := runtime.NumCPU()
	switch {
	case n < 2:
		return 2
	case n > 8:
		return 8
	default:
		return n
	}
}
