package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/ingest"
	"github.com/mayursurani/datapipe/pkg/model"
)

// WorkerState represents the current state of a worker.
type WorkerState string

const (
	WorkerStateIdle      WorkerState = "idle"
	WorkerStateWorking   WorkerState = "working"
	WorkerStateCompleted WorkerState = "completed"
)

// Worker fetches sources from the job queue, retrying per the error
// handler's verdict, and stamps provenance columns onto fetched tables.
type Worker struct {
	ID           int
	sources      map[string]ingest.Source
	errorHandler *ErrorHandler
	logger       *zap.Logger
	retryDelay   time.Duration
	state        WorkerState
	stateLock    sync.RWMutex
}

// NewWorker creates a worker over a shared source registry.
func NewWorker(
	id int,
	sources map[string]ingest.Source,
	errorHandler *ErrorHandler,
	retryDelay time.Duration,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		ID:           id,
		sources:      sources,
		errorHandler: errorHandler,
		retryDelay:   retryDelay,
		logger:       logger.With(zap.Int("workerID", id)),
		state:        WorkerStateIdle,
	}
}

// GetState returns the current state of the worker.
func (w *Worker) GetState() WorkerState {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()
	return w.state
}

func (w *Worker) setState(state WorkerState) {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()
	w.state = state
}

// Start begins the worker processing loop.
func (w *Worker) Start(ctx context.Context, jobs <-chan SourceJob, results chan<- SourceResult) {
	w.setState(WorkerStateWorking)
	w.logger.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("worker stopping due to context cancellation")
			w.setState(WorkerStateCompleted)
			return

		case job, ok := <-jobs:
			if !ok {
				w.logger.Debug("worker stopping due to closed job channel")
				w.setState(WorkerStateCompleted)
				return
			}

			result := w.ProcessJob(ctx, job)

			select {
			case results <- result:
			case <-ctx.Done():
				w.logger.Warn("context cancelled while sending result",
					zap.String("source", job.SourceName))
				w.setState(WorkerStateCompleted)
				return
			}
		}
	}
}

// ProcessJob fetches a single source, retrying recoverable failures up to
// the job's retry budget.
func (w *Worker) ProcessJob(ctx context.Context, job SourceJob) SourceResult {
	result := NewSourceResult(job, w.ID)

	w.logger.Info("fetching source",
		zap.String("source", job.SourceName),
		zap.String("jobID", job.ID))

	src, ok := w.sources[job.SourceName]
	if !ok {
		record := NewErrorRecord(
			fmt.Errorf("source %q is not registered", job.SourceName),
			ErrorCategorySourceLevel,
		).WithSource(job.SourceName)
		w.errorHandler.RecordError(record)
		result.AddError(record)
		result.Complete(false)
		return *result
	}

	for {
		tbl, err := src.Fetch(ctx)
		if err == nil {
			stampProvenance(tbl, job.SourceName, time.Now().UTC())
			result.Table = tbl
			result.RowsRead = int64(len(tbl.Rows))
			result.Complete(true)
			w.logger.Info("source fetched",
				zap.String("source", job.SourceName),
				zap.Int64("rows", result.RowsRead),
				zap.Duration("duration", result.Duration))
			return *result
		}

		record := NewErrorRecord(err, w.errorHandler.CategorizeError(err)).
			WithSource(job.SourceName).
			WithRetry(job.RetryCount)

		action := w.errorHandler.HandleError(record)
		if action == ActionRetry && job.IsRetryable() {
			job = job.Retry()
			if !w.sleepBeforeRetry(ctx, job.RetryCount) {
				record = NewErrorRecord(ctx.Err(), ErrorCategorySystemLevel).
					WithSource(job.SourceName)
				result.AddError(record)
				result.Complete(false)
				return *result
			}
			continue
		}

		result.AddError(record)
		result.RetryCount = job.RetryCount
		result.Complete(false)
		w.logger.Warn("source fetch failed",
			zap.String("source", job.SourceName),
			zap.Int("retries", job.RetryCount),
			zap.String("error", record.Message))
		return *result
	}
}

// sleepBeforeRetry waits with a backoff that doubles per attempt. Returns
// false when the context is cancelled during the wait.
func (w *Worker) sleepBeforeRetry(ctx context.Context, attempt int) bool {
	if w.retryDelay <= 0 {
		return ctx.Err() == nil
	}

	delay := w.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

// stampProvenance appends data_source and ingested_at columns so downstream
// consumers can tell merged rows apart.
func stampProvenance(tbl *model.Table, sourceName string, at time.Time) {
	if tbl == nil {
		return
	}
	stamp := at.Format(time.RFC3339)
	tbl.AddColumn("data_source", model.TypeText, func(model.Record) interface{} {
		return sourceName
	})
	tbl.AddColumn("ingested_at", model.TypeTimestamp, func(model.Record) interface{} {
		return stamp
	})
}
