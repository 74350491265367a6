package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Action defines the recommended action after an error.
type Action int

const (
	// ActionContinue indicates processing should continue despite the error
	ActionContinue Action = iota
	// ActionRetry indicates the fetch should be retried
	ActionRetry
	// ActionSkipSource indicates the current source should be skipped
	ActionSkipSource
	// ActionAbort indicates the entire run should be aborted
	ActionAbort
)

// ErrorCategory defines categories of errors during a pipeline run.
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryDataConversion
	ErrorCategoryValidation
	ErrorCategorySourceLevel
	ErrorCategoryConnectionLevel
	ErrorCategorySystemLevel
	ErrorCategoryCritical
)

// String returns a string representation of the error category.
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryDataConversion:
		return "DataConversion"
	case ErrorCategoryValidation:
		return "Validation"
	case ErrorCategorySourceLevel:
		return "SourceLevel"
	case ErrorCategoryConnectionLevel:
		return "ConnectionLevel"
	case ErrorCategorySystemLevel:
		return "SystemLevel"
	case ErrorCategoryCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord represents a single error during a run.
type ErrorRecord struct {
	Category    ErrorCategory
	SourceName  string
	Error       error
	Message     string // Derived from Error but stored for serialization
	Timestamp   time.Time
	RetryCount  int
	Recoverable bool
}

// NewErrorRecord creates a new error record with current timestamp.
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:    category,
		Error:       err,
		Timestamp:   time.Now(),
		Recoverable: category < ErrorCategorySystemLevel,
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithSource adds source information to the error record.
func (r ErrorRecord) WithSource(name string) ErrorRecord {
	r.SourceName = name
	return r
}

// WithRetry sets retry information.
func (r ErrorRecord) WithRetry(retryCount int) ErrorRecord {
	r.RetryCount = retryCount
	r.Recoverable = r.Category < ErrorCategorySystemLevel && retryCount < 3
	return r
}

// String returns a formatted error message.
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.SourceName != "" {
		sb.WriteString(fmt.Sprintf("Source: %s ", r.SourceName))
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	if r.RetryCount > 0 {
		sb.WriteString(fmt.Sprintf(" (Retry: %d)", r.RetryCount))
	}

	return sb.String()
}

// ErrorHandler manages error handling and thresholds during a run.
type ErrorHandler struct {
	logger          *zap.Logger
	errorThresholds map[ErrorCategory]int
	errorCounts     map[ErrorCategory]int
	sampleErrors    map[ErrorCategory][]ErrorRecord
	sourceErrors    map[string]int
	mu              sync.Mutex
	maxSamples      int
}

// NewErrorHandler creates a new error handler with default thresholds.
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	thresholds := map[ErrorCategory]int{
		ErrorCategoryWarning:         1000,
		ErrorCategoryDataConversion:  500,
		ErrorCategoryValidation:      100,
		ErrorCategorySourceLevel:     25,
		ErrorCategoryConnectionLevel: 3,
		ErrorCategorySystemLevel:     1,
		ErrorCategoryCritical:        0,
	}

	return &ErrorHandler{
		logger:          logger,
		errorThresholds: thresholds,
		errorCounts:     make(map[ErrorCategory]int),
		sampleErrors:    make(map[ErrorCategory][]ErrorRecord),
		sourceErrors:    make(map[string]int),
		maxSamples:      5, // Store up to 5 sample errors per category
	}
}

// CategorizeError determines the category of an error from its message.
func (eh *ErrorHandler) CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	msg := err.Error()
	var category ErrorCategory

	switch {
	case strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "refused"):
		category = ErrorCategoryConnectionLevel

	case strings.Contains(msg, "convert") ||
		strings.Contains(msg, "parse") ||
		strings.Contains(msg, "unmarshal") ||
		strings.Contains(msg, "decode"):
		category = ErrorCategoryDataConversion

	case strings.Contains(msg, "validate") ||
		strings.Contains(msg, "constraint") ||
		strings.Contains(msg, "invalid"):
		category = ErrorCategoryValidation

	case strings.Contains(msg, "permission") ||
		strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "disk") ||
		strings.Contains(msg, "memory"):
		category = ErrorCategorySystemLevel

	case strings.Contains(msg, "fatal") ||
		strings.Contains(msg, "panic") ||
		strings.Contains(msg, "terminated"):
		category = ErrorCategoryCritical

	default:
		category = ErrorCategorySourceLevel
	}

	if eh.logger != nil {
		eh.logger.Debug("categorized error",
			zap.String("error", msg),
			zap.String("category", category.String()))
	}

	return category
}

// HandleError records an error and determines the next action.
func (eh *ErrorHandler) HandleError(record ErrorRecord) Action {
	eh.RecordError(record)

	switch record.Category {
	case ErrorCategoryNone, ErrorCategoryWarning:
		return ActionContinue

	case ErrorCategoryDataConversion, ErrorCategoryValidation, ErrorCategorySourceLevel:
		if record.Recoverable && record.RetryCount < 3 {
			return ActionRetry
		}
		return ActionSkipSource

	case ErrorCategoryConnectionLevel:
		if record.RetryCount < 3 {
			if eh.logger != nil {
				eh.logger.Warn("retrying after connection error",
					zap.String("source", record.SourceName),
					zap.Int("retry", record.RetryCount+1),
					zap.String("error", record.Message))
			}
			return ActionRetry
		}
		return ActionSkipSource

	case ErrorCategorySystemLevel, ErrorCategoryCritical:
		if eh.logger != nil {
			eh.logger.Error("critical error during pipeline run",
				zap.String("category", record.Category.String()),
				zap.String("error", record.Message))
		}
		return ActionAbort

	default:
		return ActionContinue
	}
}

// ShouldAbortRun determines if accumulated errors warrant aborting the run.
func (eh *ErrorHandler) ShouldAbortRun() bool {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	if eh.errorCounts[ErrorCategoryCritical] > 0 {
		return true
	}

	for _, category := range []ErrorCategory{
		ErrorCategorySystemLevel,
		ErrorCategoryConnectionLevel,
	} {
		if eh.errorCounts[category] >= eh.errorThresholds[category] {
			if eh.logger != nil {
				eh.logger.Error("aborting run due to error threshold",
					zap.String("category", category.String()),
					zap.Int("errorCount", eh.errorCounts[category]),
					zap.Int("threshold", eh.errorThresholds[category]))
			}
			return true
		}
	}

	return false
}

// RecordError saves an error occurrence.
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errorCounts[record.Category]++

	samples := eh.sampleErrors[record.Category]
	if len(samples) < eh.maxSamples {
		eh.sampleErrors[record.Category] = append(samples, record)
	}

	if record.SourceName != "" {
		eh.sourceErrors[record.SourceName]++
	}

	if eh.logger != nil {
		logLevel := zap.InfoLevel
		switch record.Category {
		case ErrorCategoryWarning, ErrorCategoryConnectionLevel, ErrorCategorySourceLevel:
			logLevel = zap.WarnLevel
		case ErrorCategorySystemLevel, ErrorCategoryCritical:
			logLevel = zap.ErrorLevel
		}

		eh.logger.Log(logLevel, "pipeline error",
			zap.String("category", record.Category.String()),
			zap.String("source", record.SourceName),
			zap.String("error", record.Message),
			zap.Bool("recoverable", record.Recoverable),
			zap.Int("retryCount", record.RetryCount))
	}
}

// GetErrorSummary returns a copy of current error counts by category.
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int)
	for category, count := range eh.errorCounts {
		summary[category] = count
	}

	return summary
}

// GetErrorSamples returns sample errors for each category.
func (eh *ErrorHandler) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	samples := make(map[ErrorCategory][]ErrorRecord)
	for category, records := range eh.sampleErrors {
		categorySamples := make([]ErrorRecord, len(records))
		copy(categorySamples, records)
		samples[category] = categorySamples
	}

	return samples
}

// GetSourceErrorCounts returns error counts by source name.
func (eh *ErrorHandler) GetSourceErrorCounts() map[string]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	counts := make(map[string]int)
	for source, count := range eh.sourceErrors {
		counts[source] = count
	}

	return counts
}

// IsErrorThresholdExceeded checks if any category has exceeded its threshold.
func (eh *ErrorHandler) IsErrorThresholdExceeded() bool {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	for category, count := range eh.errorCounts {
		threshold, exists := eh.errorThresholds[category]
		if exists && count > threshold {
			return true
		}
	}

	return false
}
