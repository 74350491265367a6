package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCategorizeError(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())

	tests := []struct {
		msg  string
		want ErrorCategory
	}{
		{"connection refused", ErrorCategoryConnectionLevel},
		{"read timeout on socket", ErrorCategoryConnectionLevel},
		{"failed to parse value", ErrorCategoryDataConversion},
		{"cannot unmarshal field", ErrorCategoryDataConversion},
		{"invalid customer ID", ErrorCategoryValidation},
		{"permission denied writing file", ErrorCategorySystemLevel},
		{"fatal: process terminated", ErrorCategoryCritical},
		{"boom", ErrorCategorySourceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, eh.CategorizeError(errors.New(tt.msg)))
		})
	}

	assert.Equal(t, ErrorCategoryNone, eh.CategorizeError(nil))
}

func TestHandleErrorActions(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())

	warn := NewErrorRecord(errors.New("slow source"), ErrorCategoryWarning)
	assert.Equal(t, ActionContinue, eh.HandleError(warn))

	conv := NewErrorRecord(errors.New("parse failed"), ErrorCategoryDataConversion).WithRetry(0)
	assert.Equal(t, ActionRetry, eh.HandleError(conv))

	exhausted := NewErrorRecord(errors.New("parse failed"), ErrorCategoryDataConversion).WithRetry(3)
	assert.Equal(t, ActionSkipSource, eh.HandleError(exhausted))

	conn := NewErrorRecord(errors.New("connection refused"), ErrorCategoryConnectionLevel).WithRetry(1)
	assert.Equal(t, ActionRetry, eh.HandleError(conn))

	critical := NewErrorRecord(errors.New("fatal"), ErrorCategoryCritical)
	assert.Equal(t, ActionAbort, eh.HandleError(critical))
}

func TestErrorHandlerThresholds(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())

	assert.False(t, eh.ShouldAbortRun())
	assert.False(t, eh.IsErrorThresholdExceeded())

	eh.RecordError(NewErrorRecord(errors.New("fatal"), ErrorCategoryCritical).WithSource("s1"))

	assert.True(t, eh.ShouldAbortRun())
	assert.True(t, eh.IsErrorThresholdExceeded())
	assert.Equal(t, 1, eh.GetErrorSummary()[ErrorCategoryCritical])
	assert.Equal(t, 1, eh.GetSourceErrorCounts()["s1"])
}

func TestErrorHandlerSampleCap(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())

	for i := 0; i < 10; i++ {
		eh.RecordError(NewErrorRecord(errors.New("boom"), ErrorCategorySourceLevel))
	}

	samples := eh.GetErrorSamples()
	assert.Len(t, samples[ErrorCategorySourceLevel], 5)
	assert.Equal(t, 10, eh.GetErrorSummary()[ErrorCategorySourceLevel])
}

func TestErrorRecordString(t *testing.T) {
	rec := NewErrorRecord(errors.New("boom"), ErrorCategorySourceLevel).
		WithSource("csv_sales").
		WithRetry(2)

	s := rec.String()
	assert.Contains(t, s, "SourceLevel")
	assert.Contains(t, s, "csv_sales")
	assert.Contains(t, s, "boom")
	assert.Contains(t, s, "Retry: 2")
}
