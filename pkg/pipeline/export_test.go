package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/ingest"
	"github.com/mayursurani/datapipe/pkg/model"
)

func TestExporterWritesTables(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	tbl := salesTable("sales", 2)

	csvPath, err := e.ExportCSV(tbl)
	require.NoError(t, err)
	assert.FileExists(t, csvPath)

	jsonPath, err := e.ExportJSON(tbl)
	require.NoError(t, err)
	assert.FileExists(t, jsonPath)

	parquetPath, err := e.ExportParquet(tbl, "csv_sales")
	require.NoError(t, err)
	assert.FileExists(t, parquetPath)

	got, err := ingest.ReadCSV(csvPath, "")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 2)
}

func TestExporterWriteRunResults(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(dir)
	require.NoError(t, err)

	summary := NewRunSummary()
	summary.AddResult(SourceResult{SourceName: "a", Success: true, RowsRead: 3})
	summary.AddResult(SourceResult{
		SourceName: "b",
		Errors:     []ErrorRecord{{Category: ErrorCategorySourceLevel, Message: "boom"}},
	})
	summary.Complete()

	metrics := NewRunMetrics(zap.NewNop())
	metrics.Start()
	metrics.RecordSourceResult(SourceResult{SourceName: "a", Success: true, RowsRead: 3})
	metrics.Complete()

	path, err := e.WriteRunResults(summary, metrics)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pipeline_results.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, float64(3), out["total_rows"])
	assert.Equal(t, float64(50), out["success_rate"])

	failed, ok := out["failed_sources"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boom", failed["b"])
}

func TestNewExporterRequiresDir(t *testing.T) {
	_, err := NewExporter("")
	assert.Error(t, err)
}

func TestPGColumnType(t *testing.T) {
	assert.Equal(t, "BIGINT", pgColumnType(model.TypeInteger))
	assert.Equal(t, "DOUBLE PRECISION", pgColumnType(model.TypeFloat))
	assert.Equal(t, "BOOLEAN", pgColumnType(model.TypeBoolean))
	assert.Equal(t, "TIMESTAMP WITH TIME ZONE", pgColumnType(model.TypeTimestamp))
	assert.Equal(t, "TEXT", pgColumnType(model.TypeText))
}

func TestSanitizeTableName(t *testing.T) {
	assert.Equal(t, "sales_2025_q1", sanitizeTableName("Sales 2025-Q1"))
	assert.Equal(t, "api_orders", sanitizeTableName("api:orders"))
}

func TestNewS3SinkRejectsBadFormat(t *testing.T) {
	_, err := NewS3Sink(nil, "csv")
	assert.Error(t, err)
}
