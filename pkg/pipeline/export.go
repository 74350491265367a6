package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/connector"
	"github.com/mayursurani/datapipe/pkg/ingest"
	"github.com/mayursurani/datapipe/pkg/model"
)

// Exporter writes run outputs (fetched tables and the results file) to a
// local directory.
type Exporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExporter creates an exporter rooted at outputDir.
func NewExporter(outputDir string) (*Exporter, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Exporter{
		outputDir: outputDir,
		logger:    zap.L().Named("export"),
	}, nil
}

// ExportCSV writes a table as <outputDir>/<table name>.csv.
func (e *Exporter) ExportCSV(tbl *model.Table) (string, error) {
	path := filepath.Join(e.outputDir, tbl.Name+".csv")
	if err := ingest.WriteCSV(path, tbl); err != nil {
		return "", err
	}
	e.logger.Info("exported table", zap.String("path", path), zap.Int("rows", len(tbl.Rows)))
	return path, nil
}

// ExportJSON writes a table as <outputDir>/<table name>.json.
func (e *Exporter) ExportJSON(tbl *model.Table) (string, error) {
	path := filepath.Join(e.outputDir, tbl.Name+".json")
	if err := ingest.WriteJSON(path, tbl); err != nil {
		return "", err
	}
	e.logger.Info("exported table", zap.String("path", path), zap.Int("rows", len(tbl.Rows)))
	return path, nil
}

// ExportParquet archives a table as <outputDir>/<table name>.parquet.
func (e *Exporter) ExportParquet(tbl *model.Table, source string) (string, error) {
	path := filepath.Join(e.outputDir, tbl.Name+".parquet")
	if err := ingest.WriteArchive(path, source, tbl); err != nil {
		return "", err
	}
	e.logger.Info("archived table", zap.String("path", path), zap.Int("rows", len(tbl.Rows)))
	return path, nil
}

// WriteRunResults writes the run summary and metrics to
// <outputDir>/pipeline_results.json.
func (e *Exporter) WriteRunResults(summary *RunSummary, metrics *RunMetrics) (string, error) {
	metricsJSON, err := metrics.ToJSON()
	if err != nil {
		return "", fmt.Errorf("failed to serialize metrics: %w", err)
	}

	payload := struct {
		RunID             string            `json:"run_id"`
		Timestamp         string            `json:"timestamp"`
		Sources           []string          `json:"sources"`
		SuccessfulSources []string          `json:"successful_sources"`
		FailedSources     map[string]string `json:"failed_sources"`
		TotalRows         int64             `json:"total_rows"`
		SuccessRate       float64           `json:"success_rate"`
		DurationSeconds   float64           `json:"duration_seconds"`
		Metrics           json.RawMessage   `json:"metrics"`
	}{
		RunID:             summary.RunID,
		Timestamp:         summary.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		Sources:           summary.Sources,
		SuccessfulSources: summary.SuccessfulSources,
		FailedSources:     summary.FailedSources,
		TotalRows:         summary.TotalRows,
		SuccessRate:       summary.SuccessRate(),
		DurationSeconds:   summary.Duration.Seconds(),
		Metrics:           metricsJSON,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize run results: %w", err)
	}

	path := filepath.Join(e.outputDir, "pipeline_results.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run results: %w", err)
	}

	e.logger.Info("wrote run results", zap.String("path", path))
	return path, nil
}

// PostgresSink loads fetched tables into Postgres, creating target tables
// from the in-memory column types and verifying row counts after the load.
type PostgresSink struct {
	conn      *connector.PostgresConnector
	schema    string
	batchSize int
	logger    *zap.Logger
}

// NewPostgresSink creates a sink writing into the given schema.
func NewPostgresSink(conn *connector.PostgresConnector, schema string, batchSize int) (*PostgresSink, error) {
	if conn == nil {
		return nil, fmt.Errorf("postgres connector is required")
	}
	if schema == "" {
		schema = "public"
	}
	if batchSize <= 0 {
		batchSize = 1000
	}

	return &PostgresSink{
		conn:      conn,
		schema:    schema,
		batchSize: batchSize,
		logger:    zap.L().Named("pgsink"),
	}, nil
}

// Load creates the target table if needed, bulk-inserts all rows, and
// returns the number of rows inserted. A post-load count mismatch is an
// error: the caller decides whether to keep the partial load.
func (s *PostgresSink) Load(ctx context.Context, tbl *model.Table) (int64, error) {
	if tbl == nil || len(tbl.Rows) == 0 {
		return 0, nil
	}

	if err := s.conn.EnsureSchema(ctx, s.schema); err != nil {
		return 0, err
	}

	columnDefs := make([]string, len(tbl.Columns))
	columns := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		columns[i] = col.Name
		columnDefs[i] = fmt.Sprintf("%s %s", pq.QuoteIdentifier(col.Name), pgColumnType(col.DataType))
	}

	tableName := sanitizeTableName(tbl.Name)
	if err := s.conn.CreateTableIfNotExists(ctx, s.schema, tableName, columnDefs, ""); err != nil {
		return 0, err
	}

	before, err := s.conn.CountRows(ctx, s.schema, tableName)
	if err != nil {
		return 0, err
	}

	valueRows := make([][]interface{}, len(tbl.Rows))
	for i, row := range tbl.Rows {
		values := make([]interface{}, len(columns))
		for j, col := range columns {
			values[j] = row[col]
		}
		valueRows[i] = values
	}

	inserted, err := s.conn.BatchInsert(ctx, s.schema, tableName, columns, valueRows, s.batchSize)
	if err != nil {
		return inserted, err
	}

	after, err := s.conn.CountRows(ctx, s.schema, tableName)
	if err != nil {
		return inserted, fmt.Errorf("post-load verification failed: %w", err)
	}
	if after-before != inserted {
		return inserted, fmt.Errorf("row count mismatch in %s.%s: inserted %d but count grew by %d",
			s.schema, tableName, inserted, after-before)
	}

	s.logger.Info("loaded table",
		zap.String("table", tableName),
		zap.Int64("rows", inserted))

	return inserted, nil
}

// pgColumnType maps an inferred column type to a Postgres column type.
func pgColumnType(dataType string) string {
	switch dataType {
	case model.TypeInteger:
		return "BIGINT"
	case model.TypeFloat:
		return "DOUBLE PRECISION"
	case model.TypeBoolean:
		return "BOOLEAN"
	case model.TypeTimestamp:
		return "TIMESTAMP WITH TIME ZONE"
	default:
		return "TEXT"
	}
}

// sanitizeTableName lowercases the name and replaces separators so table
// names derived from file paths stay valid identifiers.
func sanitizeTableName(name string) string {
	name = strings.ToLower(name)
	replacer := strings.NewReplacer(" ", "_", "-", "_", ".", "_", ":", "_")
	return replacer.Replace(name)
}

// S3Sink uploads fetched tables to object storage.
type S3Sink struct {
	manager *ingest.S3Manager
	format  string
	logger  *zap.Logger
}

// NewS3Sink creates a sink uploading tables in the given format (csv|json).
func NewS3Sink(manager *ingest.S3Manager, format string) (*S3Sink, error) {
	if manager == nil {
		return nil, fmt.Errorf("s3 manager is required")
	}
	switch format {
	case "csv", "json":
	case "":
		format = "csv"
	default:
		return nil, fmt.Errorf("unsupported upload format %q", format)
	}

	return &S3Sink{
		manager: manager,
		format:  format,
		logger:  zap.L().Named("s3sink"),
	}, nil
}

// Upload writes one table to the bucket as <table name>.<format>.
func (s *S3Sink) Upload(ctx context.Context, tbl *model.Table) (string, error) {
	if tbl == nil {
		return "", fmt.Errorf("table is nil")
	}

	key := fmt.Sprintf("%s.%s", sanitizeTableName(tbl.Name), s.format)
	if err := s.manager.UploadTable(ctx, tbl, key, s.format); err != nil {
		return "", err
	}

	s.logger.Info("uploaded table",
		zap.String("key", key),
		zap.Int("rows", len(tbl.Rows)))

	return key, nil
}
