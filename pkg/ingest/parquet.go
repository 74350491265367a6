// pkg/ingest/parquet.go

package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mayursurani/datapipe/pkg/model"
)

// ArchiveRecord is the fixed Parquet envelope: rows are archived as JSON
// payloads alongside their provenance, so one schema serves every table.
type ArchiveRecord struct {
	Source     string `parquet:"source"`
	IngestedAt int64  `parquet:"ingested_at"`
	Payload    string `parquet:"payload"`
}

// ParquetSource reads an archive file back into a table.
type ParquetSource struct {
	name string
	path string
}

// NewParquetSource creates a Parquet archive source.
func NewParquetSource(name, path string) (*ParquetSource, error) {
	if path == "" {
		return nil, errors.New("parquet path is required")
	}
	if name == "" {
		name = tableNameFromPath(path)
	}
	return &ParquetSource{name: name, path: path}, nil
}

// Name identifies the source.
func (s *ParquetSource) Name() string { return s.name }

// Fetch reads the archive into a table.
func (s *ParquetSource) Fetch(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := ReadArchive(s.path)
	if err != nil {
		return nil, err
	}
	return ArchiveToTable(s.name, records)
}

// WriteArchive archives a table to a Parquet file.
func WriteArchive(path, source string, tbl *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	now := time.Now().Unix()
	records := make([]ArchiveRecord, len(tbl.Rows))
	for i, row := range tbl.Rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", i, err)
		}
		records[i] = ArchiveRecord{
			Source:     source,
			IngestedAt: now,
			Payload:    string(payload),
		}
	}

	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write Parquet archive %s: %w", path, err)
	}
	return nil
}

// ReadArchive reads a Parquet archive file.
func ReadArchive(path string) ([]ArchiveRecord, error) {
	records, err := parquet.ReadFile[ArchiveRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read Parquet archive %s: %w", path, err)
	}
	return records, nil
}

// ArchiveToTable rebuilds a table from archive payloads.
func ArchiveToTable(name string, records []ArchiveRecord) (*model.Table, error) {
	rows := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		var row map[string]interface{}
		if err := json.Unmarshal([]byte(rec.Payload), &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal archive payload %d: %w", i, err)
		}
		rows[i] = row
	}
	return tableFromRecords(name, rows), nil
}
