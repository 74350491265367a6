// pkg/ingest/csv.go

package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mayursurani/datapipe/pkg/model"
)

// CSVSource reads a headered CSV file into a table.
type CSVSource struct {
	name string
	path string
}

// NewCSVSource creates a CSV source. The table name defaults to the file
// name without extension.
func NewCSVSource(name, path string) (*CSVSource, error) {
	if path == "" {
		return nil, errors.New("csv path is required")
	}
	if name == "" {
		name = tableNameFromPath(path)
	}
	return &CSVSource{name: name, path: path}, nil
}

// Name identifies the source.
func (s *CSVSource) Name() string { return s.name }

// Fetch reads the whole file into a table.
func (s *CSVSource) Fetch(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadCSV(s.path, s.name)
}

// ReadCSV reads a headered CSV file, inferring cell types.
func ReadCSV(path, tableName string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer f.Close()

	if tableName == "" {
		tableName = tableNameFromPath(path)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header from %s: %w", path, err)
	}

	var rows []model.Record
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row from %s: %w", path, err)
		}
		rows = append(rows, recordFromStrings(header, record))
	}

	return model.NewTable(tableName, header, rows), nil
}

// ReadCSVChunks streams a headered CSV file in chunks of up to chunkSize
// rows, invoking fn for each chunk. Processing stops on the first error.
func ReadCSVChunks(ctx context.Context, path string, chunkSize int, fn func(*model.Table) error) error {
	if chunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CSV file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header from %s: %w", path, err)
	}

	tableName := tableNameFromPath(path)
	chunk := make([]model.Record, 0, chunkSize)
	chunkNum := 0

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		chunkNum++
		tbl := model.NewTable(fmt.Sprintf("%s_chunk_%d", tableName, chunkNum), header, chunk)
		if err := fn(tbl); err != nil {
			return fmt.Errorf("chunk %d processing failed: %w", chunkNum, err)
		}
		chunk = make([]model.Record, 0, chunkSize)
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV row from %s: %w", path, err)
		}
		chunk = append(chunk, recordFromStrings(header, record))
		if len(chunk) == chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// WriteCSV writes a table to a CSV file, creating parent directories.
func WriteCSV(path string, tbl *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSVTo(f, tbl); err != nil {
		return fmt.Errorf("failed to write CSV file %s: %w", path, err)
	}
	return nil
}

// WriteCSVTo writes a table as CSV to a writer.
func WriteCSVTo(w io.Writer, tbl *model.Table) error {
	writer := csv.NewWriter(w)
	columns := tbl.ColumnNames()

	if err := writer.Write(columns); err != nil {
		return err
	}
	for _, row := range tbl.Rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cellToString(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// csvBytesToTable parses in-memory CSV data, used for objects fetched
// from S3.
func csvBytesToTable(data []byte, tableName string) (*model.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []model.Record
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, recordFromStrings(header, record))
	}
	return model.NewTable(tableName, header, rows), nil
}

func recordFromStrings(header, record []string) model.Record {
	row := make(model.Record, len(header))
	for i, col := range header {
		if i < len(record) {
			row[col] = inferValue(record[i])
		} else {
			row[col] = nil
		}
	}
	return row
}

func tableNameFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
