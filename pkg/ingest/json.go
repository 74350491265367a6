// pkg/ingest/json.go

package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mayursurani/datapipe/pkg/model"
)

// JSONSource reads a JSON or JSONL file into a table.
type JSONSource struct {
	name  string
	path  string
	lines bool
}

// NewJSONSource creates a JSON source. Set lines for JSONL input.
func NewJSONSource(name, path string, lines bool) (*JSONSource, error) {
	if path == "" {
		return nil, errors.New("json path is required")
	}
	if name == "" {
		name = tableNameFromPath(path)
	}
	return &JSONSource{name: name, path: path, lines: lines}, nil
}

// Name identifies the source.
func (s *JSONSource) Name() string { return s.name }

// Fetch reads the file into a table.
func (s *JSONSource) Fetch(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.lines {
		return ReadJSONL(s.path, s.name)
	}
	return ReadJSON(s.path, s.name)
}

// ReadJSON reads a JSON file holding either an array of objects or an
// object whose "data" key holds such an array.
func ReadJSON(path, tableName string) (*model.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file %s: %w", path, err)
	}
	if tableName == "" {
		tableName = tableNameFromPath(path)
	}

	records, err := decodeJSONRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON file %s: %w", path, err)
	}
	return tableFromRecords(tableName, records), nil
}

// ReadJSONL reads a newline-delimited JSON file, one object per line.
func ReadJSONL(path, tableName string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL file %s: %w", path, err)
	}
	defer f.Close()

	if tableName == "" {
		tableName = tableNameFromPath(path)
	}

	var records []map[string]interface{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec map[string]interface{}
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse JSONL line %d in %s: %w", lineNum, path, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSONL file %s: %w", path, err)
	}

	return tableFromRecords(tableName, records), nil
}

// WriteJSON writes a table as a JSON array of objects.
func WriteJSON(path string, tbl *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(tbl.Rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", tbl.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON file %s: %w", path, err)
	}
	return nil
}

// WriteJSONL writes a table as newline-delimited JSON.
func WriteJSONL(path string, tbl *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create JSONL file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, row := range tbl.Rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode JSONL row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush JSONL file %s: %w", path, err)
	}
	return nil
}

// decodeJSONRecords handles both bare arrays and {"data": [...]} payloads.
func decodeJSONRecords(raw []byte) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	data, ok := wrapper["data"]
	if !ok {
		return nil, errors.New("expected an array of objects or an object with a \"data\" array")
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid \"data\" array: %w", err)
	}
	return records, nil
}

// tableFromRecords builds a table with a stable column order: keys of the
// first record in sorted order, then any later-only keys.
func tableFromRecords(name string, records []map[string]interface{}) *model.Table {
	seen := make(map[string]bool)
	var columns []string

	appendKeys := func(rec map[string]interface{}) {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		columns = append(columns, keys...)
	}

	rows := make([]model.Record, len(records))
	for i, rec := range records {
		appendKeys(rec)
		rows[i] = normalizeNumbers(rec)
	}

	return model.NewTable(name, columns, rows)
}

// normalizeNumbers converts whole float64 values produced by JSON decoding
// into int64 so type inference matches the other sources.
func normalizeNumbers(rec map[string]interface{}) model.Record {
	row := make(model.Record, len(rec))
	for k, v := range rec {
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			row[k] = int64(f)
			continue
		}
		row[k] = v
	}
	return row
}
