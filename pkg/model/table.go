// pkg/model/table.go
package model

import (
	"strings"
	"time"
)

// Record is a single row keyed by column name. Values may be nil.
type Record map[string]interface{}

// Column describes one column of a table.
type Column struct {
	Name     string // Column name as it appears in the source
	DataType string // Inferred or declared type: integer, float, boolean, timestamp, text
}

// Table is an in-memory, row-oriented dataset produced by an ingestion
// source and consumed by the validation and cleaning pipelines.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Record
}

// NewTable builds a table from rows, inferring column order and types
// from the data. Column order follows the provided names.
func NewTable(name string, columnNames []string, rows []Record) *Table {
	t := &Table{Name: name, Rows: rows}
	for _, col := range columnNames {
		t.Columns = append(t.Columns, Column{
			Name:     col,
			DataType: inferColumnType(col, rows),
		})
	}
	return t
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// GetColumnByName returns a column by name (case-insensitive).
// Returns nil if column not found.
func (t *Table) GetColumnByName(name string) *Column {
	normalized := strings.ToLower(name)
	for i, col := range t.Columns {
		if strings.ToLower(col.Name) == normalized {
			return &t.Columns[i]
		}
	}
	return nil
}

// NumericColumns returns the names of integer and float columns.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.DataType == TypeInteger || col.DataType == TypeFloat {
			names = append(names, col.Name)
		}
	}
	return names
}

// CategoricalColumns returns the names of text columns.
func (t *Table) CategoricalColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.DataType == TypeText {
			names = append(names, col.Name)
		}
	}
	return names
}

// AddColumn appends a column definition and sets the value on every row.
// Existing rows get the result of valueFn applied to the row.
func (t *Table) AddColumn(name, dataType string, valueFn func(Record) interface{}) {
	t.Columns = append(t.Columns, Column{Name: name, DataType: dataType})
	for _, row := range t.Rows {
		row[name] = valueFn(row)
	}
}

// DropColumn removes a column definition and deletes the value from all rows.
func (t *Table) DropColumn(name string) {
	cols := t.Columns[:0]
	for _, col := range t.Columns {
		if !strings.EqualFold(col.Name, name) {
			cols = append(cols, col)
		}
	}
	t.Columns = cols
	for _, row := range t.Rows {
		delete(row, name)
	}
}

// Copy returns a deep copy of the table. Cleaning stages operate on copies
// so callers keep the original for before/after reporting.
func (t *Table) Copy() *Table {
	dup := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	copy(dup.Columns, t.Columns)
	dup.Rows = make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		newRow := make(Record, len(row))
		for k, v := range row {
			newRow[k] = v
		}
		dup.Rows[i] = newRow
	}
	return dup
}

// MissingCount returns the number of nil or empty-string cells across all
// declared columns.
func (t *Table) MissingCount() int {
	missing := 0
	for _, row := range t.Rows {
		for _, col := range t.Columns {
			if IsMissing(row[col.Name]) {
				missing++
			}
		}
	}
	return missing
}

// IsMissing reports whether a cell value counts as missing. Both nil and
// empty/whitespace strings are treated as missing, matching the CSV sources.
func IsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Data type names used in Column.DataType.
const (
	TypeInteger   = "integer"
	TypeFloat     = "float"
	TypeBoolean   = "boolean"
	TypeTimestamp = "timestamp"
	TypeText      = "text"
)

// inferColumnType determines a column type from the non-missing values.
// Mixed numeric columns degrade to float; anything else degrades to text.
func inferColumnType(name string, rows []Record) string {
	inferred := ""
	for _, row := range rows {
		v, ok := row[name]
		if !ok || IsMissing(v) {
			continue
		}
		vt := valueType(v)
		switch {
		case inferred == "" || inferred == vt:
			inferred = vt
		case (inferred == TypeInteger && vt == TypeFloat) ||
			(inferred == TypeFloat && vt == TypeInteger):
			inferred = TypeFloat
		default:
			return TypeText
		}
	}
	if inferred == "" {
		return TypeText
	}
	return inferred
}

func valueType(v interface{}) string {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeFloat
	case bool:
		return TypeBoolean
	case time.Time:
		return TypeTimestamp
	default:
		return TypeText
	}
}

// AsFloat converts a numeric cell value to float64. The second return is
// false for non-numeric or missing values.
func AsFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
