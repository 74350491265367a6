// pkg/ingest/source.go

// Package ingest reads tables from the pipeline's data sources: CSV, JSON,
// Excel and Parquet files, REST APIs, relational databases and S3.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mayursurani/datapipe/pkg/model"
)

// Source is a named producer of one table. The ingestion pipeline fans
// sources out to its worker pool.
type Source interface {
	// Name identifies the source in logs, results and the data_source column
	Name() string

	// Fetch retrieves the table. Implementations honor ctx cancellation.
	Fetch(ctx context.Context) (*model.Table, error)
}

// inferValue converts a raw string cell to a typed value. Empty strings
// become nil so missing-value handling sees them.
func inferValue(s string) interface{} {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// cellToString renders a typed value back to its text form for CSV and
// Excel output.
func cellToString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
