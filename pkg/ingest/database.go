// pkg/ingest/database.go

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/connector"
	"github.com/mayursurani/datapipe/pkg/model"
)

// DatabaseSource runs a query against a connector and adapts the result
// set to a table.
type DatabaseSource struct {
	name       string
	driverName string
	conn       connector.DatabaseConnector
	query      string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewDatabaseSource creates a database source. driverName is the
// database/sql driver the connector was opened with (pgx, snowflake,
// sqlite); sqlx needs it to pick the placeholder dialect.
func NewDatabaseSource(name, driverName string, conn connector.DatabaseConnector, query string) (*DatabaseSource, error) {
	if conn == nil {
		return nil, errors.New("database connector is required")
	}
	if query == "" {
		return nil, errors.New("query is required")
	}
	if name == "" {
		return nil, errors.New("source name is required")
	}

	return &DatabaseSource{
		name:       name,
		driverName: driverName,
		conn:       conn,
		query:      query,
		timeout:    60 * time.Second,
		logger:     zap.L().Named("db-source"),
	}, nil
}

// Name identifies the source.
func (s *DatabaseSource) Name() string { return s.name }

// Fetch runs the query and scans every row into a generic record.
func (s *DatabaseSource) Fetch(ctx context.Context) (*model.Table, error) {
	db := sqlx.NewDb(s.conn.DB(), s.driverName)

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := db.QueryxContext(queryCtx, s.query)
	if err != nil {
		return nil, fmt.Errorf("database source %s query failed: %w", s.name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("database source %s: failed to read columns: %w", s.name, err)
	}

	var records []model.Record
	for rows.Next() {
		row := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("database source %s: failed to scan row: %w", s.name, err)
		}
		// Drivers may hand back []byte for text columns.
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database source %s: row iteration failed: %w", s.name, err)
	}

	s.logger.Info("query fetched",
		zap.String("source", s.name),
		zap.Int("rows", len(records)),
		zap.Int("columns", len(columns)),
	)

	return model.NewTable(s.name, columns, records), nil
}
