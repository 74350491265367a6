// pkg/dbsetup/dbsetup.go

// Package dbsetup provisions the sample e-commerce database the SQL
// exercises run against: categories, customers, products, orders and
// order_items, with indexes and deterministic sample data.
package dbsetup

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/connector"
)

// Supported SQL dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const execTimeout = 30 * time.Second

// sampleSeed fixes the rng so repeated runs produce identical data and
// the exercises' expected query results stay valid.
const sampleSeed = 42

// Setup provisions the sample database over an open connector.
type Setup struct {
	conn    connector.DatabaseConnector
	dialect string
	rng     *rand.Rand
	logger  *zap.Logger
}

// NewSetup creates a provisioner for the given dialect.
func NewSetup(conn connector.DatabaseConnector, dialect string) (*Setup, error) {
	if conn == nil {
		return nil, errors.New("database connector is required")
	}
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	return &Setup{
		conn:    conn,
		dialect: dialect,
		rng:     rand.New(rand.NewSource(sampleSeed)),
		logger:  zap.L().Named("dbsetup"),
	}, nil
}

// Run drops and recreates the schema, loads sample data, builds indexes
// and returns per-table row counts.
func (s *Setup) Run(ctx context.Context) (map[string]int64, error) {
	if err := s.CreateTables(ctx); err != nil {
		return nil, err
	}
	if err := s.InsertSampleData(ctx); err != nil {
		return nil, err
	}
	if err := s.CreateIndexes(ctx); err != nil {
		return nil, err
	}
	return s.Summary(ctx)
}

// CreateTables drops existing sample tables and recreates them. Children
// are dropped before parents so foreign keys never dangle.
func (s *Setup) CreateTables(ctx context.Context) error {
	for _, table := range []string{"order_items", "orders", "products", "customers", "categories"} {
		if _, err := s.conn.ExecWithTimeout(ctx, "DROP TABLE IF EXISTS "+table, execTimeout); err != nil {
			return fmt.Errorf("dropping table %s: %w", table, err)
		}
	}

	for _, ddl := range tableDDL(s.dialect) {
		if _, err := s.conn.ExecWithTimeout(ctx, ddl.sql, execTimeout); err != nil {
			return fmt.Errorf("creating table %s: %w", ddl.name, err)
		}
		s.logger.Info("created table", zap.String("table", ddl.name))
	}
	return nil
}

// CreateIndexes builds the lookup indexes the exercises query through.
func (s *Setup) CreateIndexes(ctx context.Context) error {
	indexes := []struct{ name, table, column string }{
		{"idx_customers_email", "customers", "email"},
		{"idx_customers_city", "customers", "city"},
		{"idx_customers_segment", "customers", "customer_segment"},
		{"idx_orders_customer", "orders", "customer_id"},
		{"idx_orders_date", "orders", "order_date"},
		{"idx_orders_status", "orders", "order_status"},
		{"idx_order_items_order", "order_items", "order_id"},
		{"idx_order_items_product", "order_items", "product_id"},
		{"idx_products_category", "products", "category_id"},
	}

	for _, idx := range indexes {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.name, idx.table, idx.column)
		if _, err := s.conn.ExecWithTimeout(ctx, stmt, execTimeout); err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	s.logger.Info("created indexes", zap.Int("count", len(indexes)))
	return nil
}

// Summary returns the row count of every sample table.
func (s *Setup) Summary(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range []string{"categories", "customers", "products", "orders", "order_items"} {
		rows, err := s.conn.QueryWithTimeout(ctx, "SELECT COUNT(*) FROM "+table, execTimeout)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}

		var count int64
		if rows.Next() {
			if err := rows.Scan(&count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning %s count: %w", table, err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		counts[table] = count
		s.logger.Info("table populated", zap.String("table", table), zap.Int64("rows", count))
	}
	return counts, nil
}

// placeholders renders n parameter markers for the dialect, e.g.
// "$1, $2, $3" for Postgres and "?, ?, ?" for SQLite.
func placeholders(dialect string, n int) string {
	out := make([]byte, 0, n*4)
	for i := 1; i <= n; i++ {
		if i > 1 {
			out = append(out, ", "...)
		}
		if dialect == DialectPostgres {
			out = append(out, fmt.Sprintf("$%d", i)...)
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}
