// pkg/connector/sqlite.go

package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mayursurani/datapipe/pkg/config"
)

// SQLiteConnector implements DatabaseConnector for the embedded sample
// database used in local development and tests.
type SQLiteConnector struct {
	db     *sql.DB
	logger *zap.Logger
	path   string
}

// NewSQLiteConnector opens (or creates) a SQLite database file.
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig) (*SQLiteConnector, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	logger := zap.L().Named("sqlite-connector")
	logger.Info("opening SQLite database", zap.String("path", cfg.Path))

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite permits a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", cfg.Path, err)
	}

	return &SQLiteConnector{
		db:     db,
		logger: logger,
		path:   cfg.Path,
	}, nil
}

// DB returns the underlying database connection pool.
func (c *SQLiteConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the database file is readable and writable.
func (c *SQLiteConnector) Validate() error {
	var version string
	if err := c.db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}
	c.logger.Info("connected to SQLite",
		zap.String("version", version),
		zap.String("path", c.path))

	_, err := c.db.Exec(`
		CREATE TEMP TABLE _permission_check (id INTEGER PRIMARY KEY, test TEXT);
		INSERT INTO _permission_check (test) VALUES ('test');
		DROP TABLE _permission_check;
	`)
	if err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (c *SQLiteConnector) Close() error {
	c.logger.Info("closing SQLite database", zap.String("path", c.path))
	return c.db.Close()
}

// QueryWithTimeout executes a query with a timeout.
func (c *SQLiteConnector) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (*sql.Rows, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	rows, err := c.db.QueryContext(queryCtx, query, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	// Callers iterate the rows after this returns, so the context must
	// outlive the call. It is released when the timeout or parent fires.
	context.AfterFunc(queryCtx, cancel)
	return rows, nil
}

// ExecWithTimeout executes a statement with a timeout.
func (c *SQLiteConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.ExecContext(queryCtx, query, args...)
}
