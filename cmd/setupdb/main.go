// cmd/setupdb/main.go

// Command setupdb provisions the sample e-commerce database the SQL
// exercises query: schema, indexes and deterministic sample data, into
// either the configured Postgres database or a local SQLite file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/connector"
	"github.com/mayursurani/datapipe/pkg/dbsetup"
	"github.com/mayursurani/datapipe/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	dialect := flag.String("dialect", dbsetup.DialectSQLite, "target database: postgres or sqlite")
	sqlitePath := flag.String("sqlite-path", "ecommerce.db", "SQLite file to create (sqlite dialect only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *dialect, *sqlitePath); err != nil {
		logger.Fatal("database setup failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, dialect, sqlitePath string) error {
	conn, err := openConnector(ctx, cfg, logger, dialect, sqlitePath)
	if err != nil {
		return err
	}
	defer conn.Close()

	setup, err := dbsetup.NewSetup(conn, dialect)
	if err != nil {
		return err
	}

	counts, err := setup.Run(ctx)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	fmt.Println("Database ready:")
	for _, table := range tables {
		fmt.Printf("  %-12s %d records\n", table, counts[table])
	}
	return nil
}

func openConnector(ctx context.Context, cfg *config.Config, logger *zap.Logger, dialect, sqlitePath string) (connector.DatabaseConnector, error) {
	factory := connector.NewConnectorFactory(cfg, logger)

	switch dialect {
	case dbsetup.DialectPostgres:
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("postgres dialect requires POSTGRES_* environment variables")
		}
		return factory.CreatePostgresConnector(ctx)
	case dbsetup.DialectSQLite:
		if cfg.SQLite != nil {
			sqlitePath = cfg.SQLite.Path
		}
		return connector.NewSQLiteConnector(ctx, &config.SQLiteConfig{Path: sqlitePath})
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}
