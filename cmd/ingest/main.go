// cmd/ingest/main.go

// Command ingest runs the multi-source ingestion pipeline: it fetches every
// source configured through the environment, exports the tables to the
// output directory, and optionally loads them into Postgres and S3.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/config"
	"github.com/mayursurani/datapipe/pkg/connector"
	"github.com/mayursurani/datapipe/pkg/ingest"
	"github.com/mayursurani/datapipe/pkg/logging"
	"github.com/mayursurani/datapipe/pkg/model"
	"github.com/mayursurani/datapipe/pkg/pipeline"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

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

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("pipeline failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	factory := connector.NewConnectorFactory(cfg, logger)
	closers, err := registerSources(ctx, p, cfg, factory)
	for _, closeConn := range closers {
		defer closeConn()
	}
	if err != nil {
		return err
	}

	tables, summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	exporter, err := pipeline.NewExporter(cfg.OutputDir)
	if err != nil {
		return err
	}

	for _, name := range p.SourceNames() {
		tbl, ok := tables[name]
		if !ok {
			continue
		}
		if _, err := exporter.ExportCSV(tbl); err != nil {
			return err
		}
		if _, err := exporter.ExportJSON(tbl); err != nil {
			return err
		}
		if _, err := exporter.ExportParquet(tbl, name); err != nil {
			return err
		}
	}

	combined := pipeline.MergeTables("combined_data", tables, p.SourceNames())
	if len(combined.Rows) > 0 {
		if _, err := exporter.ExportCSV(combined); err != nil {
			return err
		}
	}

	if _, err := exporter.WriteRunResults(summary, p.Metrics()); err != nil {
		return err
	}

	if err := loadSinks(ctx, cfg, factory, logger, combined); err != nil {
		return err
	}

	fmt.Print(p.Metrics().Report())
	if len(summary.FailedSources) > 0 {
		logger.Warn("run finished with failed sources",
			zap.Int("failed", len(summary.FailedSources)),
			zap.Int("total", len(summary.Sources)))
	}
	return nil
}

// registerSources wires every configured source into the pipeline and
// returns closers for the database connectors it opened.
func registerSources(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, factory *connector.ConnectorFactory) ([]func() error, error) {
	var closers []func() error

	if path := os.Getenv("CSV_PATH"); path != "" {
		src, err := ingest.NewCSVSource("csv", path)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if path := os.Getenv("JSON_PATH"); path != "" {
		src, err := ingest.NewJSONSource("json", path, false)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if path := os.Getenv("JSONL_PATH"); path != "" {
		src, err := ingest.NewJSONSource("jsonl", path, true)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if path := os.Getenv("EXCEL_PATH"); path != "" {
		src, err := ingest.NewExcelSource("excel", path, os.Getenv("EXCEL_SHEET"))
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if path := os.Getenv("PARQUET_PATH"); path != "" {
		src, err := ingest.NewParquetSource("parquet", path)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if cfg.API != nil {
		client, err := ingest.NewAPIClient(cfg.API)
		if err != nil {
			return closers, err
		}
		endpoint := os.Getenv("API_SOURCE_PATH")
		if endpoint == "" {
			endpoint = "/data"
		}
		src, err := ingest.NewAPISource("api", client, endpoint)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if query := os.Getenv("POSTGRES_SOURCE_QUERY"); query != "" && cfg.Postgres != nil {
		conn, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			return closers, err
		}
		closers = append(closers, conn.Close)
		src, err := ingest.NewDatabaseSource("postgres", "postgres", conn, query)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if query := os.Getenv("SNOWFLAKE_SOURCE_QUERY"); query != "" && cfg.Snowflake != nil {
		conn, err := factory.CreateSnowflakeConnector(ctx)
		if err != nil {
			return closers, err
		}
		closers = append(closers, conn.Close)
		src, err := ingest.NewDatabaseSource("snowflake", "snowflake", conn, query)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	if query := os.Getenv("SQLITE_SOURCE_QUERY"); query != "" && cfg.SQLite != nil {
		conn, err := factory.CreateSQLiteConnector(ctx)
		if err != nil {
			return closers, err
		}
		closers = append(closers, conn.Close)
		src, err := ingest.NewDatabaseSource("sqlite", "sqlite", conn, query)
		if err != nil {
			return closers, err
		}
		if err := p.Register(src); err != nil {
			return closers, err
		}
	}

	return closers, nil
}

// loadSinks pushes the combined table to the optional Postgres and S3
// destinations. An unreachable S3 endpoint skips the upload rather than
// failing the run, matching how the file exports already succeeded.
func loadSinks(ctx context.Context, cfg *config.Config, factory *connector.ConnectorFactory, logger *zap.Logger, combined *model.Table) error {
	if combined == nil || len(combined.Rows) == 0 {
		return nil
	}

	if cfg.Postgres != nil && os.Getenv("POSTGRES_SINK_SCHEMA") != "" {
		conn, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		sink, err := pipeline.NewPostgresSink(conn, os.Getenv("POSTGRES_SINK_SCHEMA"), cfg.ChunkSize)
		if err != nil {
			return err
		}
		if _, err := sink.Load(ctx, combined); err != nil {
			return err
		}
	}

	if cfg.S3 != nil {
		manager, err := ingest.NewS3Manager(ctx, cfg.S3)
		if err != nil {
			logger.Warn("skipping S3 upload", zap.Error(err))
			return nil
		}
		sink, err := pipeline.NewS3Sink(manager, os.Getenv("S3_UPLOAD_FORMAT"))
		if err != nil {
			return err
		}
		if _, err := sink.Upload(ctx, combined); err != nil {
			logger.Warn("S3 upload failed", zap.Error(err))
		}
	}

	return nil
}
