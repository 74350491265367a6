// pkg/connector/factory.go

package connector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/config"
)

// ConnectorFactory creates database connectors from loaded configuration.
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory.
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePostgresConnector creates a new PostgreSQL connector.
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	if f.cfg.Postgres == nil {
		return nil, errors.New("PostgreSQL is not configured")
	}
	f.logger.Info("creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}
	return connector, nil
}

// CreateSnowflakeConnector creates a new Snowflake connector.
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	if f.cfg.Snowflake == nil {
		return nil, errors.New("Snowflake is not configured")
	}
	f.logger.Info("creating Snowflake connector")

	connector, err := NewSnowflakeConnector(ctx, f.cfg.Snowflake)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}
	return connector, nil
}

// CreateSQLiteConnector creates a new SQLite connector.
func (f *ConnectorFactory) CreateSQLiteConnector(ctx context.Context) (*SQLiteConnector, error) {
	if f.cfg.SQLite == nil {
		return nil, errors.New("SQLite is not configured")
	}
	f.logger.Info("creating SQLite connector")

	connector, err := NewSQLiteConnector(ctx, f.cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite connector: %w", err)
	}
	return connector, nil
}
