package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.ChunkSize)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.Postgres)
	assert.Nil(t, cfg.Snowflake)
	assert.Nil(t, cfg.API)
	assert.Nil(t, cfg.S3)
}

func TestLoadConfigPostgresRequiresCredentials(t *testing.T) {
	t.Setenv("POSTGRES_DB", "sales_db")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoadConfigPostgres(t *testing.T) {
	t.Setenv("POSTGRES_DB", "sales_db")
	t.Setenv("POSTGRES_USER", "postgres")
	t.Setenv("POSTGRES_PASSWORD", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.Postgres)

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 5433, cfg.Postgres.Port)
	assert.Contains(t, cfg.Postgres.ConnectionString(), "dbname=sales_db")
	assert.Contains(t, cfg.Postgres.ConnectionString(), "sslmode=disable")
}

func TestLoadConfigAPIAndS3(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.coingecko.com/api/v3")
	t.Setenv("API_MAX_RETRIES", "5")
	t.Setenv("S3_BUCKET", "sales-archive")
	t.Setenv("AWS_REGION", "us-east-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.API)
	require.NotNil(t, cfg.S3)

	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "sales-archive", cfg.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "pipeline_output", cfg.S3.Prefix)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{ChunkSize: 0, RetryAttempts: 3}
	assert.Error(t, cfg.Validate())

	cfg = &Config{ChunkSize: 100, RetryAttempts: -1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{ChunkSize: 100, RetryAttempts: 0}
	assert.NoError(t, cfg.Validate())
}
