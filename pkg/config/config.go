// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration. Source configs are nil
// when the corresponding environment variables are absent; the ingestion
// pipeline skips unconfigured sources.
type Config struct {
	// Data sources
	Postgres  *PostgresConfig
	Snowflake *SnowflakeConfig
	SQLite    *SQLiteConfig
	API       *APIConfig
	S3        *S3Config

	// Pipeline settings
	ChunkSize      int
	RetryAttempts  int
	RetryDelay     time.Duration
	WorkerPoolSize int

	// Output
	OutputDir string

	// Logging
	LogLevel  string
	LogFormat string
}

// APIConfig holds REST API client parameters.
type APIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// S3Config holds object storage parameters.
type S3Config struct {
	Bucket string
	Region string
	Prefix string
}

// SQLiteConfig holds the embedded sample database location.
type SQLiteConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Default values
		ChunkSize:      getEnvAsInt("CHUNK_SIZE", 5000),
		RetryAttempts:  getEnvAsInt("RETRY_ATTEMPTS", 3),
		RetryDelay:     time.Duration(getEnvAsInt("RETRY_DELAY_MS", 1000)) * time.Millisecond,
		WorkerPoolSize: getEnvAsInt("WORKER_POOL_SIZE", 0), // 0 means derive from runtime.NumCPU()
		OutputDir:      getEnv("OUTPUT_DIR", "output"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	if os.Getenv("POSTGRES_DB") != "" {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	if os.Getenv("SNOWFLAKE_ACCOUNT") != "" {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	}

	if path := os.Getenv("SQLITE_PATH"); path != "" {
		cfg.SQLite = &SQLiteConfig{Path: path}
	}

	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		cfg.API = &APIConfig{
			BaseURL:    baseURL,
			Timeout:    time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxRetries: getEnvAsInt("API_MAX_RETRIES", 3),
			RetryDelay: time.Duration(getEnvAsInt("API_RETRY_DELAY_MS", 500)) * time.Millisecond,
		}
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.S3 = &S3Config{
			Bucket: bucket,
			Region: getEnv("AWS_REGION", "ap-south-1"),
			Prefix: getEnv("S3_PREFIX", "pipeline_output"),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures configuration values are sane.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}

	if c.RetryAttempts < 0 {
		return errors.New("retry attempts cannot be negative")
	}

	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}

	if c.API != nil && c.API.Timeout <= 0 {
		return errors.New("API timeout must be positive")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
