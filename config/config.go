// Package config loads service configuration from an optional YAML file,
// an optional .env file and CATALOG_IMPORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kosarica/catalog-import/internal/enrichment"
	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/matching"
)

// EnvPrefix prefixes every environment override, e.g.
// CATALOG_IMPORT_MATCHING_FUZZY_FLOOR
const EnvPrefix = "CATALOG_IMPORT"

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	InternalAPIKey string        `mapstructure:"internal_api_key"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RateLimitConfig limits calls to the internal API
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StorageConfig holds upload storage configuration
type StorageConfig struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"base_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// MatchingConfig tunes row matching and scoring
type MatchingConfig struct {
	FuzzyFloor      float64 `mapstructure:"fuzzy_floor"`
	ReviewThreshold float64 `mapstructure:"review_threshold"`
	CandidateLimit  int     `mapstructure:"candidate_limit"`
	Workers         int     `mapstructure:"workers"`
}

// EnrichmentConfig configures the product registry lookup
type EnrichmentConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialBackoffMs  int           `mapstructure:"initial_backoff_ms"`
	MaxBackoffMs      int           `mapstructure:"max_backoff_ms"`
	RedisAddr         string        `mapstructure:"redis_addr"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	BreakerFailures   int           `mapstructure:"breaker_failures"`
	BreakerReset      time.Duration `mapstructure:"breaker_reset"`
}

// WorkerConfig configures background import processing
type WorkerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Concurrency   int           `mapstructure:"concurrency"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	StaleJobAfter time.Duration `mapstructure:"stale_job_after"`
	// TaskRetentionDays keeps finished tasks this long; 0 keeps them forever
	TaskRetentionDays int `mapstructure:"task_retention_days"`
}

// TelemetryConfig configures OpenTelemetry export
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	Environment string `mapstructure:"environment"`
	// SampleRatio keeps this fraction of root spans; 0 keeps all
	SampleRatio    float64       `mapstructure:"sample_ratio"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

var globalConfig *Config

// ImporterConfig builds the orchestrator settings. Running jobs heartbeat
// three times per stale-job window so the sweeper never fails a live run.
func (c *Config) ImporterConfig() importer.Config {
	heartbeat := importer.DefaultHeartbeat
	if c.Worker.StaleJobAfter > 0 {
		heartbeat = min(heartbeat, c.Worker.StaleJobAfter/3)
	}
	return importer.Config{
		Workers: c.Matching.Workers,
		Matcher: matching.MatcherConfig{
			FuzzyFloor:     c.Matching.FuzzyFloor,
			CandidateLimit: c.Matching.CandidateLimit,
		},
		ReviewThreshold: c.Matching.ReviewThreshold,
		Heartbeat:       heartbeat,
	}
}

// RegistryOptions maps the enrichment section onto the registry adapter options
func (c EnrichmentConfig) RegistryOptions() enrichment.RegistryOptions {
	return enrichment.RegistryOptions{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		MaxRetries:        c.MaxRetries,
		InitialBackoffMs:  c.InitialBackoffMs,
		MaxBackoffMs:      c.MaxBackoffMs,
		RedisAddr:         c.RedisAddr,
		CacheTTL:          c.CacheTTL,
		BreakerFailures:   c.BreakerFailures,
		BreakerReset:      c.BreakerReset,
	}
}

// Load reads configuration. configPath may be empty to search ./config and
// the working directory for config.yaml; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate rejects settings the importer cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Matching.FuzzyFloor <= 0 || c.Matching.FuzzyFloor > 1 {
		errs = append(errs, fmt.Errorf("matching.fuzzy_floor must be in (0,1], got %v", c.Matching.FuzzyFloor))
	}
	if c.Matching.ReviewThreshold <= 0 || c.Matching.ReviewThreshold > 1 {
		errs = append(errs, fmt.Errorf("matching.review_threshold must be in (0,1], got %v", c.Matching.ReviewThreshold))
	}
	if c.Matching.CandidateLimit <= 0 {
		errs = append(errs, fmt.Errorf("matching.candidate_limit must be positive"))
	}
	if c.Enrichment.Enabled && c.Enrichment.BaseURL == "" {
		errs = append(errs, fmt.Errorf("enrichment.base_url is required when enrichment is enabled"))
	}
	return errors.Join(errs...)
}

// loadEnvFile loads the first .env found. Variables already set in the
// environment win.
func loadEnvFile() error {
	for _, dir := range []string{".", "./config"} {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err == nil {
			return godotenv.Load(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// bindEnvVars binds the conventional unprefixed names
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	v.BindEnv("server.internal_api_key", EnvPrefix+"_SERVER_INTERNAL_API_KEY", "INTERNAL_API_KEY")
	v.BindEnv("logging.level", EnvPrefix+"_LOGGING_LEVEL", "LOG_LEVEL")
	v.BindEnv("enrichment.redis_addr", EnvPrefix+"_ENRICHMENT_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("telemetry.endpoint", EnvPrefix+"_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.max_upload_bytes", 50<<20)

	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_path", "./data/uploads")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	v.SetDefault("matching.fuzzy_floor", 0.70)
	v.SetDefault("matching.review_threshold", 0.90)
	v.SetDefault("matching.candidate_limit", 50)
	v.SetDefault("matching.workers", 8)

	v.SetDefault("enrichment.enabled", false)
	v.SetDefault("enrichment.timeout", 3*time.Second)
	v.SetDefault("enrichment.requests_per_second", 10)
	v.SetDefault("enrichment.max_retries", 2)
	v.SetDefault("enrichment.initial_backoff_ms", 100)
	v.SetDefault("enrichment.max_backoff_ms", 2000)
	v.SetDefault("enrichment.cache_ttl", 24*time.Hour)
	v.SetDefault("enrichment.breaker_failures", 5)
	v.SetDefault("enrichment.breaker_reset", 30*time.Second)

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.poll_interval", 2*time.Second)
	v.SetDefault("worker.sweep_interval", time.Minute)
	v.SetDefault("worker.stale_job_after", 30*time.Minute)
	v.SetDefault("worker.task_retention_days", 7)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.environment", "production")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.export_interval", 30*time.Second)
}

// Get returns the configuration from the last successful Load
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
