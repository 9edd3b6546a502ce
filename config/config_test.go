package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 0.70, cfg.Matching.FuzzyFloor)
	assert.Equal(t, 0.90, cfg.Matching.ReviewThreshold)
	assert.Equal(t, 50, cfg.Matching.CandidateLimit)
	assert.Equal(t, 8, cfg.Matching.Workers)
	assert.Equal(t, 3*time.Second, cfg.Enrichment.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Enrichment.CacheTTL)
	assert.False(t, cfg.Enrichment.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
matching:
  fuzzy_floor: 0.8
  candidate_limit: 10
enrichment:
  enabled: true
  base_url: http://registry.local
`), 0644))

	t.Setenv("CATALOG_IMPORT_MATCHING_CANDIDATE_LIMIT", "25")
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Matching.FuzzyFloor)
	assert.Equal(t, 25, cfg.Matching.CandidateLimit)
	assert.True(t, cfg.Enrichment.Enabled)
	assert.Equal(t, "http://registry.local", cfg.Enrichment.BaseURL)
	assert.Equal(t, "postgres://localhost/catalog", cfg.Database.URL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INTERNAL_API_KEY=from-dotenv\n"), 0644))
	t.Setenv("INTERNAL_API_KEY", "")
	os.Unsetenv("INTERNAL_API_KEY")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Server.InternalAPIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Valid", func(*Config) {}, ""},
		{"Floor above one", func(c *Config) { c.Matching.FuzzyFloor = 1.5 }, "fuzzy_floor"},
		{"Zero threshold", func(c *Config) { c.Matching.ReviewThreshold = 0 }, "review_threshold"},
		{"No candidates", func(c *Config) { c.Matching.CandidateLimit = 0 }, "candidate_limit"},
		{"Enrichment without URL", func(c *Config) { c.Enrichment.Enabled = true }, "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Matching: MatchingConfig{FuzzyFloor: 0.7, ReviewThreshold: 0.9, CandidateLimit: 50}}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestImporterConfig(t *testing.T) {
	tests := []struct {
		name      string
		staleJob  time.Duration
		heartbeat time.Duration
	}{
		{name: "default window keeps default heartbeat", staleJob: 30 * time.Minute, heartbeat: time.Minute},
		{name: "short window beats more often", staleJob: 90 * time.Second, heartbeat: 30 * time.Second},
		{name: "unset window", staleJob: 0, heartbeat: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Matching: MatchingConfig{FuzzyFloor: 0.75, ReviewThreshold: 0.95, CandidateLimit: 20, Workers: 3},
				Worker:   WorkerConfig{StaleJobAfter: tt.staleJob},
			}

			ic := cfg.ImporterConfig()
			assert.Equal(t, 3, ic.Workers)
			assert.Equal(t, 0.75, ic.Matcher.FuzzyFloor)
			assert.Equal(t, 20, ic.Matcher.CandidateLimit)
			assert.Equal(t, 0.95, ic.ReviewThreshold)
			assert.Equal(t, tt.heartbeat, ic.Heartbeat)
		})
	}
}

func TestEnrichmentConfig_RegistryOptions(t *testing.T) {
	cfg := EnrichmentConfig{
		BaseURL:           "http://registry",
		Timeout:           2 * time.Second,
		RequestsPerSecond: 5,
		MaxRetries:        2,
		RedisAddr:         "redis:6379",
		CacheTTL:          time.Hour,
		BreakerFailures:   4,
		BreakerReset:      10 * time.Second,
	}

	opts := cfg.RegistryOptions()
	assert.Equal(t, "http://registry", opts.BaseURL)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, 5.0, opts.RequestsPerSecond)
	assert.Equal(t, 2, opts.MaxRetries)
	assert.Equal(t, "redis:6379", opts.RedisAddr)
	assert.Equal(t, time.Hour, opts.CacheTTL)
	assert.Equal(t, 4, opts.BreakerFailures)
	assert.Equal(t, 10*time.Second, opts.BreakerReset)
}
