package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration loaded from YAML with
// environment variable overrides.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Providers ProvidersConfig `yaml:"providers"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DataConfig holds base directories for CSV/raw outputs per source.
type DataConfig struct {
	FBrefDir     string `yaml:"fbref_dir"`
	SofascoreDir string `yaml:"sofascore_dir"`
}

// Dirs returns every directory the pipeline needs, daily and raw per source.
func (d DataConfig) Dirs() []string {
	return []string{
		d.FBrefDir + "/daily",
		d.FBrefDir + "/raw",
		d.SofascoreDir + "/daily",
		d.SofascoreDir + "/raw",
	}
}

// ProviderConfig holds rate limit and timeout settings for one data provider.
type ProviderConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BaseURL        string        `yaml:"base_url"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
	Burst          int           `yaml:"burst"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// ProvidersConfig configures each supported data source.
type ProvidersConfig struct {
	Sofascore ProviderConfig `yaml:"sofascore"`
	FBref     ProviderConfig `yaml:"fbref"`
}

// DatabaseConfig holds Postgres connection configuration.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	Enabled         bool          `yaml:"enabled"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Redis struct {
		Addr              string `yaml:"addr"`
		DB                int    `yaml:"db"`
		DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
		Enabled           bool   `yaml:"enabled"`
	} `yaml:"redis"`
}

// DefaultTTL converts the configured TTL seconds to a duration.
func (c CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.Redis.DefaultTTLSeconds) * time.Second
}

// DashboardConfig holds HTTP server configuration.
type DashboardConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// SchedulerConfig points at the jobs file and artifacts directory.
type SchedulerConfig struct {
	JobsFile     string `yaml:"jobs_file"`
	ArtifactsDir string `yaml:"artifacts_dir"`
}

// Load reads configuration from a YAML file. A missing file is not an error:
// defaults plus environment overrides still produce a usable config.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if dsn := os.Getenv("FBINTEL_PG_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if enabled := os.Getenv("FBINTEL_PG_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Database.Enabled = val
		}
	}
	if addr := os.Getenv("FBINTEL_REDIS_ADDR"); addr != "" {
		cfg.Cache.Redis.Addr = addr
		cfg.Cache.Redis.Enabled = true
	}
	if port := os.Getenv("FBINTEL_HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Dashboard.Port = p
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Data.FBrefDir == "" {
		cfg.Data.FBrefDir = "data"
	}
	if cfg.Data.SofascoreDir == "" {
		cfg.Data.SofascoreDir = "sofascore_data"
	}

	applyProviderDefaults(&cfg.Providers.Sofascore, "https://api.sofascore.com", 2, 4)
	applyProviderDefaults(&cfg.Providers.FBref, "https://fbref.com", 0.5, 1)

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "postgres://localhost:5432/football_intelligence?sslmode=disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.QueryTimeout == 0 {
		cfg.Database.QueryTimeout = 30 * time.Second
	}

	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = "localhost:6379"
	}
	if cfg.Cache.Redis.DefaultTTLSeconds == 0 {
		cfg.Cache.Redis.DefaultTTLSeconds = 300
	}

	if cfg.Dashboard.Host == "" {
		cfg.Dashboard.Host = "127.0.0.1"
	}
	if cfg.Dashboard.Port == 0 {
		cfg.Dashboard.Port = 8080
	}
	if cfg.Dashboard.ReadTimeout == 0 {
		cfg.Dashboard.ReadTimeout = 10 * time.Second
	}
	if cfg.Dashboard.WriteTimeout == 0 {
		cfg.Dashboard.WriteTimeout = 10 * time.Second
	}
	if cfg.Dashboard.IdleTimeout == 0 {
		cfg.Dashboard.IdleTimeout = 60 * time.Second
	}

	if cfg.Scheduler.JobsFile == "" {
		cfg.Scheduler.JobsFile = "config/jobs.yaml"
	}
	if cfg.Scheduler.ArtifactsDir == "" {
		cfg.Scheduler.ArtifactsDir = "artifacts"
	}
}

func applyProviderDefaults(p *ProviderConfig, baseURL string, rps float64, burst int) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
		// Providers without explicit config default to enabled.
		if !p.Enabled && p.RequestsPerSec == 0 && p.Timeout == 0 {
			p.Enabled = true
		}
	}
	if p.RequestsPerSec == 0 {
		p.RequestsPerSec = rps
	}
	if p.Burst == 0 {
		p.Burst = burst
	}
	if p.Timeout == 0 {
		p.Timeout = 20 * time.Second
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = 3
	}
}
