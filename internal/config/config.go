// Package config is the koanf-backed configuration layer: a tagged Config
// struct plus a Loader that merges defaults, an optional YAML file, and
// environment variables, in that precedence order.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level configuration for a harness process embedding
// this scheduling core. There are no server sections: this core has no
// transport surface of its own.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Cache   CacheConfig   `koanf:"cache"`
	Store   StoreConfig   `koanf:"store"`
	Solver  SolverConfig  `koanf:"solver"`
}

// AppConfig holds identity and environment settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"`
	Debug       bool   `koanf:"debug"`
}

// LogConfig mirrors internal/logger.Config field for field so koanf can
// unmarshal directly into it.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	Output     string `koanf:"output"`
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"`
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig controls the Prometheus registry internal/metrics builds.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig controls internal/telemetry's OTLP exporter.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig controls internal/cache's geometry memoization.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// Address returns the cache's redis-style host:port.
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig controls internal/store's Postgres connection.
type StoreConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN returns a libpq-style Postgres connection string.
func (s StoreConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.Username, s.Password, s.Database, s.SSLMode)
}

// SolverConfig picks which scheduler.Solver a harness run uses; runs never
// mix solvers.
type SolverConfig struct {
	Kind    string        `koanf:"kind"` // ilp, flow
	Timeout time.Duration `koanf:"timeout"`
}

// Validate checks the fields this module actually reads.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	} else if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validSolvers := map[string]bool{"ilp": true, "flow": true}
	if c.Solver.Kind != "" && !validSolvers[c.Solver.Kind] {
		errs = append(errs, fmt.Sprintf("solver.kind must be one of: ilp, flow, got %s", c.Solver.Kind))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment reports whether App.Environment names a dev-like mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}
