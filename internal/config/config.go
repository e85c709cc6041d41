// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Load layers a YAML file and SKILLCAT_ environment variables on top.
//   - Validation errors wrap ErrInvalidConfig; loading errors wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Scoring strategies.
const (
	StrategyKeyword = "keyword"
	StrategyTable   = "table"
)

// ScoreEntry is one row of a fixed score table.
type ScoreEntry struct {
	Score         float64  `koanf:"score"`
	RelatedSkills []string `koanf:"related_skills"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many submission ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// CatalogPath points at a YAML taxonomy. Empty uses the built-in one.
	CatalogPath string `koanf:"catalog_path"`

	// ScoringStrategy is keyword or table.
	ScoringStrategy string `koanf:"scoring_strategy"`

	// ScoringTimeoutMS bounds a single scoring call.
	ScoringTimeoutMS int `koanf:"scoring_timeout_ms"`

	// ScoreTable overrides the built-in table used by the table strategy.
	ScoreTable map[string]ScoreEntry `koanf:"score_table"`

	// MaxUploadBytes caps the body of POST /uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxUploadRows caps the data rows of one upload.
	MaxUploadRows int `koanf:"max_upload_rows"`

	// ActivityLimit caps the activity timeline of GET /summary.
	ActivityLimit int `koanf:"activity_limit"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// SeedDemo loads the sample review history at start.
	SeedDemo bool `koanf:"seed_demo"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        50_000,
		ScoringStrategy:   StrategyKeyword,
		ScoringTimeoutMS:  2_000,
		MaxUploadBytes:    5 << 20,
		MaxUploadRows:     5_000,
		ActivityLimit:     20,
		ShutdownTimeoutMS: 10_000,
	}
}

// ScoringTimeout returns ScoringTimeoutMS as a duration.
func (c *Config) ScoringTimeout() time.Duration {
	return time.Duration(c.ScoringTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.ScoringStrategy {
	case StrategyKeyword, StrategyTable:
	default:
		return fmt.Errorf("%w: scoring_strategy must be %s or %s, got %q",
			ErrInvalidConfig, StrategyKeyword, StrategyTable, c.ScoringStrategy)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.ScoringTimeoutMS < 0 {
		return fmt.Errorf("%w: scoring_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	for name, e := range c.ScoreTable {
		if e.Score < 0 || e.Score > 1 {
			return fmt.Errorf("%w: score_table[%s] score %v outside [0,1]", ErrInvalidConfig, name, e.Score)
		}
	}
	return nil
}
