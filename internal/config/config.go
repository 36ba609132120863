package config

import (
	"io"
	"os"

	"github.com/ayoisaiah/werk/internal/aggregate"
	"github.com/ayoisaiah/werk/internal/title"
)

type (
	// Config holds all configuration settings
	Config struct {
		Title       TitleConfig       `mapstructure:"title"`
		Hooks       HooksConfig       `mapstructure:"hooks"`
		Log         LogConfig         `mapstructure:"log"`
		Rules       RulesConfig       `mapstructure:"rules"`
		Aggregation AggregationConfig `mapstructure:"aggregation"`
		Backfill    BackfillConfig    `mapstructure:"backfill"`
		// prompted is set when the values came from the setup prompt and
		// must be written back to the config file
		prompted bool
	}

	// AggregationConfig holds the session aggregation thresholds
	AggregationConfig struct {
		MaxBreakMinutes           int     `mapstructure:"max_break_minutes"`
		MinTitleSimilarity        float64 `mapstructure:"min_title_similarity"`
		MinSessionDurationSeconds int     `mapstructure:"min_session_duration_seconds"`
		MinEventDurationSeconds   int     `mapstructure:"min_event_duration_seconds"`
		BreakThresholdSeconds     int     `mapstructure:"break_threshold_seconds"`
	}

	// TitleConfig holds window title normalization settings
	TitleConfig struct {
		AppSuffixes []string `mapstructure:"app_suffixes"`
	}

	// RulesConfig holds rule evaluation settings
	RulesConfig struct {
		AutoApply bool `mapstructure:"auto_apply"`
		CacheSize int  `mapstructure:"cache_size"`
	}

	// HooksConfig holds commands that run after werk operations
	HooksConfig struct {
		AfterAggregate string `mapstructure:"after_aggregate"`
	}

	// BackfillConfig holds defaults for the backfill command
	BackfillConfig struct {
		Days    int `mapstructure:"days"`
		Workers int `mapstructure:"workers"`
	}

	// LogConfig holds log file settings
	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
	}

	// Option is a function that modifies Config
	Option func(*Config) error
)

const Version = "v0.3.0"

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a new Config and applies options in order. The result is
// validated before it is returned.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// AggregateConfig converts the aggregation settings into the value passed to
// aggregate.Aggregate.
func (c *Config) AggregateConfig() aggregate.Config {
	return aggregate.Config{
		Titles:                    title.NewNormalizer(c.Title.AppSuffixes),
		MaxBreakMinutes:           c.Aggregation.MaxBreakMinutes,
		MinTitleSimilarity:        c.Aggregation.MinTitleSimilarity,
		MinSessionDurationSeconds: c.Aggregation.MinSessionDurationSeconds,
		MinEventDurationSeconds:   c.Aggregation.MinEventDurationSeconds,
		BreakThresholdSeconds:     c.Aggregation.BreakThresholdSeconds,
	}
}
