package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/ayoisaiah/werk/internal/aggregate"
	"github.com/ayoisaiah/werk/internal/rules"
	"github.com/ayoisaiah/werk/internal/title"
)

// viperKeys defines the mapping between config keys and their Viper counterparts.
const (
	keyMaxBreakMinutes           = "aggregation.max_break_minutes"
	keyMinTitleSimilarity        = "aggregation.min_title_similarity"
	keyMinSessionDurationSeconds = "aggregation.min_session_duration_seconds"
	keyMinEventDurationSeconds   = "aggregation.min_event_duration_seconds"
	keyBreakThresholdSeconds     = "aggregation.break_threshold_seconds"
	keyAppSuffixes               = "title.app_suffixes"
	keyRulesAutoApply            = "rules.auto_apply"
	keyRulesCacheSize            = "rules.cache_size"
	keyAfterAggregate            = "hooks.after_aggregate"
	keyBackfillDays              = "backfill.days"
	keyBackfillWorkers           = "backfill.workers"
	keyLogLevel                  = "log.level"
	keyLogMaxSizeMB              = "log.max_size_mb"
	keyLogMaxBackups             = "log.max_backups"
)

// envPrefix exposes every key as an environment variable, e.g.
// WERK_AGGREGATION_MAX_BREAK_MINUTES.
const envPrefix = "WERK"

const (
	defaultBackfillDays    = 30
	defaultBackfillWorkers = 4
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 10
	defaultLogMaxBackups   = 3
)

// WithViperConfig returns an Option that loads configuration from Viper. The
// file is created with default values if it does not exist yet.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v, c)

		err := v.ReadInConfig()
		if err == nil {
			if c.prompted {
				if err := v.WriteConfig(); err != nil {
					return errWriteConfig.Wrap(err)
				}
			}

			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults, environment overrides and
// prompt values.
func setupViper(v *viper.Viper, c *Config) {
	v.SetDefault(keyMaxBreakMinutes, aggregate.DefaultMaxBreakMinutes)
	v.SetDefault(keyMinTitleSimilarity, aggregate.DefaultMinTitleSimilarity)
	v.SetDefault(
		keyMinSessionDurationSeconds,
		aggregate.DefaultMinSessionDurationSeconds,
	)
	v.SetDefault(
		keyMinEventDurationSeconds,
		aggregate.DefaultMinEventDurationSeconds,
	)
	v.SetDefault(keyBreakThresholdSeconds, aggregate.DefaultBreakThresholdSeconds)
	v.SetDefault(keyAppSuffixes, title.DefaultAppSuffixes)
	v.SetDefault(keyRulesAutoApply, true)
	v.SetDefault(keyRulesCacheSize, rules.DefaultCacheSize)
	v.SetDefault(keyAfterAggregate, "")
	v.SetDefault(keyBackfillDays, defaultBackfillDays)
	v.SetDefault(keyBackfillWorkers, defaultBackfillWorkers)
	v.SetDefault(keyLogLevel, defaultLogLevel)
	v.SetDefault(keyLogMaxSizeMB, defaultLogMaxSizeMB)
	v.SetDefault(keyLogMaxBackups, defaultLogMaxBackups)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if c.prompted {
		v.Set(keyMaxBreakMinutes, c.Aggregation.MaxBreakMinutes)
		v.Set(keyMinTitleSimilarity, c.Aggregation.MinTitleSimilarity)
		v.Set(
			keyMinSessionDurationSeconds,
			c.Aggregation.MinSessionDurationSeconds,
		)
		v.Set(keyRulesAutoApply, c.Rules.AutoApply)
	}
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	return nil
}
