package config

import (
	"log/slog"

	"github.com/kballard/go-shellquote"
)

const (
	maxBackfillDays    = 3660
	maxBackfillWorkers = 64
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	aggCfg := c.AggregateConfig()

	if err := aggCfg.Validate(); err != nil {
		return err
	}

	if c.Backfill.Days < 1 || c.Backfill.Days > maxBackfillDays {
		return errInvalidBackfillDays.Fmt(maxBackfillDays, c.Backfill.Days)
	}

	if c.Backfill.Workers < 1 || c.Backfill.Workers > maxBackfillWorkers {
		return errInvalidWorkers.Fmt(maxBackfillWorkers, c.Backfill.Workers)
	}

	if c.Rules.CacheSize < 0 {
		return errInvalidCacheSize.Fmt(c.Rules.CacheSize)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	if _, err := shellquote.Split(c.Hooks.AfterAggregate); err != nil {
		return errInvalidHook.Wrap(err)
	}

	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return level, errInvalidLogLevel.Fmt(c.Log.Level)
	}

	return level, nil
}
