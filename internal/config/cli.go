package config

import (
	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options. Only flags that
// were explicitly set override the config file.
type CLIOptions struct {
	MaxBreakMinutes    *int
	MinTitleSimilarity *float64
	MinSessionSeconds  *int
	BackfillDays       *int
	BackfillWorkers    *int
	AfterAggregate     *string
	NoRules            bool
	Debug              bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		var opts CLIOptions

		if ctx.IsSet("max-break") {
			v := ctx.Int("max-break")
			opts.MaxBreakMinutes = &v
		}

		if ctx.IsSet("min-similarity") {
			v := ctx.Float64("min-similarity")
			opts.MinTitleSimilarity = &v
		}

		if ctx.IsSet("min-duration") {
			v := ctx.Int("min-duration")
			opts.MinSessionSeconds = &v
		}

		if ctx.IsSet("days") {
			v := ctx.Int("days")
			opts.BackfillDays = &v
		}

		if ctx.IsSet("workers") {
			v := ctx.Int("workers")
			opts.BackfillWorkers = &v
		}

		if ctx.IsSet("hook") {
			v := ctx.String("hook")
			opts.AfterAggregate = &v
		}

		opts.NoRules = ctx.Bool("no-rules")
		opts.Debug = ctx.Bool("debug")

		applyCLIOptions(c, &opts)

		return nil
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts *CLIOptions) {
	if opts.MaxBreakMinutes != nil {
		c.Aggregation.MaxBreakMinutes = *opts.MaxBreakMinutes
	}

	if opts.MinTitleSimilarity != nil {
		c.Aggregation.MinTitleSimilarity = *opts.MinTitleSimilarity
	}

	if opts.MinSessionSeconds != nil {
		c.Aggregation.MinSessionDurationSeconds = *opts.MinSessionSeconds
	}

	if opts.BackfillDays != nil {
		c.Backfill.Days = *opts.BackfillDays
	}

	if opts.BackfillWorkers != nil {
		c.Backfill.Workers = *opts.BackfillWorkers
	}

	if opts.AfterAggregate != nil {
		c.Hooks.AfterAggregate = *opts.AfterAggregate
	}

	if opts.NoRules {
		c.Rules.AutoApply = false
	}

	if opts.Debug {
		c.Log.Level = "debug"
	}
}
