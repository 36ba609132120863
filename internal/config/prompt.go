package config

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

const asciiLogo = `
██╗    ██╗███████╗██████╗ ██╗  ██╗
██║    ██║██╔════╝██╔══██╗██║ ██╔╝
██║ █╗ ██║█████╗  ██████╔╝█████╔╝
██║███╗██║██╔══╝  ██╔══██╗██╔═██╗
╚███╔███╔╝███████╗██║  ██║██║  ██╗
 ╚══╝╚══╝ ╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝`

// PromptOptions holds the user's responses to the configuration prompts.
type PromptOptions struct {
	MaxBreakMinutes    int
	MinTitleSimilarity float64
	MinSessionSeconds  int
	AutoApply          bool
}

// WithPromptConfig returns an Option that configures the aggregation
// settings via interactive prompts. It must precede WithViperConfig so that
// the answers are written to the config file.
func WithPromptConfig() Option {
	return func(c *Config) error {
		opts, err := promptUser()
		if err != nil {
			return fmt.Errorf("user prompt failed: %w", err)
		}

		applyPromptOptions(c, &opts)

		return nil
	}
}

// promptUser handles the interactive configuration process.
func promptUser() (PromptOptions, error) {
	opts := PromptOptions{
		AutoApply: true,
	}

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure werk.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'werk edit-config' to change any settings.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Longest pause that still continues a session").
				Options(
					huh.NewOption("2 minutes", 2),
					huh.NewOption("5 minutes", 5).Selected(true),
					huh.NewOption("10 minutes", 10),
					huh.NewOption("15 minutes", 15),
				).
				Value(&opts.MaxBreakMinutes),
		),
		huh.NewGroup(
			huh.NewSelect[float64]().
				Title("How similar window titles must be to merge").
				Options(
					huh.NewOption("Loose (0.5)", 0.5),
					huh.NewOption("Balanced (0.65)", 0.65).Selected(true),
					huh.NewOption("Strict (0.8)", 0.8),
				).
				Value(&opts.MinTitleSimilarity),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Shortest session worth keeping").
				Options(
					huh.NewOption("1 minute", 60),
					huh.NewOption("2 minutes", 120).Selected(true),
					huh.NewOption("5 minutes", 300),
				).
				Value(&opts.MinSessionSeconds),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Apply assignment rules after every aggregation?").
				Value(&opts.AutoApply),
		),
	)

	err := form.Run()
	if err != nil {
		return opts, fmt.Errorf("form interaction failed: %w", err)
	}

	return opts, nil
}

// applyPromptOptions applies the user's prompt responses to the configuration.
func applyPromptOptions(c *Config, opts *PromptOptions) {
	c.Aggregation.MaxBreakMinutes = opts.MaxBreakMinutes
	c.Aggregation.MinTitleSimilarity = opts.MinTitleSimilarity
	c.Aggregation.MinSessionDurationSeconds = opts.MinSessionSeconds
	c.Rules.AutoApply = opts.AutoApply
	c.prompted = true
}
