package aggregate

import (
	"time"

	"github.com/ayoisaiah/werk/internal/title"
)

const (
	DefaultMaxBreakMinutes           = 5
	DefaultMinTitleSimilarity        = 0.65
	DefaultMinSessionDurationSeconds = 120
	DefaultMinEventDurationSeconds   = 0
	DefaultBreakThresholdSeconds     = 60
)

// Config holds the thresholds for a single aggregation run. It is passed by
// value; there is no package-level mutable state.
type Config struct {
	// Titles normalizes window titles before comparison. A nil value uses
	// title.Normalize.
	Titles *title.Normalizer `json:"-"`
	// MaxBreakMinutes is the largest gap between two events that still lets
	// them merge.
	MaxBreakMinutes int `json:"max_break_minutes"`
	// MinTitleSimilarity is the ratio two normalized titles must reach for
	// events of the same process to merge.
	MinTitleSimilarity float64 `json:"min_title_similarity"`
	// MinSessionDurationSeconds drops shorter sessions from the output.
	MinSessionDurationSeconds int `json:"min_session_duration_seconds"`
	// MinEventDurationSeconds skips shorter events before grouping.
	MinEventDurationSeconds int `json:"min_event_duration_seconds"`
	// BreakThresholdSeconds is the gap above which a merged gap counts as a
	// break.
	BreakThresholdSeconds int `json:"break_threshold_seconds"`
}

// DefaultConfig returns the documented default thresholds.
func DefaultConfig() Config {
	return Config{
		MaxBreakMinutes:           DefaultMaxBreakMinutes,
		MinTitleSimilarity:        DefaultMinTitleSimilarity,
		MinSessionDurationSeconds: DefaultMinSessionDurationSeconds,
		MinEventDurationSeconds:   DefaultMinEventDurationSeconds,
		BreakThresholdSeconds:     DefaultBreakThresholdSeconds,
	}
}

// Validate rejects out-of-range thresholds. Values are never clamped.
func (c *Config) Validate() error {
	ints := []struct {
		name  string
		value int
	}{
		{"max_break_minutes", c.MaxBreakMinutes},
		{"min_session_duration_seconds", c.MinSessionDurationSeconds},
		{"min_event_duration_seconds", c.MinEventDurationSeconds},
		{"break_threshold_seconds", c.BreakThresholdSeconds},
	}

	for _, v := range ints {
		if v.value < 0 {
			return ErrInvalidConfig.Wrap(errNegativeThreshold.Fmt(v.name, v.value))
		}
	}

	if !(c.MinTitleSimilarity >= 0 && c.MinTitleSimilarity <= 1) {
		return ErrInvalidConfig.Wrap(
			errSimilarityOutOfRange.Fmt(c.MinTitleSimilarity),
		)
	}

	return nil
}

func (c *Config) maxBreak() time.Duration {
	return time.Duration(c.MaxBreakMinutes) * time.Minute
}

func (c *Config) breakThreshold() time.Duration {
	return time.Duration(c.BreakThresholdSeconds) * time.Second
}

func (c *Config) minSession() time.Duration {
	return time.Duration(c.MinSessionDurationSeconds) * time.Second
}

func (c *Config) minEvent() time.Duration {
	return time.Duration(c.MinEventDurationSeconds) * time.Second
}

func (c *Config) normalize(raw string) string {
	if c.Titles == nil {
		return title.Normalize(raw)
	}

	return c.Titles.Normalize(raw)
}
