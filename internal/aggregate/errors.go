package aggregate

import "github.com/ayoisaiah/werk/internal/apperr"

var (
	// ErrInvalidConfig wraps every configuration error returned by
	// Aggregate.
	ErrInvalidConfig = &apperr.Error{
		Message: "invalid aggregation config",
	}

	errNegativeThreshold = &apperr.Error{
		Message: "%s must not be negative, got %d",
	}

	errSimilarityOutOfRange = &apperr.Error{
		Message: "min_title_similarity must be between 0 and 1, got %v",
	}
)
