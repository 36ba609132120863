package config

import "github.com/ayoisaiah/werk/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing config file failed",
	}

	errInvalidBackfillDays = &apperr.Error{
		Message: "backfill days must be between 1 and %d, got %d",
	}

	errInvalidWorkers = &apperr.Error{
		Message: "backfill workers must be between 1 and %d, got %d",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "unknown log level %q (must be debug, info, warn or error)",
	}

	errInvalidHook = &apperr.Error{
		Message: "unable to parse hooks.after_aggregate",
	}

	errInvalidCacheSize = &apperr.Error{
		Message: "rules cache size must not be negative, got %d",
	}

	errInvalidPeriod = &apperr.Error{
		Message: "please provide a valid time period (one of %s)",
	}

	errInvalidDate = &apperr.Error{
		Message: "unable to parse %s date %q",
	}

	errInvalidDateRange = &apperr.Error{
		Message: "the start time must be earlier than the end time",
	}
)
