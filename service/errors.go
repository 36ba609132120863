package service

import "github.com/ayoisaiah/werk/internal/apperr"

var (
	errUserRequired = &apperr.Error{
		Message: "a user id is required to aggregate events",
	}

	errInvalidRange = &apperr.Error{
		Message: "invalid range: %s is after %s",
	}

	errLoadEvents = &apperr.Error{
		Message: "loading events for %s",
	}

	errAggregate = &apperr.Error{
		Message: "aggregating events for %s",
	}

	errStoreSessions = &apperr.Error{
		Message: "storing sessions for %s",
	}

	errApplyRules = &apperr.Error{
		Message: "applying rules to session %d",
	}

	errHook = &apperr.Error{
		Message: "running after_aggregate hook",
	}
)
