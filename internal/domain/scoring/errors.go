package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidInput       = errors.New("invalid skill description")
	ErrInvalidScore       = errors.New("scorer returned an invalid categorization")
	ErrScoringUnavailable = errors.New("scoring unavailable")
)
