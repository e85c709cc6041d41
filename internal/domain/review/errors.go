package review

import "errors"

// Sentinel kinds for review errors.
var (
	ErrUnknownSkill    = errors.New("unknown skill")
	ErrUnknownCategory = errors.New("unknown category")
)
