package repository

import "errors"

// Sentinel kinds for skill store errors.
var (
	ErrNotFound      = errors.New("skill not found")
	ErrDuplicateID   = errors.New("skill id already exists")
	ErrInvalidRecord = errors.New("invalid skill record")
)
