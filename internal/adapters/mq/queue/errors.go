package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("ingestion queue is full")
	ErrClosed = errors.New("ingestion queue is closed")
)
