package service

import (
	"fmt"

	"github.com/okian/skillcat/internal/adapters/mq/queue"
)

// Sentinel errors returned by the service. ErrNotStarted matches
// queue.ErrClosed so callers treat both as "not accepting work".
var (
	ErrNotStarted = fmt.Errorf("%w: service not started", queue.ErrClosed)
)
