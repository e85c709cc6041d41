package review

import (
	"time"

	"github.com/okian/skillcat/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for ingestion timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how skill ids are minted when the caller gives none.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithAlternatives sets how many alternative categories Open returns.
func WithAlternatives(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.alternatives = n
		}
	}
}
