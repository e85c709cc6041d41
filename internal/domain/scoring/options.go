package scoring

import "time"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithStrategy replaces the default keyword strategy.
func WithStrategy(strategy Strategy) Option {
	return func(s *Scorer) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

// WithTimeout bounds a single strategy call. Zero or negative disables the
// bound and leaves only the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scorer) {
		s.timeout = timeout
	}
}
