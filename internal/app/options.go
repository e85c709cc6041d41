package service

import (
	"time"

	"github.com/okian/skillcat/internal/domain/catalog"
	"github.com/okian/skillcat/internal/domain/scoring"
	"github.com/okian/skillcat/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the built-in taxonomy.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithStrategy sets the scoring strategy and the name reported in stats.
func WithStrategy(name string, strategy scoring.Strategy) Option {
	return func(s *Service) {
		if strategy != nil {
			s.strategyName = name
			s.strategy = strategy
		}
	}
}

// WithScoringTimeout bounds a single scoring call. Zero or negative disables
// the bound, as scoring.WithTimeout does.
func WithScoringTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.scoringTimeout = d
		s.timeoutSet = true
	}
}

// WithMaxUploadRows caps the data rows of one upload.
func WithMaxUploadRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadRows = n
		}
	}
}

// WithActivityLimit caps the activity timeline of the summary.
func WithActivityLimit(n int) Option {
	return func(s *Service) {
		s.activityLimit = n
	}
}

// WithSeedDemo loads the sample review history on Start.
func WithSeedDemo(enabled bool) Option {
	return func(s *Service) {
		s.seedDemo = enabled
	}
}

// WithClock overrides the time source for decisions and run ids.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
