// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillcat/internal/adapters/ingest"
	"github.com/okian/skillcat/internal/adapters/mq/queue"
	workerpool "github.com/okian/skillcat/internal/adapters/mq/worker"
	"github.com/okian/skillcat/internal/adapters/repository"
	"github.com/okian/skillcat/internal/domain/catalog"
	"github.com/okian/skillcat/internal/domain/dedupe"
	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/internal/domain/provenance"
	"github.com/okian/skillcat/internal/domain/review"
	"github.com/okian/skillcat/internal/domain/scoring"
	"github.com/okian/skillcat/internal/domain/types"
	"github.com/okian/skillcat/pkg/logger"
	"github.com/okian/skillcat/pkg/metrics"
)

const (
	defaultQueueSize     = 10000
	defaultDedupeSize    = 50000
	defaultMaxUploadRows = 5000
	defaultActivityLimit = 20

	runIDLayout = "Jan 2, 2006 - 3:04pm MST"
)

// Service implements the API dependencies for the categorization engine.
type Service struct {
	mu sync.RWMutex

	// Domain
	catalog *catalog.Catalog
	scorer  *scoring.Scorer
	ledger  *provenance.MemoryLedger
	store   *repository.MemoryStore
	session *review.Session

	// Ingestion pipeline, built on Start
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *workerpool.Pool
	cancel  context.CancelFunc

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	strategyName   string
	strategy       scoring.Strategy
	scoringTimeout time.Duration
	timeoutSet     bool
	maxUploadRows  int
	activityLimit  int
	seedDemo       bool
	now            func() time.Time

	// State
	started  bool
	runs     atomic.Int64
	uploadMu sync.Mutex

	logger logger.Logger
}

// New constructs a Service. The domain is usable right away; the ingestion
// pipeline starts with Start.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:       catalog.Default(),
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		strategyName:  "keyword",
		strategy:      scoring.NewKeywordStrategy(),
		maxUploadRows: defaultMaxUploadRows,
		activityLimit: defaultActivityLimit,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	scorerOpts := []scoring.Option{scoring.WithStrategy(s.strategy)}
	if s.timeoutSet {
		scorerOpts = append(scorerOpts, scoring.WithTimeout(s.scoringTimeout))
	}
	s.scorer = scoring.New(s.catalog, scorerOpts...)
	s.ledger = provenance.NewMemoryLedger()
	s.store = repository.NewMemoryStore()
	s.session = review.New(s.catalog, s.scorer, s.ledger, s.store,
		review.WithLogger(s.logger.Named("review")),
		review.WithClock(s.now),
	)

	return s
}

// Start builds the ingestion pipeline, seeds demo data when configured and
// starts the workers. The workers outlive ctx and stop only through Stop, so
// a cancelled signal context still lets queued uploads drain.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting categorization service...")

	if s.seedDemo {
		if err := Seed(ctx, s.ledger, s.store); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		s.logger.Info(ctx, "demo data seeded", logger.Int("skills", s.store.Count(ctx)))
	}
	s.runs.Store(int64(len(s.store.RunIDs(ctx))))

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.ProcessorFunc(s.process))
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "categorization service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("strategy", s.strategyName),
		logger.Int("categories", s.catalog.Len()),
	)

	return nil
}

// Stop closes the queue and waits for queued submissions to be ingested.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping categorization service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false
	if err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
		return err
	}

	s.logger.Info(ctx, "categorization service stopped")
	return nil
}

// process ingests one queued submission. Failed submissions are forgotten by
// the deduper so the same row can be uploaded again, unless the skill already
// exists.
func (s *Service) process(ctx context.Context, sub queue.Submission) error {
	_, err := s.session.Ingest(ctx, review.Input{
		ID:          sub.ID,
		Name:        sub.Name,
		Description: sub.Description,
		RunID:       sub.RunID,
	})
	if err != nil && !errors.Is(err, repository.ErrDuplicateID) && !errors.Is(err, provenance.ErrDuplicateProposal) {
		s.deduper.Unrecord(ctx, sub.ID)
	}
	return err
}

// Categories returns the taxonomy in configuration order.
func (s *Service) Categories(_ context.Context) []model.Category {
	return s.session.Categories()
}

// Score ranks every category for a description without storing anything.
func (s *Service) Score(ctx context.Context, description string) ([]model.MatchResult, error) {
	return s.session.Score(ctx, description)
}

// CreateSkill ingests a single skill synchronously.
func (s *Service) CreateSkill(ctx context.Context, in types.SkillInput) (types.Ingested, error) {
	out, err := s.session.Ingest(ctx, review.Input{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		RunID:       in.RunID,
	})
	if err != nil {
		return types.Ingested{}, err
	}
	return types.Ingested{Skill: out.Skill, Proposal: out.Proposal, Matches: out.Matches}, nil
}

// Upload parses a CSV sheet into a new run and queues every row that was not
// seen before. Rows refused by a full queue are counted as rejected and can
// be retried by uploading the same sheet again. A run number is consumed only
// when at least one row is accepted; otherwise RunID is empty.
func (s *Service) Upload(ctx context.Context, r io.Reader) (types.UploadResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	if !s.started {
		return types.UploadResult{}, ErrNotStarted
	}

	parsed, err := ingest.ParseCSV(r, ingest.Options{MaxRows: s.maxUploadRows})
	if err != nil {
		return types.UploadResult{}, err
	}
	run, runID := s.nextRunID()

	res := types.UploadResult{RunID: runID, Skipped: make([]types.SkippedRow, 0, len(parsed.Skipped))}
	for _, row := range parsed.Skipped {
		res.Skipped = append(res.Skipped, types.SkippedRow{Line: row.Line, Reason: row.Reason})
	}

	for _, sub := range parsed.Submissions {
		sub.RunID = runID
		if s.deduper.SeenAndRecord(ctx, sub.ID) {
			metrics.RecordSubmissionDuplicate()
			res.Duplicates++
			continue
		}
		if err := s.queue.Enqueue(ctx, sub); err != nil {
			s.deduper.Unrecord(ctx, sub.ID)
			if errors.Is(err, queue.ErrFull) {
				res.Rejected++
				continue
			}
			s.commitRun(run, &res)
			return res, err
		}
		metrics.RecordSubmissionAccepted()
		res.Accepted++
	}
	s.commitRun(run, &res)

	s.logger.Info(ctx, "upload queued",
		logger.String("run_id", res.RunID),
		logger.Int("accepted", res.Accepted),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("rejected", res.Rejected),
		logger.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// nextRunID labels the next ingestion batch without claiming its number, e.g.
// "Run 6 - Dec 18, 2024 - 2:55pm UTC". Callers hold uploadMu.
func (s *Service) nextRunID() (int64, string) {
	n := s.runs.Load() + 1
	return n, fmt.Sprintf("Run %d - %s", n, s.now().Format(runIDLayout))
}

// commitRun claims run when res accepted any row and clears the run id
// otherwise.
func (s *Service) commitRun(run int64, res *types.UploadResult) {
	if res.Accepted > 0 {
		s.runs.Store(run)
		return
	}
	res.RunID = ""
}

// ListSkills returns the skills matching f and every known run id.
func (s *Service) ListSkills(ctx context.Context, f model.SkillFilter) (types.SkillList, error) {
	items, err := s.session.List(ctx, f)
	if err != nil {
		return types.SkillList{}, err
	}

	out := types.SkillList{
		Skills: make([]types.SkillItem, 0, len(items)),
		RunIDs: s.store.RunIDs(ctx),
	}
	if out.RunIDs == nil {
		out.RunIDs = []string{}
	}
	for _, it := range items {
		out.Skills = append(out.Skills, types.SkillItem{
			ID:               it.Skill.ID,
			Name:             it.Skill.Name,
			RunID:            it.Skill.RunID,
			CreatedAt:        it.Skill.CreatedAt,
			State:            it.State,
			ProposedCategory: it.ProposedCategory,
			CurrentCategory:  it.CurrentCategory,
			LastActor:        it.LastActor,
		})
	}
	return out, nil
}

// OpenSkill loads a skill for review with fresh matches.
func (s *Service) OpenSkill(ctx context.Context, skillID string) (types.Review, error) {
	r, err := s.session.Open(ctx, skillID)
	if err != nil {
		return types.Review{}, err
	}
	return types.Review{
		Skill:           r.Skill,
		State:           r.State,
		CurrentCategory: r.CurrentCategory,
		Current:         r.Current,
		Alternatives:    r.Alternatives,
		Matches:         r.Matches,
		History:         r.History,
	}, nil
}

// Decide commits a reviewer's choice stamped with the current time.
func (s *Service) Decide(ctx context.Context, skillID string, d types.Decision) (model.ProvenanceEntry, error) {
	return s.session.Commit(ctx, skillID, d.Category, d.Actor, s.now())
}

// Summary computes the dashboard aggregates.
func (s *Service) Summary(ctx context.Context) types.Summary {
	sum := s.session.Summary(ctx, s.activityLimit)
	out := types.Summary{
		Total:          sum.Total,
		Reviewed:       sum.Reviewed,
		Pending:        sum.Pending,
		Changed:        sum.Changed,
		ValidationRate: sum.ValidationRate,
		AccuracyRate:   sum.AccuracyRate,
		Distribution:   make([]types.CategoryCount, 0, len(sum.Distribution)),
		Activity:       sum.Activity,
		AccuracyTrend:  make([]types.TrendPoint, 0, len(sum.AccuracyTrend)),
	}
	for _, c := range sum.Distribution {
		out.Distribution = append(out.Distribution, types.CategoryCount{Category: c.Category, Count: c.Count})
	}
	for _, p := range sum.AccuracyTrend {
		out.AccuracyTrend = append(out.AccuracyTrend, types.TrendPoint{Timestamp: p.Timestamp, Accuracy: p.Accuracy})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := types.Stats{
		Started:   s.started,
		Workers:   s.workerCount,
		QueueSize: s.queueSize,
		Skills:    s.store.Count(ctx),
		Runs:      len(s.store.RunIDs(ctx)),
		Strategy:  s.strategyName,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		pool := s.pool.Stats()

		stats.QueueLength = queueLen
		stats.DedupeSize = s.deduper.Size()
		stats.Processed = pool.Processed
		stats.Failed = pool.Failed

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(pool.Workers)
	}

	return stats
}
