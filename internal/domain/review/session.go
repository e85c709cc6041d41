// Package review drives the human validation workflow on top of the scorer
// and the provenance ledger.
package review

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/internal/domain/provenance"
	"github.com/okian/skillcat/internal/domain/scoring"
	"github.com/okian/skillcat/pkg/logger"
	"github.com/okian/skillcat/pkg/metrics"
)

const defaultAlternatives = 4

// Catalog is the read side of the category catalog.
type Catalog interface {
	List() []model.Category
	Contains(name string) bool
}

// Scorer ranks every catalog category for a description.
type Scorer interface {
	Score(ctx context.Context, description string) ([]model.MatchResult, error)
}

// SkillStore persists skill records.
type SkillStore interface {
	Create(ctx context.Context, rec model.SkillRecord) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.SkillRecord, error)
	List(ctx context.Context, f model.SkillFilter) ([]model.SkillRecord, error)
}

// Review is everything a reviewer needs to decide on one skill.
type Review struct {
	Skill           model.SkillRecord
	State           model.ReviewState
	CurrentCategory string
	// Current is the fresh match of the current category.
	Current model.MatchResult
	// Matches ranks every category, current included.
	Matches []model.MatchResult
	// Alternatives are the best matches other than the current category.
	Alternatives []model.MatchResult
	History      []model.ProvenanceEntry
}

// Item is one row of a skill listing.
type Item struct {
	Skill            model.SkillRecord
	State            model.ReviewState
	ProposedCategory string
	CurrentCategory  string
	LastActor        string
}

// Input is a skill to ingest. ID and CreatedAt are filled in when empty.
type Input struct {
	ID          string
	Name        string
	Description string
	RunID       string
	CreatedAt   time.Time
}

// Ingested is the outcome of a successful ingestion.
type Ingested struct {
	Skill    model.SkillRecord
	Matches  []model.MatchResult
	Proposal model.ProvenanceEntry
}

// Session coordinates scoring, the skill store and the ledger.
type Session struct {
	catalog Catalog
	scorer  Scorer
	ledger  provenance.Ledger
	skills  SkillStore

	logger       logger.Logger
	now          func() time.Time
	newID        func() string
	alternatives int

	mu     sync.Mutex
	opened map[string]struct{}
}

// New creates a review session.
func New(catalog Catalog, scorer Scorer, ledger provenance.Ledger, skills SkillStore, opts ...Option) *Session {
	s := &Session{
		catalog:      catalog,
		scorer:       scorer,
		ledger:       ledger,
		skills:       skills,
		logger:       logger.Nop(),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		alternatives: defaultAlternatives,
		opened:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns the catalog in configuration order.
func (s *Session) Categories() []model.Category {
	return s.catalog.List()
}

// Score ranks every category for description.
func (s *Session) Score(ctx context.Context, description string) ([]model.MatchResult, error) {
	return s.scorer.Score(ctx, description)
}

// Ingest stores a new skill, scores it and proposes its best match as the
// Algorithm entry. Nothing is kept when any step fails: a skill that already
// has a proposal is refused before it is stored, and the record is removed
// again when the proposal cannot be appended.
func (s *Session) Ingest(ctx context.Context, in Input) (Ingested, error) {
	if strings.TrimSpace(in.Description) == "" {
		return Ingested{}, scoring.ErrInvalidInput
	}

	matches, err := s.scorer.Score(ctx, in.Description)
	if err != nil {
		return Ingested{}, fmt.Errorf("score skill: %w", err)
	}
	if len(matches) == 0 {
		return Ingested{}, fmt.Errorf("score skill: %w: empty catalog", scoring.ErrInvalidScore)
	}

	rec := model.SkillRecord{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		RunID:       strings.TrimSpace(in.RunID),
		CreatedAt:   in.CreatedAt,
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	if len(s.ledger.History(ctx, rec.ID)) > 0 {
		return Ingested{}, fmt.Errorf("propose category: %w: %s", provenance.ErrDuplicateProposal, rec.ID)
	}
	if err := s.skills.Create(ctx, rec); err != nil {
		return Ingested{}, fmt.Errorf("store skill: %w", err)
	}

	proposal, err := s.ledger.Propose(ctx, rec.ID, matches[0].Category, rec.CreatedAt)
	if err != nil {
		if derr := s.skills.Delete(context.WithoutCancel(ctx), rec.ID); derr != nil {
			s.logger.Error(ctx, "failed to roll back skill record",
				logger.String("skill_id", rec.ID), logger.Error(derr))
		}
		return Ingested{}, fmt.Errorf("propose category: %w", err)
	}

	s.logger.Debug(ctx, "skill ingested",
		logger.String("skill_id", rec.ID),
		logger.String("run_id", rec.RunID),
		logger.String("category", proposal.Category),
		logger.Float64("score", matches[0].Score),
	)

	return Ingested{Skill: rec, Matches: matches, Proposal: proposal}, nil
}

// Open loads a skill for review with freshly computed matches and marks it
// UnderReview. Matches are never cached.
func (s *Session) Open(ctx context.Context, skillID string) (Review, error) {
	rec, err := s.skills.Get(ctx, skillID)
	if err != nil {
		return Review{}, fmt.Errorf("%w: %s: %w", ErrUnknownSkill, skillID, err)
	}

	matches, err := s.scorer.Score(ctx, rec.Description)
	if err != nil {
		return Review{}, fmt.Errorf("score skill %s: %w", skillID, err)
	}

	history := s.ledger.History(ctx, skillID)
	r := Review{
		Skill:        rec,
		State:        model.StateUnderReview,
		Matches:      matches,
		History:      history,
		Alternatives: make([]model.MatchResult, 0, s.alternatives),
	}
	if len(history) > 0 {
		r.CurrentCategory = history[len(history)-1].Category
	}
	for _, m := range matches {
		if m.Category == r.CurrentCategory {
			r.Current = m
			continue
		}
		if len(r.Alternatives) < s.alternatives {
			r.Alternatives = append(r.Alternatives, m)
		}
	}

	s.mu.Lock()
	s.opened[skillID] = struct{}{}
	s.mu.Unlock()

	metrics.RecordReviewOpened()
	s.logger.Debug(ctx, "review opened", logger.String("skill_id", skillID))
	return r, nil
}

// Commit records a reviewer's choice. Choosing the current category
// validates it; anything else changes it. The comparison happens under the
// ledger's per-skill lock, so racing reviewers each see the category left by
// the one before. Ledger errors pass through unchanged.
func (s *Session) Commit(ctx context.Context, skillID, category, actor string, ts time.Time) (model.ProvenanceEntry, error) {
	if !s.catalog.Contains(category) {
		metrics.RecordErrorByComponent("review", "unknown_category")
		return model.ProvenanceEntry{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	entry, err := s.ledger.Decide(ctx, skillID, category, actor, ts)
	if err != nil {
		return model.ProvenanceEntry{}, err
	}

	s.mu.Lock()
	delete(s.opened, skillID)
	s.mu.Unlock()

	s.logger.Info(ctx, "review committed",
		logger.String("skill_id", skillID),
		logger.String("actor", entry.Actor),
		logger.String("action", string(entry.Action)),
		logger.String("category", category),
	)
	return entry, nil
}

// State returns the workflow position of a skill.
func (s *Session) State(ctx context.Context, skillID string) (model.ReviewState, error) {
	s.mu.Lock()
	_, open := s.opened[skillID]
	s.mu.Unlock()
	if open {
		return model.StateUnderReview, nil
	}

	history := s.ledger.History(ctx, skillID)
	if len(history) == 0 {
		if _, err := s.skills.Get(ctx, skillID); err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnknownSkill, skillID)
		}
		return model.StateUnreviewed, nil
	}
	return stateOf(history), nil
}

// List returns the skills matching f with their ledger-derived state.
func (s *Session) List(ctx context.Context, f model.SkillFilter) ([]Item, error) {
	recs, err := s.skills.List(ctx, f)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	opened := make(map[string]struct{}, len(s.opened))
	for id := range s.opened {
		opened[id] = struct{}{}
	}
	s.mu.Unlock()

	items := make([]Item, 0, len(recs))
	for _, rec := range recs {
		history := s.ledger.History(ctx, rec.ID)
		item := Item{Skill: rec, State: stateOf(history)}
		if len(history) > 0 {
			item.ProposedCategory = history[0].Category
			last := history[len(history)-1]
			item.CurrentCategory = last.Category
			item.LastActor = last.Actor
		}
		if _, ok := opened[rec.ID]; ok {
			item.State = model.StateUnderReview
		}
		items = append(items, item)
	}
	return items, nil
}

// stateOf derives the settled state from a history.
func stateOf(history []model.ProvenanceEntry) model.ReviewState {
	if len(history) < 2 {
		return model.StateUnreviewed
	}
	if history[len(history)-1].Action == model.ActionValidated {
		return model.StateValidated
	}
	return model.StateReassigned
}
