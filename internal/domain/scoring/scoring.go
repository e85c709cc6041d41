// Package scoring ranks catalog categories against a skill description.
//
// The ranking algorithm is a pluggable Strategy. Scorer wraps any strategy and
// enforces the categorization contract at the boundary: one result per
// catalog category, scores within [0,1], related skills drawn from the
// category's canonical list, and a deterministic order.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Default scoring configuration constants.
const (
	defaultTimeout = 2 * time.Second
)

// Strategy computes raw matches for every category. Implementations must be
// deterministic and should honor ctx; Scorer abandons calls that outlive it.
type Strategy interface {
	Match(ctx context.Context, description string, categories []model.Category) ([]model.MatchResult, error)
}

// Catalog is the read side of the category catalog the scorer needs.
type Catalog interface {
	List() []model.Category
}

// Scorer produces ranked categorizations.
type Scorer struct {
	catalog  Catalog
	strategy Strategy
	timeout  time.Duration
}

// New creates a scorer over catalog. The keyword strategy is used unless
// WithStrategy says otherwise.
func New(catalog Catalog, opts ...Option) *Scorer {
	s := &Scorer{
		catalog:  catalog,
		strategy: NewKeywordStrategy(),
		timeout:  defaultTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type outcome struct {
	results []model.MatchResult
	err     error
}

// Score returns one MatchResult per catalog category, sorted by score
// descending with ties broken by category name ascending.
func (s *Scorer) Score(ctx context.Context, description string) ([]model.MatchResult, error) {
	if strings.TrimSpace(description) == "" {
		metrics.RecordScoringError("invalid_input")
		return nil, ErrInvalidInput
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	categories := s.catalog.List()
	start := time.Now()

	done := make(chan outcome, 1)
	go func() {
		res, err := s.strategy.Match(ctx, description, categories)
		done <- outcome{results: res, err: err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		metrics.RecordScoringError("unavailable")
		return nil, fmt.Errorf("%w: %w", ErrScoringUnavailable, ctx.Err())
	case out = <-done:
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)

	if out.err != nil {
		metrics.RecordScoringError("unavailable")
		if errors.Is(out.err, ErrScoringUnavailable) {
			return nil, out.err
		}
		return nil, fmt.Errorf("%w: %w", ErrScoringUnavailable, out.err)
	}

	results, err := validate(categories, out.results)
	if err != nil {
		metrics.RecordScoringError("invalid_score")
		return nil, err
	}
	Sort(results)
	return results, nil
}

// ScoreBatch scores descriptions concurrently with at most limit calls in
// flight (unbounded when limit <= 0). Results keep the input order; the first
// failure cancels the rest.
func (s *Scorer) ScoreBatch(ctx context.Context, descriptions []string, limit int) ([][]model.MatchResult, error) {
	out := make([][]model.MatchResult, len(descriptions))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, d := range descriptions {
		g.Go(func() error {
			res, err := s.Score(gctx, d)
			if err != nil {
				return fmt.Errorf("description %d: %w", i, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Sort orders results by score descending, then category name ascending.
func Sort(results []model.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Category < results[j].Category
	})
}

// validate checks strategy output against the catalog and returns a private
// copy safe to hand to callers.
func validate(categories []model.Category, results []model.MatchResult) ([]model.MatchResult, error) {
	if len(results) != len(categories) {
		return nil, fmt.Errorf("%w: got %d results for %d categories", ErrInvalidScore, len(results), len(categories))
	}

	canonical := make(map[string]map[string]struct{}, len(categories))
	for _, c := range categories {
		related := make(map[string]struct{}, len(c.RelatedSkills))
		for _, r := range c.RelatedSkills {
			related[r] = struct{}{}
		}
		canonical[c.Name] = related
	}

	seen := make(map[string]struct{}, len(results))
	out := make([]model.MatchResult, len(results))
	for i, r := range results {
		related, ok := canonical[r.Category]
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidScore, r.Category)
		}
		if _, dup := seen[r.Category]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidScore, r.Category)
		}
		seen[r.Category] = struct{}{}

		if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 1 {
			return nil, fmt.Errorf("%w: score %v for %q outside [0,1]", ErrInvalidScore, r.Score, r.Category)
		}
		for _, skill := range r.RelatedSkills {
			if _, ok := related[skill]; !ok {
				return nil, fmt.Errorf("%w: %q is not a related skill of %q", ErrInvalidScore, skill, r.Category)
			}
		}

		out[i] = model.MatchResult{
			Category:      r.Category,
			Score:         r.Score,
			RelatedSkills: append([]string{}, r.RelatedSkills...),
		}
	}
	return out, nil
}
