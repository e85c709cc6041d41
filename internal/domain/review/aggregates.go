package review

import (
	"context"
	"sort"
	"time"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/pkg/metrics"
)

// CategoryCount is the number of skills currently in a category.
type CategoryCount struct {
	Category string
	Count    int
}

// TrendPoint is the running accuracy after the skill proposed at Timestamp.
type TrendPoint struct {
	Timestamp time.Time
	Accuracy  float64
}

// Summary aggregates the whole ledger at one instant.
type Summary struct {
	Total          int // skills with a ledger
	Reviewed       int // skills with at least one human decision
	Pending        int
	Changed        int // reviewed skills whose category was ever changed
	ValidationRate float64
	AccuracyRate   float64
	Distribution   []CategoryCount
	// Activity holds human decisions, newest first.
	Activity []model.ProvenanceEntry
	// AccuracyTrend has one point per skill in proposal order: the share of
	// skills so far that were never changed, pending ones included.
	AccuracyTrend []TrendPoint
}

// ValidationRate is the share of skills with at least one human decision.
// Zero when no skill has a ledger.
func (s *Session) ValidationRate(ctx context.Context) float64 {
	return summarize(s.ledger.Snapshot(ctx), nil, 0).ValidationRate
}

// AccuracyRate is the share of reviewed skills that were never changed.
// Zero when nothing has been reviewed.
func (s *Session) AccuracyRate(ctx context.Context) float64 {
	return summarize(s.ledger.Snapshot(ctx), nil, 0).AccuracyRate
}

// Summary computes every dashboard aggregate from one ledger snapshot.
// activityLimit caps the activity timeline; zero or less keeps it all.
func (s *Session) Summary(ctx context.Context, activityLimit int) Summary {
	sum := summarize(s.ledger.Snapshot(ctx), s.catalog.List(), activityLimit)
	metrics.UpdateSkillsTotal(sum.Total)
	metrics.UpdateRates(sum.ValidationRate, sum.AccuracyRate)
	return sum
}

func summarize(snapshot map[string][]model.ProvenanceEntry, categories []model.Category, activityLimit int) Summary {
	sum := Summary{Total: len(snapshot)}
	counts := make(map[string]int, len(categories))
	proposals := make([]proposed, 0, len(snapshot))

	for id, history := range snapshot {
		if len(history) == 0 {
			continue
		}
		counts[history[len(history)-1].Category]++

		changed := false
		for _, e := range history[1:] {
			if e.Action == model.ActionChanged {
				changed = true
			}
			if e.Action.IsDecision() {
				sum.Activity = append(sum.Activity, e)
			}
		}
		proposals = append(proposals, proposed{skillID: id, at: history[0].Timestamp, accurate: !changed})

		if len(history) < 2 {
			continue
		}
		sum.Reviewed++
		if changed {
			sum.Changed++
		}
	}
	sum.AccuracyTrend = accuracyTrend(proposals)
	sum.Pending = sum.Total - sum.Reviewed

	if sum.Total > 0 {
		sum.ValidationRate = float64(sum.Reviewed) / float64(sum.Total)
	}
	if sum.Reviewed > 0 {
		sum.AccuracyRate = float64(sum.Reviewed-sum.Changed) / float64(sum.Reviewed)
	}

	// Catalog order first, then anything the ledger holds outside it.
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[c.Name] = struct{}{}
		sum.Distribution = append(sum.Distribution, CategoryCount{Category: c.Name, Count: counts[c.Name]})
	}
	var extra []string
	for name := range counts {
		if _, ok := known[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		sum.Distribution = append(sum.Distribution, CategoryCount{Category: name, Count: counts[name]})
	}

	sort.Slice(sum.Activity, func(i, j int) bool {
		a, b := sum.Activity[i], sum.Activity[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.SkillID < b.SkillID
	})
	if activityLimit > 0 && len(sum.Activity) > activityLimit {
		sum.Activity = sum.Activity[:activityLimit]
	}
	return sum
}

type proposed struct {
	skillID  string
	at       time.Time
	accurate bool
}

func accuracyTrend(proposals []proposed) []TrendPoint {
	sort.Slice(proposals, func(i, j int) bool {
		a, b := proposals[i], proposals[j]
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.skillID < b.skillID
	})

	trend := make([]TrendPoint, 0, len(proposals))
	accurate := 0
	for i, p := range proposals {
		if p.accurate {
			accurate++
		}
		trend = append(trend, TrendPoint{Timestamp: p.at, Accuracy: float64(accurate) / float64(i+1)})
	}
	return trend
}
