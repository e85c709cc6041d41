// Package provenance keeps the append-only history of category assignments.
package provenance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/pkg/metrics"
)

// Ledger records proposals and human decisions per skill.
type Ledger interface {
	// Propose appends the initial Algorithm entry for a skill.
	// Returns ErrDuplicateProposal if the skill already has one.
	Propose(ctx context.Context, skillID, category string, ts time.Time) (model.ProvenanceEntry, error)

	// RecordDecision appends a human Changed or Validated entry. The skill
	// must have a proposal and ts must be strictly later than its latest entry.
	RecordDecision(ctx context.Context, skillID, category, actor string, action model.Action, ts time.Time) (model.ProvenanceEntry, error)

	// Decide appends a human entry and picks its action atomically with the
	// append: Validated when category equals the current one, Changed
	// otherwise. Same preconditions as RecordDecision.
	Decide(ctx context.Context, skillID, category, actor string, ts time.Time) (model.ProvenanceEntry, error)

	// History returns the entries of a skill oldest first; empty when unknown.
	History(ctx context.Context, skillID string) []model.ProvenanceEntry

	// CurrentCategory returns the category of the newest entry.
	// Returns ErrUnknownSkill if the skill has no entries.
	CurrentCategory(ctx context.Context, skillID string) (string, error)

	// Snapshot returns a copy of every skill's history.
	Snapshot(ctx context.Context) map[string][]model.ProvenanceEntry

	// Len returns the number of skills with a ledger.
	Len(ctx context.Context) int
}

// trail is the history of a single skill. Its lock serializes writers for
// that skill only.
type trail struct {
	mu      sync.RWMutex
	entries []model.ProvenanceEntry
}

// MemoryLedger is an in-memory Ledger.
type MemoryLedger struct {
	mu     sync.RWMutex
	trails map[string]*trail
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{trails: make(map[string]*trail)}
}

func (l *MemoryLedger) lookup(skillID string) (*trail, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.trails[skillID]
	return t, ok
}

// Propose implements Ledger.
func (l *MemoryLedger) Propose(ctx context.Context, skillID, category string, ts time.Time) (model.ProvenanceEntry, error) {
	if err := ctx.Err(); err != nil {
		return model.ProvenanceEntry{}, err
	}

	entry := model.ProvenanceEntry{
		SkillID:   skillID,
		Timestamp: ts,
		Actor:     model.AlgorithmActor,
		Category:  category,
		Action:    model.ActionProposed,
	}

	l.mu.Lock()
	if _, exists := l.trails[skillID]; exists {
		l.mu.Unlock()
		metrics.RecordLedgerRejection("duplicate_proposal")
		return model.ProvenanceEntry{}, fmt.Errorf("%w: %s", ErrDuplicateProposal, skillID)
	}
	l.trails[skillID] = &trail{entries: []model.ProvenanceEntry{entry}}
	count := len(l.trails)
	l.mu.Unlock()

	metrics.RecordProposal()
	metrics.UpdateSkillsTotal(count)
	return entry, nil
}

// RecordDecision implements Ledger.
func (l *MemoryLedger) RecordDecision(ctx context.Context, skillID, category, actor string, action model.Action, ts time.Time) (model.ProvenanceEntry, error) {
	if !action.IsDecision() {
		metrics.RecordLedgerRejection("invalid_action")
		return model.ProvenanceEntry{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return l.appendDecision(ctx, skillID, category, actor, ts, func(string) model.Action { return action })
}

// Decide implements Ledger.
func (l *MemoryLedger) Decide(ctx context.Context, skillID, category, actor string, ts time.Time) (model.ProvenanceEntry, error) {
	return l.appendDecision(ctx, skillID, category, actor, ts, func(current string) model.Action {
		if current == category {
			return model.ActionValidated
		}
		return model.ActionChanged
	})
}

// appendDecision appends a human entry whose action is derived from the
// current category while the skill's lock is held.
func (l *MemoryLedger) appendDecision(ctx context.Context, skillID, category, actor string, ts time.Time, actionFor func(current string) model.Action) (model.ProvenanceEntry, error) {
	if err := ctx.Err(); err != nil {
		return model.ProvenanceEntry{}, err
	}
	actor = strings.TrimSpace(actor)
	if actor == "" || actor == model.AlgorithmActor {
		metrics.RecordLedgerRejection("invalid_actor")
		return model.ProvenanceEntry{}, fmt.Errorf("%w: %q", ErrInvalidActor, actor)
	}

	t, ok := l.lookup(skillID)
	if !ok {
		metrics.RecordLedgerRejection("unknown_skill")
		return model.ProvenanceEntry{}, fmt.Errorf("%w: %s", ErrUnknownSkill, skillID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	latest := t.entries[len(t.entries)-1]
	if !ts.After(latest.Timestamp) {
		metrics.RecordLedgerRejection("invalid_transition")
		return model.ProvenanceEntry{}, fmt.Errorf("%w: %s at %s, latest %s",
			ErrInvalidTransition, skillID, ts.Format(time.RFC3339Nano), latest.Timestamp.Format(time.RFC3339Nano))
	}

	entry := model.ProvenanceEntry{
		SkillID:   skillID,
		Timestamp: ts,
		Actor:     actor,
		Category:  category,
		Action:    actionFor(latest.Category),
	}
	t.entries = append(t.entries, entry)

	metrics.RecordDecision(string(entry.Action))
	return entry, nil
}

// History implements Ledger.
func (l *MemoryLedger) History(_ context.Context, skillID string) []model.ProvenanceEntry {
	t, ok := l.lookup(skillID)
	if !ok {
		return []model.ProvenanceEntry{}
	}
	return t.copyEntries()
}

// CurrentCategory implements Ledger.
func (l *MemoryLedger) CurrentCategory(_ context.Context, skillID string) (string, error) {
	t, ok := l.lookup(skillID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSkill, skillID)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[len(t.entries)-1].Category, nil
}

// Snapshot implements Ledger. Each skill's history is copied under its own
// lock, so every copy is internally consistent.
func (l *MemoryLedger) Snapshot(_ context.Context) map[string][]model.ProvenanceEntry {
	l.mu.RLock()
	trails := make(map[string]*trail, len(l.trails))
	for id, t := range l.trails {
		trails[id] = t
	}
	l.mu.RUnlock()

	out := make(map[string][]model.ProvenanceEntry, len(trails))
	for id, t := range trails {
		out[id] = t.copyEntries()
	}
	return out
}

// Len implements Ledger.
func (l *MemoryLedger) Len(_ context.Context) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trails)
}

func (t *trail) copyEntries() []model.ProvenanceEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.ProvenanceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
