package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/pkg/metrics"
)

// MemoryStore is an in-memory Store. Records are kept in insertion order
// with an id index for O(1) lookups.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	records  []model.SkillRecord
	byID     map[string]int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: 64}
	for _, opt := range opts {
		opt(s)
	}
	s.records = make([]model.SkillRecord, 0, s.capacity)
	s.byID = make(map[string]int, s.capacity)
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, rec model.SkillRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.Description) == "" {
		return fmt.Errorf("%w: empty description", ErrInvalidRecord)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.ID]; exists {
		metrics.RecordErrorByComponent("repository", "duplicate_id")
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (model.SkillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.SkillRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[i], nil
}

// Delete implements Store. Later records keep their relative order.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.byID, id)
	for j := i; j < len(s.records); j++ {
		s.byID[s.records[j].ID] = j
	}
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, f model.SkillFilter) ([]model.SkillRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SkillRecord, 0, len(s.records))
	for _, rec := range s.records {
		if f.RunID != "" && rec.RunID != f.RunID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Name), search) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// RunIDs implements Store. Runs are ordered by their latest record.
func (s *MemoryStore) RunIDs(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for i := len(s.records) - 1; i >= 0; i-- {
		run := s.records[i].RunID
		if run == "" {
			continue
		}
		if _, ok := seen[run]; ok {
			continue
		}
		seen[run] = struct{}{}
		out = append(out, run)
	}
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
