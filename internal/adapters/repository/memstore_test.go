package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/skillcat/internal/domain/model"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore(WithCapacity(4))
	recs := []model.SkillRecord{
		{ID: "1", Name: "React.js Development", Description: "Built SPAs with React", RunID: "run-1"},
		{ID: "2", Name: "Tableau Dashboard Creation", Description: "Dashboards in Tableau", RunID: "run-2"},
		{ID: "3", Name: "Apache Spark Processing", Description: "Spark pipelines", RunID: "run-2"},
	}
	for _, r := range recs {
		if err := s.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", r.ID, err)
		}
	}
	return s
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	if n := s.Count(ctx); n != 3 {
		t.Errorf("expected count 3, got %d", n)
	}

	rec, err := s.Get(ctx, "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "Tableau Dashboard Creation" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be stamped")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_CreateValidation(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	if err := s.Create(ctx, model.SkillRecord{ID: "1", Description: "again"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if err := s.Create(ctx, model.SkillRecord{ID: "", Description: "x"}); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord for empty id, got %v", err)
	}
	if err := s.Create(ctx, model.SkillRecord{ID: "9", Description: "   "}); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord for blank description, got %v", err)
	}
	if n := s.Count(ctx); n != 3 {
		t.Errorf("failed creates must not store anything, count %d", n)
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	tests := []struct {
		name   string
		filter model.SkillFilter
		want   []string
	}{
		{"all", model.SkillFilter{}, []string{"1", "2", "3"}},
		{"run", model.SkillFilter{RunID: "run-2"}, []string{"2", "3"}},
		{"search case-insensitive", model.SkillFilter{Search: "SPARK"}, []string{"3"}},
		{"search and run", model.SkillFilter{RunID: "run-1", Search: "dashboard"}, nil},
		{"search substring", model.SkillFilter{Search: "d"}, []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if fmt.Sprint(ids) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, ids)
			}
		})
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	if err := s.Delete(ctx, "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, "2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	rec, err := s.Get(ctx, "3")
	if err != nil || rec.Name != "Apache Spark Processing" {
		t.Errorf("later record must stay reachable, got %+v, %v", rec, err)
	}
	got, _ := s.List(ctx, model.SkillFilter{})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("unexpected records after delete: %+v", got)
	}
	if err := s.Delete(ctx, "2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := s.Create(ctx, model.SkillRecord{ID: "2", Description: "again"}); err != nil {
		t.Errorf("a deleted id must be reusable: %v", err)
	}
}

func TestMemoryStore_RunIDs(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	got := s.RunIDs(ctx)
	if fmt.Sprint(got) != fmt.Sprint([]string{"run-2", "run-1"}) {
		t.Errorf("unexpected run ids: %v", got)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("w%d-%d", worker, j)
				if err := s.Create(ctx, model.SkillRecord{ID: id, Description: "d"}); err != nil {
					t.Errorf("create %s: %v", id, err)
				}
				_, _ = s.List(ctx, model.SkillFilter{Search: "x"})
			}
		}(i)
	}
	wg.Wait()

	if n := s.Count(ctx); n != 1000 {
		t.Errorf("expected 1000 records, got %d", n)
	}
}
