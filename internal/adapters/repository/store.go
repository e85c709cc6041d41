// Package repository stores skill records.
package repository

import (
	"context"

	"github.com/okian/skillcat/internal/domain/model"
)

// Store provides read/write access to skill records.
type Store interface {
	// Create stores a new record.
	// Returns ErrDuplicateID if the id is taken.
	Create(ctx context.Context, rec model.SkillRecord) error

	// Get returns the record with id.
	// Returns ErrNotFound if the skill is unknown.
	Get(ctx context.Context, id string) (model.SkillRecord, error)

	// Delete removes the record with id.
	// Returns ErrNotFound if the skill is unknown.
	Delete(ctx context.Context, id string) error

	// List returns matching records in insertion order.
	List(ctx context.Context, f model.SkillFilter) ([]model.SkillRecord, error)

	// RunIDs returns the distinct run ids, newest run first.
	RunIDs(ctx context.Context) []string

	// Count returns the number of records.
	Count(ctx context.Context) int
}
