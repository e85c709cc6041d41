// Package catalog holds the fixed taxonomy of skill categories.
package catalog

import (
	"fmt"
	"strings"

	"github.com/okian/skillcat/internal/domain/model"
)

// Catalog is an immutable, ordered registry of categories. It never mutates
// after construction, so concurrent readers need no locking.
type Catalog struct {
	categories []model.Category
	byName     map[string]int
}

// New builds a catalog preserving the given order. Names must be non-empty
// and unique.
func New(categories ...model.Category) (*Catalog, error) {
	c := &Catalog{
		categories: make([]model.Category, 0, len(categories)),
		byName:     make(map[string]int, len(categories)),
	}
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrInvalidCatalog)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, name)
		}
		cat.Name = name
		cat.RelatedSkills = append([]string(nil), cat.RelatedSkills...)
		c.byName[name] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// List returns the categories in configuration order.
func (c *Catalog) List() []model.Category {
	out := make([]model.Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = clone(cat)
	}
	return out
}

// Get returns the category named name.
func (c *Catalog) Get(name string) (model.Category, error) {
	i, ok := c.byName[name]
	if !ok {
		return model.Category{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return clone(c.categories[i]), nil
}

// Contains reports whether name is a known category.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Len returns the number of categories.
func (c *Catalog) Len() int { return len(c.categories) }

func clone(cat model.Category) model.Category {
	cat.RelatedSkills = append([]string(nil), cat.RelatedSkills...)
	return cat
}
