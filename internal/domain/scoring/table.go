package scoring

import (
	"context"

	"github.com/okian/skillcat/internal/domain/model"
)

// TableEntry is a fixed score for one category.
type TableEntry struct {
	Score         float64
	RelatedSkills []string
}

// TableStrategy returns the same scores for every description. Categories
// absent from the table score zero; related skills outside the category's
// canonical list are dropped.
type TableStrategy struct {
	table map[string]TableEntry
}

// NewTableStrategy copies table into a new strategy.
func NewTableStrategy(table map[string]TableEntry) *TableStrategy {
	t := &TableStrategy{table: make(map[string]TableEntry, len(table))}
	for name, e := range table {
		e.RelatedSkills = append([]string(nil), e.RelatedSkills...)
		t.table[name] = e
	}
	return t
}

// DefaultTable is the constant table of the dashboard prototype.
func DefaultTable() map[string]TableEntry {
	return map[string]TableEntry{
		"Software Development": {Score: 0.9238654, RelatedSkills: []string{"Java Programming", "Software Architecture"}},
		"Big Data":             {Score: 0.9114384, RelatedSkills: []string{"Hadoop", "Spark"}},
		"Data and Analytics":   {Score: 0.9057195, RelatedSkills: []string{"SQL", "Data Visualization"}},
		"Data Modeling":        {Score: 0.8941223, RelatedSkills: []string{"Database Design", "ERD"}},
		"SAP Basis":            {Score: 0.7046884, RelatedSkills: []string{"SAP Administration", "SAP Security"}},
	}
}

// Match implements Strategy.
func (t *TableStrategy) Match(_ context.Context, _ string, categories []model.Category) ([]model.MatchResult, error) {
	results := make([]model.MatchResult, 0, len(categories))
	for _, c := range categories {
		e := t.table[c.Name]

		canonical := make(map[string]struct{}, len(c.RelatedSkills))
		for _, r := range c.RelatedSkills {
			canonical[r] = struct{}{}
		}
		related := make([]string, 0, len(e.RelatedSkills))
		for _, r := range e.RelatedSkills {
			if _, ok := canonical[r]; ok {
				related = append(related, r)
			}
		}

		results = append(results, model.MatchResult{
			Category:      c.Name,
			Score:         e.Score,
			RelatedSkills: related,
		})
	}
	return results, nil
}
