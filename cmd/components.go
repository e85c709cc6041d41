package main

import (
	"fmt"
	"strings"

	"github.com/okian/skillcat/internal/config"
	"github.com/okian/skillcat/internal/domain/catalog"
	"github.com/okian/skillcat/internal/domain/scoring"
)

// newCatalog loads the configured taxonomy or the built-in one.
func newCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// newStrategy builds the configured scoring strategy. The table strategy
// uses score_table when set and the built-in table otherwise.
func newStrategy(cfg *config.Config) scoring.Strategy {
	if cfg.ScoringStrategy != config.StrategyTable {
		return scoring.NewKeywordStrategy()
	}
	if len(cfg.ScoreTable) == 0 {
		return scoring.NewTableStrategy(scoring.DefaultTable())
	}
	table := make(map[string]scoring.TableEntry, len(cfg.ScoreTable))
	for name, e := range cfg.ScoreTable {
		table[name] = scoring.TableEntry{Score: e.Score, RelatedSkills: e.RelatedSkills}
	}
	return scoring.NewTableStrategy(table)
}

// newScorer builds a standalone scorer for the offline commands.
func newScorer(cfg *config.Config) (*scoring.Scorer, error) {
	c, err := newCatalog(cfg)
	if err != nil {
		return nil, err
	}
	return scoring.New(c,
		scoring.WithStrategy(newStrategy(cfg)),
		scoring.WithTimeout(cfg.ScoringTimeout()),
	), nil
}
