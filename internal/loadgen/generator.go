package loadgen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

var templates = []string{ //nolint:gochecknoglobals // read-only
	"Built and maintained production systems using %s and %s",
	"Led a team delivering %s work, with day to day use of %s",
	"Three years of hands-on %s experience alongside %s",
	"Migrated legacy workloads to %s and introduced %s practices",
}

// Generate draws n skills from categories. Each description names two
// related skills of one category, which is kept as the skill's source.
// The same seed and run id always give the same sheet.
func Generate(cfg *Config, runID string) ([]Skill, error) {
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("generate: no categories")
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(cfg.NumSkills))) //nolint:gosec // load data, not secrets

	skills := make([]Skill, cfg.NumSkills)
	for i := range skills {
		cat := cfg.Categories[rng.IntN(len(cfg.Categories))]
		first, second := cat.Name, cat.Name
		if n := len(cat.RelatedSkills); n > 0 {
			first = cat.RelatedSkills[rng.IntN(n)]
			second = cat.RelatedSkills[rng.IntN(n)]
		}
		tmpl := templates[rng.IntN(len(templates))]
		skills[i] = Skill{
			ID:          uuid.NewSHA1(uuid.NameSpaceURL, []byte(runID+"/"+strconv.Itoa(i))).String(),
			Name:        first,
			Description: fmt.Sprintf(tmpl, first, second),
			RunID:       runID,
			Source:      cat.Name,
		}
	}
	return skills, nil
}

// WriteCSV writes skills as a sheet the upload endpoint accepts.
func WriteCSV(w io.Writer, skills []Skill) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "description"}); err != nil {
		return err
	}
	for _, s := range skills {
		if err := cw.Write([]string{s.ID, s.Name, s.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
