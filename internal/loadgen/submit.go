package loadgen

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/okian/skillcat/internal/domain/types"
	"github.com/okian/skillcat/pkg/logger"
)

// submitSkills posts every skill to /skills with at most cfg.Workers requests
// in flight and returns the proposed category per accepted skill id.
func submitSkills(ctx context.Context, cfg *Config, c *client, skills []Skill, stats *Stats) (map[string]string, error) {
	log := logger.Get().Named("loadgen")
	log.Info(ctx, "submitting skills", logger.Int("skills", len(skills)), logger.Int("workers", cfg.Workers))

	var (
		submitted, successful, duplicate, failed atomic.Int64

		mu        sync.Mutex
		proposals = make(map[string]string, len(skills))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, s := range skills {
		g.Go(func() error {
			in := types.SkillInput{ID: s.ID, Name: s.Name, Description: s.Description, RunID: s.RunID}
			var out types.Ingested
			code, err := c.postJSON(gctx, "/skills", in, &out)
			submitted.Add(1)
			switch {
			case err != nil:
				failed.Add(1)
				log.Debug(gctx, "submit failed", logger.String("skill_id", s.ID), logger.Error(err))
			case code == http.StatusCreated:
				successful.Add(1)
				mu.Lock()
				proposals[s.ID] = out.Proposal.Category
				mu.Unlock()
			case code == http.StatusConflict:
				duplicate.Add(1)
			default:
				failed.Add(1)
				log.Debug(gctx, "submit rejected", logger.String("skill_id", s.ID), logger.Int("status", code))
			}
			return gctx.Err()
		})
	}
	err := g.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Successful = int(successful.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "skill submission completed",
		logger.Int("successful", stats.Successful),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))
	return proposals, err
}
