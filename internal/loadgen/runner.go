package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/internal/domain/types"
	"github.com/okian/skillcat/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes a complete load run: health check, generation, concurrent
// submission and verification against the skill listing.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}
	stats.RunID = "loadgen " + stats.StartTime.UTC().Format(time.RFC3339Nano)

	log.Info(ctx, "starting skillcat load run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("skills", cfg.NumSkills),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.String("run_id", stats.RunID))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	if err := checkHealth(ctx, c); err != nil {
		return stats, err
	}

	skills, err := Generate(cfg, stats.RunID)
	if err != nil {
		return stats, err
	}
	stats.Generated = len(skills)

	if cfg.OutputFile != "" {
		if err := saveSheet(cfg.OutputFile, skills); err != nil {
			log.Warn(ctx, "failed to save generated sheet", logger.Error(err))
		} else {
			log.Info(ctx, "generated sheet saved", logger.String("file", cfg.OutputFile))
		}
	}

	proposals, err := submitSkills(ctx, cfg, c, skills, stats)
	if err != nil {
		return stats, fmt.Errorf("submit skills: %w", err)
	}

	if err := verify(ctx, c, skills, proposals, stats); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats)
	return stats, nil
}

func checkHealth(ctx context.Context, c *client) error {
	code, err := c.get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, code)
	}
	return nil
}

// verify lists the run and checks that every accepted skill is there,
// unreviewed, with the category it was proposed on submission.
func verify(ctx context.Context, c *client, skills []Skill, proposals map[string]string, stats *Stats) error {
	var list types.SkillList
	code, err := c.get(ctx, "/skills?run_id="+url.QueryEscape(stats.RunID), &list)
	if err != nil {
		return fmt.Errorf("list skills: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: list skills status %d", ErrVerification, code)
	}
	stats.Listed = len(list.Skills)
	if stats.Listed != len(proposals) {
		return fmt.Errorf("%w: listed %d skills, accepted %d", ErrVerification, stats.Listed, len(proposals))
	}

	for _, item := range list.Skills {
		want, ok := proposals[item.ID]
		if !ok {
			return fmt.Errorf("%w: unexpected skill %s in run", ErrVerification, item.ID)
		}
		if item.State != model.StateUnreviewed || item.CurrentCategory != want {
			return fmt.Errorf("%w: skill %s is %s/%q, want %s/%q",
				ErrVerification, item.ID, item.State, item.CurrentCategory, model.StateUnreviewed, want)
		}
	}

	agreed := 0
	for _, s := range skills {
		if cat, ok := proposals[s.ID]; ok && cat == s.Source {
			agreed++
		}
	}
	if len(proposals) > 0 {
		stats.Agreement = float64(agreed) / float64(len(proposals))
	}
	return nil
}

func saveSheet(path string, skills []Skill) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := WriteCSV(f, skills); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("listed", stats.Listed),
		logger.Float64("agreement", stats.Agreement),
		logger.Duration("duration", stats.Duration),
		logger.Float64("skills_per_second", perSecond))
}
