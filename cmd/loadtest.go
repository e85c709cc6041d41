package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/skillcat/internal/loadgen"
)

// Load run defaults.
const (
	defaultLoadSkills  = 1000
	defaultLoadTimeout = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func loadtestCmd(c *cli) *cobra.Command {
	cfg := &loadgen.Config{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit generated skills to a running service and verify them",
		Long: `Generates skill descriptions from the configured taxonomy, submits them
concurrently to POST /skills and checks that every accepted skill is listed
under its run with the proposed category.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := newCatalog(c.cfg)
			if err != nil {
				return err
			}
			cfg.Categories = cat.List()
			if cfg.Seed == 0 {
				cfg.Seed = uint64(time.Now().UnixNano()) //nolint:gosec // non-negative
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()

			stats, err := loadgen.Run(ctx, cfg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"run %q: %d submitted, %d accepted, %d duplicate, %d failed, agreement %.2f in %s\n",
				stats.RunID, stats.Submitted, stats.Successful, stats.Duplicate, stats.Failed,
				stats.Agreement, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.NumSkills, "skills", defaultLoadSkills, "number of skills to generate and submit")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", defaultLoadTimeout, "HTTP request timeout")
	f.StringVar(&cfg.OutputFile, "output", "", "write the generated sheet to this CSV file")
	f.Uint64Var(&cfg.Seed, "seed", 0, "generator seed (0 picks one)")
	return cmd
}
