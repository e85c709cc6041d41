package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/skillcat/internal/adapters/ingest"
	"github.com/okian/skillcat/internal/domain/model"
)

const defaultConcurrency = 8

func scoreCmd(c *cli) *cobra.Command {
	var (
		asJSON bool
		top    int
	)

	cmd := &cobra.Command{
		Use:   "score <description>...",
		Short: "Rank every category for one or more descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scorer, err := newScorer(c.cfg)
			if err != nil {
				return err
			}
			results, err := scorer.ScoreBatch(cmd.Context(), args, defaultConcurrency)
			if err != nil {
				return err
			}
			for i := range results {
				if top > 0 && len(results[i]) > top {
					results[i] = results[i][:top]
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for i, matches := range results {
				if len(args) > 1 {
					_, _ = fmt.Fprintf(out, "# %s\n", args[i])
				}
				writeMatches(out, matches)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().IntVar(&top, "top", 0, "print only the best N matches (0 prints all)")
	return cmd
}

func ingestCmd(c *cli) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Propose a category for every row of a skill sheet",
		Long: `Reads a CSV sheet with a description column (and optional name and id
columns), scores every row concurrently and prints the proposed category.
Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open sheet: %w", err)
			}
			defer func() { _ = f.Close() }()

			parsed, err := ingest.ParseCSV(f, ingest.Options{MaxRows: c.cfg.MaxUploadRows})
			if err != nil {
				return err
			}

			scorer, err := newScorer(c.cfg)
			if err != nil {
				return err
			}
			descriptions := make([]string, len(parsed.Submissions))
			for i, s := range parsed.Submissions {
				descriptions[i] = s.Description
			}
			results, err := scorer.ScoreBatch(cmd.Context(), descriptions, concurrency)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSCORE\tRELATED")
			for i, s := range parsed.Submissions {
				best := results[i][0]
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%s\n",
					s.ID, s.Name, best.Category, best.Score, strings.Join(best.RelatedSkills, ", "))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, row := range parsed.Skipped {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped line %d: %s\n", row.Line, row.Reason)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "scoring calls in flight")
	return cmd
}

// writeMatches prints one ranked table.
func writeMatches(w io.Writer, matches []model.MatchResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tSCORE\tRELATED")
	for _, m := range matches {
		_, _ = fmt.Fprintf(tw, "%s\t%.4f\t%s\n", m.Category, m.Score, strings.Join(m.RelatedSkills, ", "))
	}
	_ = tw.Flush()
}
