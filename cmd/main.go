// Package main provides the skillcat binary: the categorization HTTP service
// and a few offline scoring commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/skillcat/internal/config"
	"github.com/okian/skillcat/pkg/logger"
)

// Build information, overridden with -ldflags.
var (
	Version   = "0.1.0" //nolint:gochecknoglobals // set at link time
	BuildTime = "dev"   //nolint:gochecknoglobals // set at link time
)

const appName = "skillcat"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds state shared by the subcommands.
type cli struct {
	envFile  string
	logLevel string
	cfg      *config.Config
}

func rootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Skill categorization advisory engine",
		Long: `skillcat scores free-text skill descriptions against a category
taxonomy, proposes the best match and records every human validation or
change in an append-only provenance ledger.

Without a subcommand it runs the HTTP service.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), c.cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(c),
		scoreCmd(c),
		ingestCmd(c),
		loadtestCmd(c),
		versionCmd(),
	)

	return cmd
}

// setup loads configuration (dotenv -> defaults -> file -> env) and
// initializes the global logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if err := config.LoadDotEnv(c.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	return nil
}

func serveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), c.cfg)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}
