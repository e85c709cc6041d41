package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/skillcat/internal/adapters/http/api"
	"github.com/okian/skillcat/internal/adapters/http/site"
	"github.com/okian/skillcat/internal/adapters/http/swagger"
	app "github.com/okian/skillcat/internal/app"
	"github.com/okian/skillcat/internal/config"
	"github.com/okian/skillcat/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

// newService builds the categorization service from configuration.
func newService(cfg *config.Config, l logger.Logger) (*app.Service, error) {
	c, err := newCatalog(cfg)
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(l),
		app.WithCatalog(c),
		app.WithStrategy(cfg.ScoringStrategy, newStrategy(cfg)),
		app.WithScoringTimeout(cfg.ScoringTimeout()),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxUploadRows(cfg.MaxUploadRows),
		app.WithActivityLimit(cfg.ActivityLimit),
		app.WithSeedDemo(cfg.SeedDemo),
	), nil
}

// newHandler registers the landing page, API docs and business routes for svc.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxUploadBytes(cfg.MaxUploadBytes)).Register(ctx, mux)
	return mux
}

// serve runs the HTTP service until ctx is cancelled, then drains the
// ingestion queue within the shutdown timeout.
func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		refreshServiceMetrics(gctx, svc)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("stop service: %w", err)
		}
		log.Info(shutdownCtx, "server stopped")
		return nil
	})

	return g.Wait()
}

// refreshServiceMetrics keeps the queue and dashboard gauges current between
// requests.
func refreshServiceMetrics(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
			_ = svc.Summary(ctx)
		}
	}
}
