// Package main is the entry point for the analytics API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"sgjobs-insights/internal/api"
	"sgjobs-insights/internal/config"
	"sgjobs-insights/internal/engine"
	"sgjobs-insights/internal/history"
	"sgjobs-insights/internal/middleware"
	"sgjobs-insights/internal/schema"
	"sgjobs-insights/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	cands, err := schema.LoadCandidates(cfg.CandidatePath)
	if err != nil {
		return err
	}

	jobsDB, err := engine.OpenReadOnly(cfg.JobsDBPath)
	if err != nil {
		return err
	}
	defer jobsDB.Close()
	log.Info("job-postings database opened", "path", cfg.JobsDBPath)

	histDB, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer histDB.Close()

	insights := service.NewInsights(
		engine.NewExecutor(jobsDB),
		service.NewCaches(cfg.SchemaTTL, cfg.ResultTTL),
		schema.DefaultTables(),
		cands,
		history.NewRepository(histDB),
		log,
	)

	// Fail fast when the data contract is broken: no query can be formed
	// without a valid plan.
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	plan, err := insights.Plan(startupCtx)
	cancel()
	if err != nil {
		return err
	}
	log.Info("query plan resolved",
		"base_key", plan.BaseKey,
		"enriched_joined", plan.EnrichedJoined(),
		"categories_joined", plan.CategoriesJoined(),
		"raw_fallback", plan.NeedsRawJoin(),
		"has_status", plan.HasStatus(),
		"has_category", plan.HasCategory(),
	)

	// Scheduled cache maintenance.
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.SweepSchedule, insights.SweepCaches); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(insights, api.Defaults{
		CapPercentile: cfg.DefaultPercentile,
		BinCount:      cfg.DefaultBinCount,
		MaxSampleRows: cfg.MaxSampleRows,
	})

	router := handler.Routes()
	var root http.Handler = router
	root = middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})(root)
	root = cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	})(root)
	root = middleware.AccessLog(log)(root)
	root = middleware.RequestID(root)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
