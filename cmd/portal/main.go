package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pickspot/vendor-portal/api/pages"
	"github.com/pickspot/vendor-portal/api/routes"
	"github.com/pickspot/vendor-portal/internal/session"
	"github.com/pickspot/vendor-portal/internal/upstream"
	"github.com/pickspot/vendor-portal/pkg/config"
	"github.com/pickspot/vendor-portal/pkg/logger"
	"github.com/pickspot/vendor-portal/pkg/metrics"
	"github.com/pickspot/vendor-portal/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "portal"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "portal",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sessionMetrics := metrics.NewSessionMetrics(registry)

	upstreamClient := upstream.NewClient(cfg.Upstream, logg, sessionMetrics)
	coordinator := session.NewCoordinator(
		upstream.NewRefreshClient(upstreamClient, cfg.Cookie),
		cfg.Session,
		logg,
		sessionMetrics,
	)

	renderer, err := pages.New(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to load page templates", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go coordinator.AutoRefresh(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(logCtx, "starting portal server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			upstreamClient,
			coordinator,
			renderer,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(logCtx, "portal server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down portal server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}
