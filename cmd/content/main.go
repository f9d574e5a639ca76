package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/config"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/database"
	"github.com/pulseboard/pulseboard/backend/go-services/internal/server"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/logger"
	"github.com/pulseboard/pulseboard/backend/go-services/pkg/metrics"
)

// Standalone content proxy: /content/* plus ops endpoints, no accounts or state.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	port := os.Getenv("CONTENT_SERVICE_PORT")
	if port == "" {
		port = "5002"
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	rdb, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warnf("Redis unavailable, continuing without it: %v", err)
	}
	checks := map[string]server.Check{}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	srv := &http.Server{
		Addr: ":" + port,
		Handler: server.NewRouter(server.Deps{
			Config:  cfg,
			Content: server.NewContentService(cfg, rdb),
			Redis:   rdb,
			Checks:  checks,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("content service listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
