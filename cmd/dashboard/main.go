// v2
// cmd/dashboard/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/abixb/severless-data-pipeline-AWS/internal/config"
	"github.com/abixb/severless-data-pipeline-AWS/internal/dashboard"
	"github.com/abixb/severless-data-pipeline-AWS/internal/logging"
)

func main() {
	cfg, err := config.LoadDashboard()
	if err != nil {
		logging.New("").Error("config error", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogPath)
	logger.Info("dashboard starting", "addr", cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := dashboard.NewStore(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("store init failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	var cache *dashboard.Cache
	if cfg.RedisAddr != "" {
		cache, err = dashboard.NewCache(ctx, logger, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			logger.Error("cache init failed", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer cache.Close()
		logger.Info("response cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      dashboard.NewServer(logger, store, cache, cfg).Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		logger.Info("http listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
	logger.Info("shutdown complete")
}
