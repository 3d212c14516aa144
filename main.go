package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := NewAPIConfig(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.logger.Debug("configuration loaded")

	var warmer *Warmer
	if cfg.cache != nil && cfg.warmInterval > 0 {
		warmer = NewWarmer(cfg, cfg.warmInterval, cfg.warmLocations)
		cfg.logger.Info("starting cache warmer", "interval", cfg.warmInterval.String(), "locations", len(cfg.warmLocations))
		warmer.Start()
	}

	server := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           cfg.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		cfg.logger.Info("starting server", "port", cfg.port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		cfg.logger.Error("server startup failed", "error", err)
		os.Exit(1)
	case sig := <-quit:
		cfg.logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		cfg.logger.Error("server forced to shutdown", "error", err)
	}
	if warmer != nil {
		warmer.Stop()
	}
	if cfg.redisClient != nil {
		if err := cfg.redisClient.Close(); err != nil {
			cfg.logger.Warn("error closing cache client", "error", err)
		}
	}
	cfg.logger.Info("server exited")
}
