// Package main is the entry point for the order ticket prefill service.
//
// On startup it opens the prefill and audit databases, loads the rule set
// (built-in defaults, optional YAML file, then rule_config overrides), starts
// the maintenance scheduler and the optional market snapshot feed, and serves
// the HTTP API until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aristath/prefill/internal/config"
	"github.com/aristath/prefill/internal/di"
	"github.com/aristath/prefill/internal/server"
	"github.com/aristath/prefill/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger so the configuration error itself gets logged
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("session_open", cfg.Session.Open.String()).
		Str("session_close", cfg.Session.Close.String()).
		Msg("Starting prefill service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	container.Scheduler.Start()

	var wg sync.WaitGroup
	if container.MarketFeed != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := container.MarketFeed.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Market feed stopped")
			}
		}()
	}

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Databases: container.Databases(),
		Modules:   container.Routes,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stops the market feed
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	container.Scheduler.Stop()
	wg.Wait()

	log.Info().Msg("Server stopped")
}
