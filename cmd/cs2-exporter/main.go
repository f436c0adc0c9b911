// main is the entry point of the cs2-exporter application.
// It initializes the configuration and logger, binds the metrics endpoint and runs the poller.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/cs2-exporter/internal/config"
	"github.com/woozymasta/cs2-exporter/internal/exporter"
	"github.com/woozymasta/cs2-exporter/internal/fake"
	"github.com/woozymasta/cs2-exporter/internal/game"
	"github.com/woozymasta/cs2-exporter/internal/logger"
	"github.com/woozymasta/cs2-exporter/internal/poller"
	"github.com/woozymasta/cs2-exporter/internal/probe"
	"github.com/woozymasta/cs2-exporter/internal/server"
	"github.com/woozymasta/cs2-exporter/internal/vars"
)

func main() {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)

	querier := newQuerier(cfg)

	// One-shot check
	if ran, up := probe.Run(cfg, querier, os.Stdout); ran {
		if !up {
			os.Exit(1)
		}
		return
	}

	log.Info().Str("version", vars.Version).Msg("Starting cs2-exporter...")

	state := exporter.NewState()
	registry := exporter.NewRegistry(state)

	srv, err := server.New(cfg, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	// Bind before polling so a taken port is fatal up front
	if err := srv.Listen(); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind exporter endpoint")
	}

	go func() {
		if err := srv.Serve(); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target := game.Target{Host: cfg.Target.Host, Port: cfg.Target.Port}
	poller.New(querier, state, target, cfg.Target.Interval, cfg.A2S.Timeout).Run(ctx)

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// newQuerier returns the A2S querier, or the synthetic one when --fake is set.
func newQuerier(cfg *config.Config) game.Querier {
	if cfg.Fake {
		log.Warn().Msg("Using fake querier, metrics are synthetic")
		return fake.New(time.Now().UnixNano())
	}

	return game.NewA2S(cfg.A2S)
}
