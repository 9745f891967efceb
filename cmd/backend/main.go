package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"cdn/internal/app"
	"cdn/internal/config"
	"cdn/internal/db"
	"cdn/internal/logger"
	"cdn/internal/server"
	"cdn/internal/session"
	"cdn/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet; use the default.
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init(loggerOptions(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	// Postgres, then Redis; either failure stops startup.
	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer func() { _ = a.Close() }()

	log.Info().Msg("running migrations")
	if err := db.RunMigrations(ctx, a.DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("migrations complete")

	sessions := session.NewManager(
		session.NewRedisStore(a.Redis, cfg.Session.MaxAge),
		session.CookieOptions{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.Secure,
		},
	)

	srv := server.New(serverConfig(cfg), a, sessions, log.Logger)

	// Start the HTTP server in a background goroutine.
	// This allows us to wait for OS signals while the server runs.
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("version", cfg.Version).
			Str("commit", cfg.Commit).
			Msg("starting")
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		// Give the server 5 seconds to finish in-flight requests.
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
			return
		}
		log.Info().Msg("shutdown complete")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}
}

func loggerOptions(cfg config.Config) logger.Options {
	return logger.Options{
		Level: cfg.LogLevel,
		JSON:  cfg.LogFormat == "json" || (cfg.LogFormat == "" && cfg.Production()),
	}
}

func serverConfig(cfg config.Config) server.Config {
	return server.Config{
		Addr:         cfg.Addr,
		Version:      cfg.Version,
		Links:        cfg.Links,
		CORSOrigins:  cfg.CORSOrigins,
		APIRateLimit: cfg.APIRateLimit,
		HSTS:         cfg.Production() && cfg.Session.Secure,
	}
}
