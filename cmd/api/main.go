package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"smartexpense/internal/config"
	"smartexpense/internal/database"
	"smartexpense/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.EnsureReady(ctx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("database", cfg.DatabaseName).Str("collection", cfg.CollectionName).Msg("Failed to prepare document store")
	}
	log.Info().Str("database", cfg.DatabaseName).Str("collection", cfg.CollectionName).Msg("Connected to document store successfully")

	s := server.NewServer(cfg, db)

	done := make(chan bool, 1)

	go s.GracefulShutdown(done)

	err = s.Start()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
