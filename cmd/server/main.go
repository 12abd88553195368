package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/AlexTLDR/invitations/internal/config"
	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/logging"
	"github.com/AlexTLDR/invitations/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run() (err error) {
	// Load .env file (ignore error if the file doesn't exist)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, logCloser := logging.New(cfg)
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBConnectAttempts)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	logger.Info().Str("driver", cfg.DatabaseDriver).Msg("database connected")

	if err := db.Migrate(ctx, logger); err != nil {
		return err
	}

	srv := server.New(cfg, db, logger)
	return srv.Start(ctx, ":"+cfg.Port)
}
