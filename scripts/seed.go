// Seed creates the initial admin user and a starter template.
//
//	go run scripts/seed.go
//
// ADMIN_USERNAME and ADMIN_PASSWORD override the default credentials; an
// existing admin gets its password reset to ADMIN_PASSWORD when it is set.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlexTLDR/invitations/internal/auth"
	"github.com/AlexTLDR/invitations/internal/config"
	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/logging"
)

const defaultTemplateName = "GTE - Year End"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, closer := logging.New(cfg)
	defer closer.Close()

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBConnectAttempts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	if err := seedAdmin(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed admin")
	}
	if err := seedTemplate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed template")
	}
	logger.Info().Msg("seed complete")
}

func seedAdmin(ctx context.Context, db *database.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")

	_, err := db.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if password == "" {
			log.Printf("Admin %q already exists", username)
			return nil
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		log.Printf("Resetting password of admin %q", username)
		return db.SetUserPassword(ctx, username, hash)
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	if password == "" {
		password = "admin123"
		log.Printf("ADMIN_PASSWORD not set, using the default password; change it after the first login")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := db.CreateUser(ctx, username, hash, true); err != nil {
		return err
	}
	log.Printf("Created admin %q", username)
	return nil
}

func seedTemplate(ctx context.Context, db *database.DB) error {
	templates, err := db.ListTemplates(ctx)
	if err != nil {
		return err
	}
	for _, t := range templates {
		if t.Name == defaultTemplateName {
			return nil
		}
	}

	eventTime := time.Date(time.Now().Year(), time.December, 20, 18, 0, 0, 0, time.UTC)
	location := "Grand Ballroom"
	_, err = db.CreateTemplate(ctx, database.TemplateInput{
		Name:          defaultTemplateName,
		CompanyName:   "GTE",
		Title:         "Year End Party",
		Content:       "We are delighted to invite you to our year end celebration.",
		EventTime:     &eventTime,
		EventLocation: &location,
		Schedule: database.Schedule{
			{Time: "18:00", Label: "Welcome"},
			{Time: "18:30", Label: "Opening speech"},
			{Time: "19:00", Label: "Dinner"},
		},
	})
	if err != nil {
		return err
	}
	log.Printf("Created template %q", defaultTemplateName)
	return nil
}
