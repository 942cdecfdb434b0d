// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/draftboard/internal/config"
	"github.com/aristath/draftboard/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens draft.db and applies the schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	db, err := database.New(database.Config{
		Path: cfg.DBPath,
		Name: "draft",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize draft database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate draft database: %w", err)
	}
	container.DB = db

	log.Info().Str("path", db.Path()).Msg("Database initialized")

	return container, nil
}
