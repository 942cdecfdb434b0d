/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server and the CLI commands for access to services.
 */
package di

import (
	"github.com/aristath/draftboard/internal/database"
	"github.com/aristath/draftboard/internal/events"
	"github.com/aristath/draftboard/internal/metrics"
	"github.com/aristath/draftboard/internal/modules/draft"
	"github.com/aristath/draftboard/internal/modules/history"
	"github.com/aristath/draftboard/internal/modules/ingest"
	"github.com/aristath/draftboard/internal/modules/merge"
	"github.com/aristath/draftboard/internal/modules/players"
	"github.com/aristath/draftboard/internal/modules/pricing"
	"github.com/aristath/draftboard/internal/modules/settings"
	"github.com/aristath/draftboard/internal/pipeline"
	"github.com/aristath/draftboard/internal/reliability"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Database: a single draft.db (player tables, config, history, draft log)
 * - Repositories: data access layer (players, history, settings, draft log)
 * - Services: ingest, merge, pricing, settings, draft and the pipeline that chains them
 * - Reliability: optional S3 backups and the cron scheduler running maintenance
 */
type Container struct {
	// Database
	DB *database.DB

	// Cross-cutting
	EventManager *events.Manager
	Metrics      *metrics.Manager

	// Repositories
	PlayerRepo   *players.Repository
	HistoryRepo  *history.Repository
	SettingsRepo *settings.Repository
	DraftRepo    *draft.Repository

	// Services
	Loader          *ingest.Loader
	Merger          *merge.Service
	PricingService  *pricing.Service
	SettingsService *settings.Service
	DraftService    *draft.Service
	Pipeline        *pipeline.Pipeline

	// Reliability
	BackupService *reliability.BackupService // nil when backups are disabled
	Scheduler     *reliability.Scheduler
}

// Close stops background work and closes the database
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
