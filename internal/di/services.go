package di

import (
	"fmt"

	"github.com/aristath/draftboard/internal/config"
	"github.com/aristath/draftboard/internal/events"
	"github.com/aristath/draftboard/internal/metrics"
	"github.com/aristath/draftboard/internal/modules/draft"
	"github.com/aristath/draftboard/internal/modules/ingest"
	"github.com/aristath/draftboard/internal/modules/merge"
	"github.com/aristath/draftboard/internal/modules/pricing"
	"github.com/aristath/draftboard/internal/modules/settings"
	"github.com/aristath/draftboard/internal/pipeline"
	"github.com/rs/zerolog"
)

// InitializeServices creates the services and the pipeline.
// Repositories must already be initialized.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventManager = events.NewManager(log)
	container.Metrics = metrics.NewManager()

	container.Loader = ingest.NewLoader(log)
	container.Merger = merge.NewService(merge.PruneOptions{
		Threshold:             cfg.PruneOwnershipThreshold,
		UnknownOwnershipIsLow: cfg.PruneUnknownOwnership,
	}, log)
	container.PricingService = pricing.NewService(cfg.ModelDir, cfg.RidgeAlpha, log)

	container.SettingsService = settings.NewService(container.SettingsRepo, container.EventManager, log)
	if err := container.SettingsService.SeedDefaults(); err != nil {
		return fmt.Errorf("failed to seed league config: %w", err)
	}

	container.DraftService = draft.NewService(container.DraftRepo, container.EventManager, log)

	container.Pipeline = pipeline.New(
		container.Loader,
		container.Merger,
		container.PlayerRepo,
		container.HistoryRepo,
		container.PricingService,
		container.SettingsService,
		container.EventManager,
		container.Metrics,
		pipeline.Options{
			SourceDir:     cfg.SourceDir,
			HistorySeason: cfg.HistorySeason,
		},
		log,
	)

	log.Debug().Msg("Services initialized")
	return nil
}
