package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/draftboard/internal/config"
	"github.com/aristath/draftboard/internal/reliability"
	"github.com/rs/zerolog"
)

// JobInstances holds the registered background jobs
type JobInstances struct {
	Maintenance *reliability.MaintenanceJob
	Backup      *reliability.BackupJob // nil when backups are disabled
}

// RegisterJobs creates the scheduler and registers maintenance and, when enabled, backups.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	container.Scheduler = reliability.NewScheduler(log)
	jobs := &JobInstances{}

	jobs.Maintenance = reliability.NewMaintenanceJob(container.DB, cfg.DataDir, log)
	if err := container.Scheduler.AddJob(cfg.MaintenanceSchedule, jobs.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if cfg.Backup == nil || !cfg.Backup.Enabled {
		log.Info().Msg("Backups disabled")
		return jobs, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := reliability.NewS3Client(ctx, cfg.Backup, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup client: %w", err)
	}

	container.BackupService = reliability.NewBackupService(
		store,
		container.DB,
		cfg.ModelDir,
		cfg.DataDir,
		cfg.Backup.Prefix,
		container.Metrics,
		log,
	)

	jobs.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
	if err := container.Scheduler.AddJob(cfg.Backup.Schedule, jobs.Backup); err != nil {
		return nil, fmt.Errorf("failed to register backup job: %w", err)
	}

	log.Info().
		Str("bucket", cfg.Backup.Bucket).
		Str("schedule", cfg.Backup.Schedule).
		Msg("Backups enabled")

	return jobs, nil
}
