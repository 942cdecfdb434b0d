// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
// League economics are not part of it: they live in the valuation_config table.
type Config struct {
	DataDir   string // Base directory for the database and model artifacts (always absolute)
	SourceDir string // Directory holding the per-category source files
	DBPath    string
	ModelDir  string
	LogLevel  string
	Port      int
	DevMode   bool

	PruneOwnershipThreshold float64
	PruneUnknownOwnership   bool
	RidgeAlpha              float64
	HistorySeason           int // Season tagged on draft_results.csv imported by the pipeline
	MaintenanceSchedule     string

	Backup *BackupConfig
}

// BackupConfig holds S3-compatible backup settings
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Prefix          string
	Endpoint        string // Empty uses the AWS default resolver
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string // cron expression
	RetentionDays   int    // 0 keeps every backup
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DRAFTBOARD_DATA_DIR", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:                 absDataDir,
		SourceDir:               getEnv("DRAFTBOARD_SOURCE_DIR", absDataDir),
		DBPath:                  getEnv("DRAFTBOARD_DB_PATH", filepath.Join(absDataDir, "draft.db")),
		ModelDir:                getEnv("DRAFTBOARD_MODEL_DIR", filepath.Join(absDataDir, "models")),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		Port:                    getEnvAsInt("PORT", 8001),
		DevMode:                 getEnvAsBool("DEV_MODE", false),
		PruneOwnershipThreshold: getEnvAsFloat("PRUNE_OWNERSHIP_THRESHOLD", 5),
		PruneUnknownOwnership:   getEnvAsBool("PRUNE_UNKNOWN_OWNERSHIP", true),
		RidgeAlpha:              getEnvAsFloat("RIDGE_ALPHA", 1.0),
		HistorySeason:           getEnvAsInt("HISTORY_SEASON", time.Now().Year()-1),
		MaintenanceSchedule:     getEnv("MAINTENANCE_SCHEDULE", "0 4 * * *"),
		Backup:                  loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration values that would break a pipeline run
func (c *Config) Validate() error {
	if c.RidgeAlpha < 0 {
		return fmt.Errorf("RIDGE_ALPHA must not be negative, got %g", c.RidgeAlpha)
	}
	if c.PruneOwnershipThreshold < 0 {
		return fmt.Errorf("PRUNE_OWNERSHIP_THRESHOLD must not be negative, got %g", c.PruneOwnershipThreshold)
	}
	if c.Backup != nil && c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("BACKUP_BUCKET is required when backups are enabled")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		Prefix:          getEnv("BACKUP_PREFIX", "draftboard"),
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Schedule:        getEnv("BACKUP_SCHEDULE", "@daily"),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
}
