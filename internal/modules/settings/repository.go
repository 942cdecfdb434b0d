// Package settings provides the repository and service for league configuration.
// League economics are stored as key/value pairs in the valuation_config table
// and read once per valuation run.
package settings

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/aristath/draftboard/internal/database"
	"github.com/rs/zerolog"
)

// Repository handles valuation_config database operations.
//
// Values are stored as strings and converted to the appropriate type when retrieved.
// The repository provides typed getters for convenience.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new settings repository.
//
// Parameters:
//   - db: Database connection holding the valuation_config table
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a value by key.
// Returns nil if the key doesn't exist (not an error).
//
// Parameters:
//   - key: Config key (e.g., "num_teams")
//
// Returns:
//   - *string: Value if found, nil if not found
//   - error: Error if query fails
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM valuation_config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config %s: %w", key, err)
	}
	return &value, nil
}

// Set upserts a value.
//
// Parameters:
//   - key: Config key
//   - value: Value (stored as string)
//
// Returns:
//   - error: Error if database operation fails
func (r *Repository) Set(key string, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO valuation_config (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// SetMany upserts all values in one transaction
func (r *Repository) SetMany(values map[string]string) error {
	now := time.Now().Unix()
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO valuation_config (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare config upsert: %w", err)
		}
		defer stmt.Close()

		for key, value := range values {
			if _, err := stmt.Exec(key, value, now); err != nil {
				return fmt.Errorf("failed to set config %s: %w", key, err)
			}
		}
		return nil
	})
}

// SeedDefaults inserts values for keys that are not present yet.
// Existing values are never overwritten.
//
// Returns:
//   - int: Number of keys inserted
//   - error: Error if database operation fails
func (r *Repository) SeedDefaults(defaults map[string]string) (int, error) {
	inserted := 0
	now := time.Now().Unix()
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for key, value := range defaults {
			res, err := tx.Exec(
				"INSERT OR IGNORE INTO valuation_config (key, value, updated_at) VALUES (?, ?, ?)",
				key, value, now,
			)
			if err != nil {
				return fmt.Errorf("failed to seed config %s: %w", key, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetAll retrieves all values as a map.
//
// Returns:
//   - map[string]string: Map of keys to values
//   - error: Error if query fails
func (r *Repository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM valuation_config")
	if err != nil {
		return nil, fmt.Errorf("failed to get all config: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan config row")
			continue
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating config: %w", err)
	}

	return result, nil
}

// GetFloat retrieves a value as float64.
// Returns defaultValue if the key doesn't exist or parsing fails.
//
// Parameters:
//   - key: Config key
//   - defaultValue: Default value to return if key not found or invalid
//
// Returns:
//   - float64: Value as float, or defaultValue
//   - error: Error if query fails (parsing errors are logged but not returned)
func (r *Repository) GetFloat(key string, defaultValue float64) (float64, error) {
	value, err := r.Get(key)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}

	floatVal, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse float config")
		return defaultValue, nil
	}

	return floatVal, nil
}

// GetInt retrieves a value as integer.
// Handles "12.0" strings by parsing via float first.
//
// Parameters:
//   - key: Config key
//   - defaultValue: Default value to return if key not found or invalid
//
// Returns:
//   - int: Value as int, or defaultValue
//   - error: Error if query fails (parsing errors are logged but not returned)
func (r *Repository) GetInt(key string, defaultValue int) (int, error) {
	value, err := r.Get(key)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}

	// Parse via float first to handle "12.0" strings from database
	floatVal, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse int config")
		return defaultValue, nil
	}

	return int(floatVal), nil
}

// Delete deletes a key. It does not error if the key doesn't exist.
func (r *Repository) Delete(key string) error {
	_, err := r.db.Exec("DELETE FROM valuation_config WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete config %s: %w", key, err)
	}
	return nil
}
