// Package history stores realized auction prices and matches them to current players.
package history

import (
	"database/sql"
	"fmt"

	"github.com/aristath/draftboard/internal/database"
	"github.com/aristath/draftboard/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles historical_prices database operations.
// Records are unique by (player_name, season); re-importing a season replaces its rows by key.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new historical price repository.
//
// Parameters:
//   - db: Database connection holding the historical_prices table
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// SaveAll upserts records in one transaction.
// Either every record is written or none is.
//
// Parameters:
//   - records: Parsed auction records
//
// Returns:
//   - int: Number of records written
//   - error: Error if the transaction fails
func (r *Repository) SaveAll(records []domain.HistoricalAuctionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO historical_prices (player_name, season, price, position, auction_date)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(player_name, season) DO UPDATE SET
				price = excluded.price,
				position = excluded.position,
				auction_date = excluded.auction_date
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.Exec(rec.PlayerName, rec.Season, nullInt(rec.Price), nullString(rec.Position), nullString(rec.AuctionDate)); err != nil {
				return fmt.Errorf("failed to upsert %s (%d): %w", rec.PlayerName, rec.Season, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Info().Int("records", len(records)).Msg("Saved historical prices")
	return len(records), nil
}

// GetAll returns every historical record ordered by season (newest first) then name
func (r *Repository) GetAll() ([]domain.HistoricalAuctionRecord, error) {
	return r.query(`
		SELECT player_name, season, price, position, auction_date
		FROM historical_prices
		ORDER BY season DESC, player_name
	`)
}

// GetWithPrice returns only records carrying a realized price
func (r *Repository) GetWithPrice() ([]domain.HistoricalAuctionRecord, error) {
	return r.query(`
		SELECT player_name, season, price, position, auction_date
		FROM historical_prices
		WHERE price IS NOT NULL
		ORDER BY season DESC, player_name
	`)
}

// Count returns the number of stored records
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM historical_prices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count historical prices: %w", err)
	}
	return count, nil
}

// Seasons returns the stored seasons with their record counts
func (r *Repository) Seasons() (map[int]int, error) {
	rows, err := r.db.Query("SELECT season, COUNT(*) FROM historical_prices GROUP BY season")
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer rows.Close()

	result := make(map[int]int)
	for rows.Next() {
		var season, count int
		if err := rows.Scan(&season, &count); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		result[season] = count
	}
	return result, rows.Err()
}

func (r *Repository) query(q string) ([]domain.HistoricalAuctionRecord, error) {
	rows, err := r.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical prices: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoricalAuctionRecord
	for rows.Next() {
		var (
			rec         domain.HistoricalAuctionRecord
			price       sql.NullInt64
			position    sql.NullString
			auctionDate sql.NullString
		)
		if err := rows.Scan(&rec.PlayerName, &rec.Season, &price, &position, &auctionDate); err != nil {
			return nil, fmt.Errorf("failed to scan historical price: %w", err)
		}
		if price.Valid {
			v := int(price.Int64)
			rec.Price = &v
		}
		if position.Valid {
			rec.Position = &position.String
		}
		if auctionDate.Valid {
			rec.AuctionDate = &auctionDate.String
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating historical prices: %w", err)
	}
	return records, nil
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
