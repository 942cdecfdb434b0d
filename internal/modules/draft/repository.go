// Package draft records draft picks against the population tables and keeps the append-only draft log.
package draft

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/draftboard/internal/database"
	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/ingest"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository applies draft actions. Every action touches a population table and
// draft_log together in one transaction.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// NewRepository creates a new draft repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "draft").Logger(),
		now: time.Now,
	}
}

// Draft marks a player drafted at price by team and appends the log entry.
// name is matched in its normalized form, the same key the tables are stored under.
//
// Returns:
//   - domain.DraftAction: The logged action
//   - error: ErrPlayerNotFound, ErrAlreadyDrafted, ErrInvalidPrice or a database error
func (r *Repository) Draft(pop domain.Population, name string, price int, team string) (domain.DraftAction, error) {
	if price < 0 {
		return domain.DraftAction{}, fmt.Errorf("%w: %d", domain.ErrInvalidPrice, price)
	}
	name = ingest.NormalizeName(name)

	action := domain.DraftAction{
		ActionID:     uuid.New().String(),
		PlayerName:   name,
		Population:   pop,
		DraftPrice:   price,
		DraftingTeam: team,
		Timestamp:    r.now().UTC().Truncate(time.Second),
	}

	table := pop.Table()
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var salary sql.NullInt64
		var drafted int
		err := tx.QueryRow(
			fmt.Sprintf("SELECT salary, is_drafted FROM %s WHERE name = ?", table), name,
		).Scan(&salary, &drafted)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s in %s", domain.ErrPlayerNotFound, name, table)
		}
		if err != nil {
			return fmt.Errorf("failed to look up %s: %w", name, err)
		}
		if drafted != 0 {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyDrafted, name)
		}
		if salary.Valid {
			s := int(salary.Int64)
			action.ProjectedSalary = &s
		}

		if _, err := tx.Exec(
			fmt.Sprintf("UPDATE %s SET is_drafted = 1, draft_price = ? WHERE name = ?", table),
			price, name,
		); err != nil {
			return fmt.Errorf("failed to mark %s drafted: %w", name, err)
		}

		res, err := tx.Exec(`
			INSERT INTO draft_log (action_id, player_name, player_type, projected_salary, draft_price, drafting_team, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, action.ActionID, name, pop.PlayerType(), nullInt(action.ProjectedSalary), price, team, action.Timestamp.Unix())
		if err != nil {
			return fmt.Errorf("failed to log draft of %s: %w", name, err)
		}
		action.ID, _ = res.LastInsertId()
		return nil
	})
	if err != nil {
		return domain.DraftAction{}, err
	}

	r.log.Info().
		Str("player", name).
		Str("population", string(pop)).
		Int("price", price).
		Str("team", team).
		Msg("Player drafted")
	return action, nil
}

// Undo reverts the most recent draft action and deletes its log entry.
//
// Returns:
//   - domain.DraftAction: The reverted action (zero when the log was empty)
//   - bool: false when there was nothing to undo
//   - error: Database error
func (r *Repository) Undo() (domain.DraftAction, bool, error) {
	var action domain.DraftAction
	found := false

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		row := tx.QueryRow(`
			SELECT id, action_id, player_name, player_type, projected_salary, draft_price, drafting_team, timestamp
			FROM draft_log ORDER BY id DESC LIMIT 1
		`)
		a, err := scanAction(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read last draft action: %w", err)
		}

		if _, err := tx.Exec(
			fmt.Sprintf("UPDATE %s SET is_drafted = 0, draft_price = NULL WHERE name = ?", a.Population.Table()),
			a.PlayerName,
		); err != nil {
			return fmt.Errorf("failed to revert %s: %w", a.PlayerName, err)
		}
		if _, err := tx.Exec("DELETE FROM draft_log WHERE id = ?", a.ID); err != nil {
			return fmt.Errorf("failed to delete draft action %d: %w", a.ID, err)
		}

		action = a
		found = true
		return nil
	})
	if err != nil {
		return domain.DraftAction{}, false, err
	}

	if found {
		r.log.Info().Str("player", action.PlayerName).Msg("Draft undone")
	}
	return action, found, nil
}

// Log returns every draft action, newest first
func (r *Repository) Log() ([]domain.DraftAction, error) {
	return r.query(`
		SELECT id, action_id, player_name, player_type, projected_salary, draft_price, drafting_team, timestamp
		FROM draft_log ORDER BY id DESC
	`)
}

// ByTeam returns the actions of one drafting team in draft order
func (r *Repository) ByTeam(team string) ([]domain.DraftAction, error) {
	return r.query(`
		SELECT id, action_id, player_name, player_type, projected_salary, draft_price, drafting_team, timestamp
		FROM draft_log WHERE drafting_team = ? ORDER BY id
	`, team)
}

func (r *Repository) query(q string, args ...interface{}) ([]domain.DraftAction, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft log: %w", err)
	}
	defer rows.Close()

	var actions []domain.DraftAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draft log: %w", err)
	}
	return actions, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAction(s scanner) (domain.DraftAction, error) {
	var (
		a          domain.DraftAction
		playerType string
		salary     sql.NullInt64
		team       sql.NullString
		ts         int64
	)
	if err := s.Scan(&a.ID, &a.ActionID, &a.PlayerName, &playerType, &salary, &a.DraftPrice, &team, &ts); err != nil {
		return a, err
	}

	pop, err := domain.ParsePopulation(playerType)
	if err != nil {
		return a, err
	}
	a.Population = pop
	if salary.Valid {
		v := int(salary.Int64)
		a.ProjectedSalary = &v
	}
	a.DraftingTeam = team.String
	a.Timestamp = time.Unix(ts, 0).UTC()
	return a, nil
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
