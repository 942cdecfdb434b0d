// Package players persists the reconciled per-population player tables.
package players

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/aristath/draftboard/internal/database"
	"github.com/aristath/draftboard/internal/domain"
	"github.com/rs/zerolog"
)

// Fixed columns every population table starts with; stat columns follow
const (
	colIsDrafted      = "is_drafted"
	colDraftPrice     = "draft_price"
	colDollarValue    = "dollar_value"
	colPredictedPrice = "predicted_price"
	colSurplusValue   = "surplus_value"
)

var fixedColumns = []struct {
	name string
	ddl  string
}{
	{domain.ColumnName, "TEXT PRIMARY KEY"},
	{domain.ColumnTeam, "TEXT"},
	{domain.ColumnSalary, "INTEGER"},
	{domain.ColumnPosition, "TEXT"},
	{domain.ColumnOwnershipPct, "REAL"},
	{colIsDrafted, "INTEGER NOT NULL DEFAULT 0"},
	{colDraftPrice, "INTEGER"},
	{colDollarValue, "INTEGER"},
	{colPredictedPrice, "INTEGER"},
	{colSurplusValue, "INTEGER"},
}

// Repository reads and writes the hitters and pitchers tables.
// The stat columns of a table follow whatever the last merge produced.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new players repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "players").Logger(),
	}
}

// quoteIdent quotes a column name taken from source headers
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// statColumns returns the persistable stat columns of a table.
// SQLite identifiers are case-insensitive, so names colliding with a fixed
// column or an earlier stat column are skipped.
func statColumns(table *domain.PlayerTable) (kept []string, skipped []string) {
	seen := make(map[string]bool, len(fixedColumns)+len(table.Columns))
	for _, c := range fixedColumns {
		seen[strings.ToLower(c.name)] = true
	}
	for _, col := range table.Columns {
		key := strings.ToLower(col)
		if seen[key] {
			skipped = append(skipped, col)
			continue
		}
		seen[key] = true
		kept = append(kept, col)
	}
	return kept, skipped
}

// ReplaceAll recreates the given population tables from scratch in one transaction.
// On failure every previous table is left intact.
func (r *Repository) ReplaceAll(tables ...*domain.PlayerTable) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, table := range tables {
			if err := r.replaceTable(tx, table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, table := range tables {
		r.log.Info().
			Str("table", table.Population.Table()).
			Int("players", len(table.Records)).
			Msg("Replaced player table")
	}
	return nil
}

func (r *Repository) replaceTable(tx *sql.Tx, table *domain.PlayerTable) error {
	name := table.Population.Table()
	stats, skipped := statColumns(table)
	if len(skipped) > 0 {
		r.log.Warn().Str("table", name).Strs("columns", skipped).Msg("Skipping stat columns that collide with existing columns")
	}

	defs := make([]string, 0, len(fixedColumns)+len(stats))
	cols := make([]string, 0, len(fixedColumns)+len(stats))
	for _, c := range fixedColumns {
		defs = append(defs, fmt.Sprintf("%s %s", c.name, c.ddl))
		cols = append(cols, c.name)
	}
	for _, s := range stats {
		defs = append(defs, fmt.Sprintf("%s REAL", quoteIdent(s)))
		cols = append(cols, quoteIdent(s))
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", name, strings.Join(defs, ",\n\t"))
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(cols, ", "), placeholders)

	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", name, err)
	}
	if _, err := tx.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(cols))
	for _, rec := range table.Records {
		args[0] = rec.Name
		args[1] = nullString(rec.Team)
		args[2] = nullInt(rec.Salary)
		args[3] = nullString(rec.Position)
		args[4] = nullFloat(rec.OwnershipPct)
		args[5] = boolToInt(rec.IsDrafted)
		args[6] = nullInt(rec.DraftPrice)
		args[7] = nullInt(rec.DollarValue)
		args[8] = nullInt(rec.PredictedPrice)
		args[9] = nullInt(rec.SurplusValue)
		for j, s := range stats {
			if v, ok := rec.Stat(s); ok {
				args[len(fixedColumns)+j] = v
			} else {
				args[len(fixedColumns)+j] = nil
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert %s into %s: %w", rec.Name, name, err)
		}
	}
	return nil
}

// Load reads a whole population table
func (r *Repository) Load(pop domain.Population) (*domain.PlayerTable, error) {
	records, columns, err := r.selectRecords(pop, fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", pop.Table()))
	if err != nil {
		return nil, err
	}
	return &domain.PlayerTable{Population: pop, Columns: columns, Records: records}, nil
}

// Columns returns every column of a population table, fixed columns first
func (r *Repository) Columns(pop domain.Population) ([]string, error) {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", pop.Table()))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", pop, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// UpdateValuations writes the valuation fields of every record of the given
// tables in one transaction
func (r *Repository) UpdateValuations(tables ...*domain.PlayerTable) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, table := range tables {
			query := fmt.Sprintf(
				"UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE name = ?",
				table.Population.Table(), colDollarValue, colPredictedPrice, colSurplusValue,
			)
			stmt, err := tx.Prepare(query)
			if err != nil {
				return fmt.Errorf("failed to prepare valuation update: %w", err)
			}
			for _, rec := range table.Records {
				if _, err := stmt.Exec(nullInt(rec.DollarValue), nullInt(rec.PredictedPrice), nullInt(rec.SurplusValue), rec.Name); err != nil {
					_ = stmt.Close()
					return fmt.Errorf("failed to update valuation of %s: %w", rec.Name, err)
				}
			}
			if err := stmt.Close(); err != nil {
				return err
			}
		}
		return nil
	})
}

// Teams returns the distinct roster teams of a population
func (r *Repository) Teams(pop domain.Population) ([]string, error) {
	rows, err := r.db.Query(fmt.Sprintf(
		"SELECT DISTINCT team FROM %s WHERE team IS NOT NULL ORDER BY team", pop.Table(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to query teams of %s: %w", pop, err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// UpdatePositions sets positions by player name and returns the number of rows updated
func (r *Repository) UpdatePositions(pop domain.Population, positions map[string]string) (int, error) {
	updated := 0
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(fmt.Sprintf("UPDATE %s SET position = ? WHERE name = ?", pop.Table()))
		if err != nil {
			return fmt.Errorf("failed to prepare position update: %w", err)
		}
		defer stmt.Close()

		for name, pos := range positions {
			res, err := stmt.Exec(pos, name)
			if err != nil {
				return fmt.Errorf("failed to update position of %s: %w", name, err)
			}
			n, _ := res.RowsAffected()
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// selectRecords runs a SELECT * style query and decodes rows dynamically
func (r *Repository) selectRecords(pop domain.Population, query string, args ...interface{}) ([]*domain.PlayerRecord, []string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query %s: %w", pop, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns of %s: %w", pop, err)
	}

	fixed := make(map[string]bool, len(fixedColumns))
	for _, c := range fixedColumns {
		fixed[c.name] = true
	}
	var statCols []string
	for _, n := range names {
		if !fixed[n] {
			statCols = append(statCols, n)
		}
	}

	values := make([]interface{}, len(names))
	ptrs := make([]interface{}, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var records []*domain.PlayerRecord
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan %s row: %w", pop, err)
		}
		rec := domain.NewPlayerRecord("")
		for i, col := range names {
			decodeColumn(rec, col, values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating %s: %w", pop, err)
	}

	return records, statCols, nil
}

// decodeColumn stores one scanned value into the record
func decodeColumn(rec *domain.PlayerRecord, col string, v interface{}) {
	switch col {
	case domain.ColumnName:
		if s, ok := asString(v); ok {
			rec.Name = s
		}
	case domain.ColumnTeam:
		rec.Team = stringPtr(v)
	case domain.ColumnPosition:
		rec.Position = stringPtr(v)
	case domain.ColumnSalary:
		rec.Salary = intPtr(v)
	case domain.ColumnOwnershipPct:
		if f, ok := asFloat(v); ok {
			rec.OwnershipPct = &f
		}
	case colIsDrafted:
		if f, ok := asFloat(v); ok {
			rec.IsDrafted = f != 0
		}
	case colDraftPrice:
		rec.DraftPrice = intPtr(v)
	case colDollarValue:
		rec.DollarValue = intPtr(v)
	case colPredictedPrice:
		rec.PredictedPrice = intPtr(v)
	case colSurplusValue:
		rec.SurplusValue = intPtr(v)
	default:
		if f, ok := asFloat(v); ok {
			rec.Stats[col] = f
		}
	}
}
