package ingest

import (
	"io"

	"github.com/aristath/draftboard/internal/domain"
)

// LoadPositionUniverse loads a league-platform export listing every ownable player
// with position, roster team, salary and ownership percentage.
func (l *Loader) LoadPositionUniverse(path string) (*domain.SourceTable, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.buildPositionUniverse(raw, path)
}

// ReadPositionUniverse is LoadPositionUniverse over an uploaded export
func (l *Loader) ReadPositionUniverse(r io.Reader, origin string) (*domain.SourceTable, error) {
	raw, err := readAll(r, origin)
	if err != nil {
		return nil, err
	}
	return l.buildPositionUniverse(raw, origin)
}

func (l *Loader) buildPositionUniverse(raw *rawTable, origin string) (*domain.SourceTable, error) {
	fields, err := ResolveFields(origin, raw.headers, PositionUniverseRules)
	if err != nil {
		return nil, err
	}

	get := func(row []string, field string) (string, bool) {
		idx, ok := fields[field]
		if !ok {
			return "", false
		}
		return raw.cell(row, idx), true
	}

	table := &domain.SourceTable{Kind: domain.SourcePositions, Origin: origin}
	seen := make(map[string]bool, len(raw.rows))

	for _, row := range raw.rows {
		cell, _ := get(row, FieldName)
		name := NormalizeName(cell)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		rec := domain.NewPlayerRecord(name)
		if v, ok := get(row, FieldPosition); ok {
			rec.Position = parseText(v)
		}
		if v, ok := get(row, FieldTeam); ok {
			rec.Team = parseText(v)
		}
		if v, ok := get(row, FieldSalary); ok {
			rec.Salary = ParseCurrency(v)
		}
		if v, ok := get(row, FieldOwnership); ok {
			rec.OwnershipPct = ParsePercentage(v)
		}
		table.Records = append(table.Records, rec)
	}

	l.log.Info().
		Str("source", origin).
		Int("players", len(table.Records)).
		Interface("columns", fields).
		Msg("Loaded position universe")

	return table, nil
}
