package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/rs/zerolog"
)

// sourceFile is one expected file of the per-population source set
type sourceFile struct {
	population domain.Population
	kind       domain.SourceKind
	file       string
	required   bool
}

// sourceFiles lists every file LoadAll looks for, in load order
var sourceFiles = []sourceFile{
	{domain.Hitters, domain.SourceFantasy, "hitters_fantasy.csv", true},
	{domain.Hitters, domain.SourceAdvanced, "hitters_advanced.csv", true},
	{domain.Hitters, domain.SourceBattedBall, "hitters_batted_ball.csv", true},
	{domain.Hitters, domain.SourceProjections, "proj_hitters.csv", false},
	{domain.Hitters, domain.SourcePositions, "hitter_positions.csv", false},
	{domain.Pitchers, domain.SourceFantasy, "pitchers_fantasy.csv", true},
	{domain.Pitchers, domain.SourceAdvanced, "pitchers_advanced.csv", true},
	{domain.Pitchers, domain.SourceBattedBall, "pitchers_batted_ball.csv", true},
	{domain.Pitchers, domain.SourceModeling, "pitchers_modeling.csv", true},
	{domain.Pitchers, domain.SourceProjections, "proj_pitchers.csv", false},
	{domain.Pitchers, domain.SourcePositions, "pitcher_positions.csv", false},
}

// Loader reads source files into SourceTables
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new source loader
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "ingest").Logger(),
	}
}

// LoadAll loads the full source set found in dir.
// A missing category file is an error; missing projection and position files are skipped.
func (l *Loader) LoadAll(dir string) (map[domain.Population]domain.SourceSet, error) {
	result := map[domain.Population]domain.SourceSet{
		domain.Hitters:  {},
		domain.Pitchers: {},
	}

	for _, sf := range sourceFiles {
		path := filepath.Join(dir, sf.file)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) && !sf.required {
				l.log.Debug().Str("file", sf.file).Msg("Optional source not present, skipping")
				continue
			}
			return nil, fmt.Errorf("source %s: %w", path, err)
		}

		var (
			table *domain.SourceTable
			err   error
		)
		switch sf.kind {
		case domain.SourceProjections:
			table, err = l.LoadProjections(path)
		case domain.SourcePositions:
			table, err = l.LoadPositionUniverse(path)
		default:
			table, err = l.LoadFile(path, sf.kind)
		}
		if err != nil {
			return nil, err
		}
		result[sf.population][sf.kind] = table
	}

	return result, nil
}

// LoadFile loads one per-category statistics file
func (l *Loader) LoadFile(path string, kind domain.SourceKind) (*domain.SourceTable, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.buildSourceTable(raw, path, kind)
}

// ReadSource loads a per-category statistics source from a reader
func (l *Loader) ReadSource(r io.Reader, origin string, kind domain.SourceKind) (*domain.SourceTable, error) {
	raw, err := readAll(r, origin)
	if err != nil {
		return nil, err
	}
	return l.buildSourceTable(raw, origin, kind)
}

// LoadProjections loads a projection file; every stat column gets the proj_ prefix
func (l *Loader) LoadProjections(path string) (*domain.SourceTable, error) {
	return l.LoadFile(path, domain.SourceProjections)
}

// buildSourceTable canonicalizes headers and parses every row.
// Only a missing identity column fails; bad cells become nulls.
func (l *Loader) buildSourceTable(raw *rawTable, origin string, kind domain.SourceKind) (*domain.SourceTable, error) {
	cols := canonicalColumns(raw.headers)

	nameIdx := -1
	for _, c := range cols {
		if c.name == domain.ColumnName {
			nameIdx = c.index
			break
		}
	}
	if nameIdx < 0 {
		return nil, &domain.MissingColumnError{Source: origin, Field: domain.ColumnName, Headers: raw.headers}
	}

	projection := kind == domain.SourceProjections
	table := &domain.SourceTable{Kind: kind, Origin: origin}
	filled := make(map[string]int)

	for _, row := range raw.rows {
		name := NormalizeName(raw.cell(row, nameIdx))
		if name == "" {
			continue
		}
		rec := domain.NewPlayerRecord(name)

		for _, c := range cols {
			value := raw.cell(row, c.index)
			switch {
			case c.name == domain.ColumnName || c.name == domain.ColumnOwnershipPct:
				continue
			case c.kind == cellText:
				// Projection files carry no roster metadata worth keeping
				if projection {
					continue
				}
				if c.name == domain.ColumnTeam {
					rec.Team = parseText(value)
				} else {
					rec.Position = parseText(value)
				}
			case c.kind == cellCurrency && !projection:
				rec.Salary = ParseCurrency(value)
			default:
				v := parseCell(c.kind, value)
				if v == nil {
					continue
				}
				stat := c.name
				if projection {
					stat = domain.ProjectionPrefix + stat
				}
				rec.Stats[stat] = *v
				filled[stat]++
			}
		}
		table.Records = append(table.Records, rec)
	}

	// Headers outside the vocabulary pass through; cells that never parse stay null
	for _, c := range cols {
		switch {
		case c.name == domain.ColumnName || c.name == domain.ColumnOwnershipPct:
			continue
		case c.kind == cellText:
			continue
		case c.kind == cellCurrency && !projection:
			continue
		}
		stat := c.name
		if projection {
			stat = domain.ProjectionPrefix + stat
		}
		if filled[stat] == 0 {
			l.log.Debug().Str("source", origin).Str("column", c.header).Msg("Column has no numeric values")
		}
		table.Columns = append(table.Columns, stat)
	}

	l.log.Info().
		Str("source", origin).
		Str("kind", string(kind)).
		Int("rows", len(table.Records)).
		Int("columns", len(table.Columns)).
		Msg("Loaded source")

	return table, nil
}

// parseCell applies the numeric parser for a column kind
func parseCell(kind cellKind, value string) *float64 {
	switch kind {
	case cellPercent:
		return ParsePercentage(value)
	case cellCurrency:
		if v := ParseCurrency(value); v != nil {
			f := float64(*v)
			return &f
		}
		return nil
	default:
		return ParseNumber(value)
	}
}
