package players

import (
	"fmt"
	"strings"

	"github.com/aristath/draftboard/internal/domain"
)

// Range bounds a stat filter; nil ends are open
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Filter selects and orders players for the board
type Filter struct {
	Search      string           `json:"search"`
	Positions   []string         `json:"positions"`
	ShowDrafted bool             `json:"show_drafted"`
	SortBy      string           `json:"sort_by"`
	SortAsc     bool             `json:"sort_asc"`
	StatFilters map[string]Range `json:"stat_filters"`
	Limit       int              `json:"limit"`
}

// DefaultSortColumn orders the board when no valid sort column is given
const DefaultSortColumn = domain.ColumnPoints

// Query returns the players matching the filter.
// Sort and stat filter columns are checked against the table's actual columns;
// an unknown sort column falls back to fpts, unknown stat filters are ignored.
// Nulls sort last in either direction.
func (r *Repository) Query(pop domain.Population, f Filter) ([]*domain.PlayerRecord, error) {
	columns, err := r.Columns(pop)
	if err != nil {
		return nil, err
	}
	valid := make(map[string]bool, len(columns))
	for _, c := range columns {
		valid[c] = true
	}

	var (
		conditions []string
		args       []interface{}
	)
	if !f.ShowDrafted {
		conditions = append(conditions, "is_drafted = 0")
	}
	if f.Search != "" {
		conditions = append(conditions, "name LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if len(f.Positions) > 0 {
		clauses := make([]string, 0, len(f.Positions))
		for _, pos := range f.Positions {
			clauses = append(clauses, "position LIKE ?")
			args = append(args, "%"+pos+"%")
		}
		conditions = append(conditions, "("+strings.Join(clauses, " OR ")+")")
	}
	for col, rng := range f.StatFilters {
		if !valid[col] {
			r.log.Debug().Str("column", col).Msg("Ignoring filter on unknown column")
			continue
		}
		if rng.Min != nil {
			conditions = append(conditions, quoteIdent(col)+" >= ?")
			args = append(args, *rng.Min)
		}
		if rng.Max != nil {
			conditions = append(conditions, quoteIdent(col)+" <= ?")
			args = append(args, *rng.Max)
		}
	}

	sortBy := f.SortBy
	if !valid[sortBy] {
		sortBy = DefaultSortColumn
	}
	direction := "DESC"
	if f.SortAsc {
		direction = "ASC"
	}

	var q strings.Builder
	fmt.Fprintf(&q, "SELECT * FROM %s", pop.Table())
	if len(conditions) > 0 {
		q.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	if valid[sortBy] {
		s := quoteIdent(sortBy)
		fmt.Fprintf(&q, " ORDER BY %s IS NULL, %s %s, rowid", s, s, direction)
	} else {
		q.WriteString(" ORDER BY rowid")
	}
	if f.Limit > 0 {
		fmt.Fprintf(&q, " LIMIT %d", f.Limit)
	}

	records, _, err := r.selectRecords(pop, q.String(), args...)
	return records, err
}
