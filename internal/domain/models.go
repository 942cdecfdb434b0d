// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Population identifies one of the two player pools valued independently.
type Population string

const (
	// Hitters is the position-player pool
	Hitters Population = "hitters"
	// Pitchers is the pitching pool
	Pitchers Population = "pitchers"
)

// Populations lists every population in processing order
var Populations = []Population{Hitters, Pitchers}

// ParsePopulation accepts the table name or the singular player type.
func ParsePopulation(s string) (Population, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hitters", "hitter":
		return Hitters, nil
	case "pitchers", "pitcher":
		return Pitchers, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPopulation, s)
}

// Table returns the persisted table name for the population
func (p Population) Table() string {
	return string(p)
}

// PlayerType returns the singular tag written to the draft log
func (p Population) PlayerType() string {
	if p == Pitchers {
		return "pitcher"
	}
	return "hitter"
}

// Well-known column names shared by loaders, merger, valuation and persistence.
const (
	ColumnName         = "name"
	ColumnTeam         = "team"
	ColumnSalary       = "salary"
	ColumnPosition     = "position"
	ColumnOwnershipPct = "ownership_pct"

	// ColumnPoints holds historical fantasy points
	ColumnPoints = "fpts"
	// ProjectionPrefix namespaces projection columns away from historical stats
	ProjectionPrefix = "proj_"
	// ColumnProjectedPoints is the valuation input
	ColumnProjectedPoints = ProjectionPrefix + ColumnPoints
)

// PlayerRecord is the reconciled per-player row of one population.
// A stat absent from Stats is null.
type PlayerRecord struct {
	Name         string             `json:"name"`
	Team         *string            `json:"team"`
	Salary       *int               `json:"salary"`
	Position     *string            `json:"position"`
	OwnershipPct *float64           `json:"ownership_pct"`
	Stats        map[string]float64 `json:"stats"`

	IsDrafted  bool `json:"is_drafted"`
	DraftPrice *int `json:"draft_price"`

	DollarValue    *int `json:"dollar_value"`
	PredictedPrice *int `json:"predicted_price"`
	SurplusValue   *int `json:"surplus_value"`
}

// NewPlayerRecord creates an empty record keyed by name
func NewPlayerRecord(name string) *PlayerRecord {
	return &PlayerRecord{Name: name, Stats: make(map[string]float64)}
}

// Stat returns a stat value and whether it is non-null
func (r *PlayerRecord) Stat(column string) (float64, bool) {
	v, ok := r.Stats[column]
	return v, ok
}

// SetStat stores a stat; nil clears it.
func (r *PlayerRecord) SetStat(column string, v *float64) {
	if v == nil {
		delete(r.Stats, column)
		return
	}
	r.Stats[column] = *v
}

// HasProjection reports whether the record carries projected points
func (r *PlayerRecord) HasProjection() bool {
	_, ok := r.Stats[ColumnProjectedPoints]
	return ok
}

// Clone returns a deep copy
func (r *PlayerRecord) Clone() *PlayerRecord {
	c := *r
	c.Team = cloneString(r.Team)
	c.Salary = cloneInt(r.Salary)
	c.Position = cloneString(r.Position)
	c.OwnershipPct = cloneFloat(r.OwnershipPct)
	c.DraftPrice = cloneInt(r.DraftPrice)
	c.DollarValue = cloneInt(r.DollarValue)
	c.PredictedPrice = cloneInt(r.PredictedPrice)
	c.SurplusValue = cloneInt(r.SurplusValue)
	c.Stats = make(map[string]float64, len(r.Stats))
	for k, v := range r.Stats {
		c.Stats[k] = v
	}
	return &c
}

// ResetState clears draft and valuation state
func (r *PlayerRecord) ResetState() {
	r.IsDrafted = false
	r.DraftPrice = nil
	r.DollarValue = nil
	r.PredictedPrice = nil
	r.SurplusValue = nil
}

// PlayerTable is one population's set of records plus the ordered stat columns they may carry.
type PlayerTable struct {
	Population Population
	Columns    []string
	Records    []*PlayerRecord
}

// NewPlayerTable creates an empty table for a population
func NewPlayerTable(pop Population) *PlayerTable {
	return &PlayerTable{Population: pop}
}

// HasColumn reports whether the stat column is part of the table schema
func (t *PlayerTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// AddColumn appends a stat column if it is not present yet
func (t *PlayerTable) AddColumn(column string) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
}

// Find returns the record with the given name or nil
func (t *PlayerTable) Find(name string) *PlayerRecord {
	for _, r := range t.Records {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// Index maps names to records
func (t *PlayerTable) Index() map[string]*PlayerRecord {
	idx := make(map[string]*PlayerRecord, len(t.Records))
	for _, r := range t.Records {
		idx[r.Name] = r
	}
	return idx
}

// Clone returns a deep copy of the table
func (t *PlayerTable) Clone() *PlayerTable {
	c := &PlayerTable{
		Population: t.Population,
		Columns:    append([]string(nil), t.Columns...),
		Records:    make([]*PlayerRecord, len(t.Records)),
	}
	for i, r := range t.Records {
		c.Records[i] = r.Clone()
	}
	return c
}

// SourceKind names a per-category input
type SourceKind string

const (
	SourceFantasy     SourceKind = "fantasy"
	SourceAdvanced    SourceKind = "advanced"
	SourceBattedBall  SourceKind = "batted_ball"
	SourceModeling    SourceKind = "modeling"
	SourceProjections SourceKind = "projections"
	SourcePositions   SourceKind = "positions"
)

// SourceTable is a partial set of PlayerRecord fields keyed by name, loaded from one file.
// It only lives until merge time.
type SourceTable struct {
	Kind    SourceKind
	Origin  string
	Columns []string
	Records []*PlayerRecord
}

// SourceSet holds one population's loaded sources by kind
type SourceSet map[SourceKind]*SourceTable

// HistoricalAuctionRecord is one realized auction price, unique by (PlayerName, Season).
type HistoricalAuctionRecord struct {
	PlayerName  string  `json:"player_name"`
	Season      int     `json:"season"`
	Price       *int    `json:"price"`
	Position    *string `json:"position"`
	AuctionDate *string `json:"auction_date"`
}

// DraftAction is an immutable draft log entry
type DraftAction struct {
	ID              int64      `json:"id"`
	ActionID        string     `json:"action_id"`
	PlayerName      string     `json:"player_name"`
	Population      Population `json:"population"`
	ProjectedSalary *int       `json:"projected_salary"`
	DraftPrice      int        `json:"draft_price"`
	DraftingTeam    string     `json:"drafting_team"`
	Timestamp       time.Time  `json:"timestamp"`
}

// Value is projected salary (0 when unknown) minus the price paid
func (a DraftAction) Value() int {
	salary := 0
	if a.ProjectedSalary != nil {
		salary = *a.ProjectedSalary
	}
	return salary - a.DraftPrice
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
