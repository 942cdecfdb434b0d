package testing

import (
	"fmt"
	"sort"

	"github.com/aristath/draftboard/internal/domain"
)

// FixturePlayer describes one record for NewPlayerTableFixture
type FixturePlayer struct {
	Name      string
	Team      string
	Salary    int // 0 means unknown
	Position  string
	Ownership float64 // negative means unknown
	Stats     map[string]float64
}

// NewPlayerTableFixture builds a PlayerTable from compact fixture rows.
// Stat columns are registered in first-seen order.
func NewPlayerTableFixture(pop domain.Population, players ...FixturePlayer) *domain.PlayerTable {
	tbl := domain.NewPlayerTable(pop)
	for _, p := range players {
		rec := domain.NewPlayerRecord(p.Name)
		if p.Team != "" {
			team := p.Team
			rec.Team = &team
		}
		if p.Salary != 0 {
			salary := p.Salary
			rec.Salary = &salary
		}
		if p.Position != "" {
			pos := p.Position
			rec.Position = &pos
		}
		if p.Ownership >= 0 {
			own := p.Ownership
			rec.OwnershipPct = &own
		}
		for k, v := range p.Stats {
			rec.Stats[k] = v
		}
		tbl.Records = append(tbl.Records, rec)
	}
	for _, p := range players {
		for _, col := range sortedKeys(p.Stats) {
			tbl.AddColumn(col)
		}
	}
	return tbl
}

// NewProjectedPool builds a pool of n players named "<prefix> <i>" with
// proj_fpts descending from top in steps of step.
func NewProjectedPool(pop domain.Population, prefix string, n int, top, step float64) *domain.PlayerTable {
	players := make([]FixturePlayer, n)
	for i := 0; i < n; i++ {
		players[i] = FixturePlayer{
			Name:      fmt.Sprintf("%s %d", prefix, i+1),
			Ownership: -1,
			Stats:     map[string]float64{domain.ColumnProjectedPoints: top - float64(i)*step},
		}
	}
	return NewPlayerTableFixture(pop, players...)
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string {
	return &v
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 {
	return &v
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
