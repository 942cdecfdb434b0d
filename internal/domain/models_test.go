package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePopulation(t *testing.T) {
	tests := []struct {
		in      string
		want    Population
		wantErr bool
	}{
		{"hitters", Hitters, false},
		{"Hitter", Hitters, false},
		{" pitchers ", Pitchers, false},
		{"pitcher", Pitchers, false},
		{"goalies", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePopulation(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownPopulation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlayerRecord_CloneIsDeep(t *testing.T) {
	team := "Team A"
	salary := 12
	rec := NewPlayerRecord("Mike Trout")
	rec.Team = &team
	rec.Salary = &salary
	rec.Stats["fpts"] = 900

	c := rec.Clone()
	*c.Team = "Team B"
	*c.Salary = 40
	c.Stats["fpts"] = 1

	assert.Equal(t, "Team A", *rec.Team)
	assert.Equal(t, 12, *rec.Salary)
	assert.Equal(t, 900.0, rec.Stats["fpts"])
}

func TestPlayerRecord_SetStatNilClears(t *testing.T) {
	rec := NewPlayerRecord("x")
	v := 3.5
	rec.SetStat("hr", &v)
	got, ok := rec.Stat("hr")
	require.True(t, ok)
	assert.Equal(t, 3.5, got)

	rec.SetStat("hr", nil)
	_, ok = rec.Stat("hr")
	assert.False(t, ok)
}

func TestPlayerTable_AddColumnKeepsOrder(t *testing.T) {
	tbl := NewPlayerTable(Hitters)
	tbl.AddColumn("fpts")
	tbl.AddColumn("hr")
	tbl.AddColumn("fpts")

	assert.Equal(t, []string{"fpts", "hr"}, tbl.Columns)
}

func TestDraftAction_Value(t *testing.T) {
	salary := 25
	assert.Equal(t, -15, DraftAction{ProjectedSalary: &salary, DraftPrice: 40}.Value())
	assert.Equal(t, -3, DraftAction{DraftPrice: 3}.Value())
}

func TestLeagueConfig_PoolBudgets(t *testing.T) {
	cfg := DefaultLeagueConfig()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 4800.0, cfg.TotalBudget(), 1e-9)
	assert.InDelta(t, 3120.0, cfg.PoolBudget(Hitters), 1e-9)
	assert.InDelta(t, 1680.0, cfg.PoolBudget(Pitchers), 1e-9)
	assert.Equal(t, 240, cfg.ReplacementRank(Hitters))
}

func TestLeagueConfig_Validate(t *testing.T) {
	cfg := DefaultLeagueConfig()
	cfg.TeamCount = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultLeagueConfig()
	cfg.HitterBudgetPct = 120
	assert.Error(t, cfg.Validate())
}

func TestLeagueConfigFromMap(t *testing.T) {
	cfg, invalid := LeagueConfigFromMap(map[string]string{
		ConfigNumTeams:        "10.0",
		ConfigHitterBudgetPct: "60",
		ConfigBudgetPerTeam:   "lots",
	})

	assert.Equal(t, 10, cfg.TeamCount)
	assert.InDelta(t, 60.0, cfg.HitterBudgetPct, 1e-9)
	assert.Equal(t, 400, cfg.BudgetPerTeam)
	assert.Equal(t, []string{ConfigBudgetPerTeam}, invalid)

	roundTrip, invalid := LeagueConfigFromMap(cfg.ToMap())
	assert.Empty(t, invalid)
	assert.Equal(t, cfg, roundTrip)
}

func TestMissingColumnError(t *testing.T) {
	err := &MissingColumnError{Source: "positions.csv", Field: "name", Headers: []string{"Player", "Pos"}}

	assert.True(t, errors.Is(err, ErrMissingRequiredColumn))
	assert.Contains(t, err.Error(), "positions.csv")
	assert.Contains(t, err.Error(), "Player, Pos")
}
