package domain

import (
	"fmt"
	"strconv"
)

// League configuration keys as persisted in the valuation_config table
const (
	ConfigNumTeams        = "num_teams"
	ConfigBudgetPerTeam   = "budget_per_team"
	ConfigHitterBudgetPct = "hitter_budget_pct"
	ConfigHittersPerTeam  = "hitters_per_team"
	ConfigPitchersPerTeam = "pitchers_per_team"
)

// LeagueConfig holds the economic parameters of the league.
// It is read once per valuation run and passed by value.
type LeagueConfig struct {
	TeamCount       int     `json:"num_teams"`
	BudgetPerTeam   int     `json:"budget_per_team"`
	HitterBudgetPct float64 `json:"hitter_budget_pct"` // 0-100
	HittersPerTeam  int     `json:"hitters_per_team"`
	PitchersPerTeam int     `json:"pitchers_per_team"`
}

// DefaultLeagueConfig returns a 12-team, $400 league with a 65/35 hitter/pitcher split
func DefaultLeagueConfig() LeagueConfig {
	return LeagueConfig{
		TeamCount:       12,
		BudgetPerTeam:   400,
		HitterBudgetPct: 65,
		HittersPerTeam:  20,
		PitchersPerTeam: 20,
	}
}

// Validate rejects configurations the valuation cannot use
func (c LeagueConfig) Validate() error {
	if c.TeamCount <= 0 {
		return fmt.Errorf("num_teams must be positive, got %d", c.TeamCount)
	}
	if c.BudgetPerTeam < 0 {
		return fmt.Errorf("budget_per_team must not be negative, got %d", c.BudgetPerTeam)
	}
	if c.HitterBudgetPct < 0 || c.HitterBudgetPct > 100 {
		return fmt.Errorf("hitter_budget_pct must be within 0-100, got %g", c.HitterBudgetPct)
	}
	if c.HittersPerTeam <= 0 {
		return fmt.Errorf("hitters_per_team must be positive, got %d", c.HittersPerTeam)
	}
	if c.PitchersPerTeam <= 0 {
		return fmt.Errorf("pitchers_per_team must be positive, got %d", c.PitchersPerTeam)
	}
	return nil
}

// TotalBudget is the league-wide auction budget
func (c LeagueConfig) TotalBudget() float64 {
	return float64(c.TeamCount * c.BudgetPerTeam)
}

// PoolBudget is the share of the total budget allocated to a population
func (c LeagueConfig) PoolBudget(pop Population) float64 {
	share := c.HitterBudgetPct / 100
	if pop == Pitchers {
		share = 1 - share
	}
	return c.TotalBudget() * share
}

// SlotsPerTeam is the number of roster slots a team fills from a population
func (c LeagueConfig) SlotsPerTeam(pop Population) int {
	if pop == Pitchers {
		return c.PitchersPerTeam
	}
	return c.HittersPerTeam
}

// ReplacementRank is the 1-based rank of the replacement-level player
func (c LeagueConfig) ReplacementRank(pop Population) int {
	return c.TeamCount * c.SlotsPerTeam(pop)
}

// ToMap renders the config as key/value strings for persistence
func (c LeagueConfig) ToMap() map[string]string {
	return map[string]string{
		ConfigNumTeams:        strconv.Itoa(c.TeamCount),
		ConfigBudgetPerTeam:   strconv.Itoa(c.BudgetPerTeam),
		ConfigHitterBudgetPct: strconv.FormatFloat(c.HitterBudgetPct, 'f', -1, 64),
		ConfigHittersPerTeam:  strconv.Itoa(c.HittersPerTeam),
		ConfigPitchersPerTeam: strconv.Itoa(c.PitchersPerTeam),
	}
}

// LeagueConfigFromMap overlays persisted values on the defaults.
// Keys that fail to parse keep their default and are returned in invalid.
func LeagueConfigFromMap(values map[string]string) (cfg LeagueConfig, invalid []string) {
	cfg = DefaultLeagueConfig()

	ints := []struct {
		key string
		dst *int
	}{
		{ConfigNumTeams, &cfg.TeamCount},
		{ConfigBudgetPerTeam, &cfg.BudgetPerTeam},
		{ConfigHittersPerTeam, &cfg.HittersPerTeam},
		{ConfigPitchersPerTeam, &cfg.PitchersPerTeam},
	}
	for _, f := range ints {
		raw, ok := values[f.key]
		if !ok {
			continue
		}
		// Parse via float to accept "12.0"
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			invalid = append(invalid, f.key)
			continue
		}
		*f.dst = int(v)
	}

	if raw, ok := values[ConfigHitterBudgetPct]; ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			invalid = append(invalid, ConfigHitterBudgetPct)
		} else {
			cfg.HitterBudgetPct = v
		}
	}

	return cfg, invalid
}
