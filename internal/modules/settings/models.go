package settings

import "github.com/aristath/draftboard/internal/domain"

// SettingDefaults returns the seeded league configuration as persisted strings
func SettingDefaults() map[string]string {
	return domain.DefaultLeagueConfig().ToMap()
}

// SettingDescriptions documents each league key for the API
var SettingDescriptions = map[string]string{
	domain.ConfigNumTeams:        "Number of teams in the league",
	domain.ConfigBudgetPerTeam:   "Auction budget of each team in dollars",
	domain.ConfigHitterBudgetPct: "Share of the league budget spent on hitters (0-100)",
	domain.ConfigHittersPerTeam:  "Hitter roster slots per team",
	domain.ConfigPitchersPerTeam: "Pitcher roster slots per team",
}

// SettingView is one key as returned by the API
type SettingView struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}
