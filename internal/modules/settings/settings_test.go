package settings

import (
	"database/sql"
	"testing"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory valuation_config table
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE valuation_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT 0
		)
	`)
	require.NoError(t, err)
	return db
}

func TestRepository_GetSet(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	v, err := repo.Get("num_teams")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, repo.Set("num_teams", "10"))
	require.NoError(t, repo.Set("num_teams", "14"))

	v, err = repo.Get("num_teams")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "14", *v)

	require.NoError(t, repo.Delete("num_teams"))
	v, err = repo.Get("num_teams")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRepository_TypedGetters(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.Set("num_teams", "12.0"))
	require.NoError(t, repo.Set("hitter_budget_pct", "62.5"))
	require.NoError(t, repo.Set("budget_per_team", "lots"))

	n, err := repo.GetInt("num_teams", 0)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	pct, err := repo.GetFloat("hitter_budget_pct", 0)
	require.NoError(t, err)
	assert.Equal(t, 62.5, pct)

	budget, err := repo.GetInt("budget_per_team", 400)
	require.NoError(t, err)
	assert.Equal(t, 400, budget)

	missing, err := repo.GetFloat("missing", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, missing)
}

func TestRepository_SeedDefaultsKeepsExisting(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.Set(domain.ConfigNumTeams, "10"))

	n, err := repo.SeedDefaults(SettingDefaults())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "10", all[domain.ConfigNumTeams])
	assert.Equal(t, "400", all[domain.ConfigBudgetPerTeam])

	n, err = repo.SeedDefaults(SettingDefaults())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestService_LoadLeagueConfig(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	svc := NewService(repo, nil, zerolog.Nop())

	t.Run("defaults when empty", func(t *testing.T) {
		cfg, err := svc.LoadLeagueConfig()
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultLeagueConfig(), cfg)
	})

	t.Run("invalid values fall back", func(t *testing.T) {
		require.NoError(t, repo.Set(domain.ConfigNumTeams, "ten"))
		require.NoError(t, repo.Set(domain.ConfigBudgetPerTeam, "260"))

		cfg, err := svc.LoadLeagueConfig()
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.TeamCount)
		assert.Equal(t, 260, cfg.BudgetPerTeam)
	})
}

func TestService_SaveLeagueConfig(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	em := events.NewManager(zerolog.Nop())
	var emitted []events.EventType
	em.Subscribe(func(e *events.Event) { emitted = append(emitted, e.Type) })
	svc := NewService(repo, em, zerolog.Nop())

	cfg := domain.LeagueConfig{TeamCount: 10, BudgetPerTeam: 260, HitterBudgetPct: 67.5, HittersPerTeam: 14, PitchersPerTeam: 9}
	require.NoError(t, svc.SaveLeagueConfig(cfg))

	loaded, err := svc.LoadLeagueConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, []events.EventType{events.SettingsChanged}, emitted)

	bad := cfg
	bad.TeamCount = 0
	assert.Error(t, svc.SaveLeagueConfig(bad))
}

func TestService_List(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	svc := NewService(repo, nil, zerolog.Nop())
	require.NoError(t, svc.SeedDefaults())

	views, err := svc.List()
	require.NoError(t, err)
	require.Len(t, views, 5)
	assert.Equal(t, domain.ConfigBudgetPerTeam, views[0].Key)
	assert.NotEmpty(t, views[0].Description)
}
