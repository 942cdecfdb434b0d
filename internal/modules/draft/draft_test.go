package draft

import (
	"testing"
	"time"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/events"
	"github.com/aristath/draftboard/internal/modules/players"
	testingpkg "github.com/aristath/draftboard/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *Repository, *players.Repository, *[]events.EventType) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "draft")
	t.Cleanup(cleanup)

	playerRepo := players.NewRepository(db.Conn(), zerolog.Nop())
	require.NoError(t, playerRepo.ReplaceAll(testingpkg.NewPlayerTableFixture(domain.Hitters,
		testingpkg.FixturePlayer{Name: "Mike Trout", Team: "Team A", Salary: 45, Position: "OF", Ownership: 99, Stats: map[string]float64{"proj_fpts": 900}},
		testingpkg.FixturePlayer{Name: "Juan Soto", Ownership: -1, Stats: map[string]float64{"proj_fpts": 950}},
	)))
	require.NoError(t, playerRepo.ReplaceAll(testingpkg.NewPlayerTableFixture(domain.Pitchers,
		testingpkg.FixturePlayer{Name: "Gerrit Cole", Salary: 30, Ownership: 90, Stats: map[string]float64{"proj_fpts": 700}},
	)))

	repo := NewRepository(db.Conn(), zerolog.Nop())
	repo.now = func() time.Time { return time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC) }

	em := events.NewManager(zerolog.Nop())
	var emitted []events.EventType
	em.Subscribe(func(e *events.Event) { emitted = append(emitted, e.Type) })

	return NewService(repo, em, zerolog.Nop()), repo, playerRepo, &emitted
}

func TestDraftThenUndo_RestoresState(t *testing.T) {
	svc, _, playerRepo, emitted := setup(t)

	action, err := svc.Draft(domain.Hitters, "Mike Trout", 40, "Team A")
	require.NoError(t, err)
	assert.NotEmpty(t, action.ActionID)
	require.NotNil(t, action.ProjectedSalary)
	assert.Equal(t, 45, *action.ProjectedSalary)

	tbl, err := playerRepo.Load(domain.Hitters)
	require.NoError(t, err)
	trout := tbl.Find("Mike Trout")
	require.NotNil(t, trout)
	assert.True(t, trout.IsDrafted)
	require.NotNil(t, trout.DraftPrice)
	assert.Equal(t, 40, *trout.DraftPrice)

	name, ok, err := svc.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Mike Trout", name)

	tbl, err = playerRepo.Load(domain.Hitters)
	require.NoError(t, err)
	trout = tbl.Find("Mike Trout")
	assert.False(t, trout.IsDrafted)
	assert.Nil(t, trout.DraftPrice)

	log, err := svc.Log()
	require.NoError(t, err)
	assert.Empty(t, log)

	assert.Equal(t, []events.EventType{events.PlayerDrafted, events.DraftUndone}, *emitted)
}

func TestDraft_MatchesNormalizedName(t *testing.T) {
	svc, _, playerRepo, _ := setup(t)

	action, err := svc.Draft(domain.Hitters, "  Juan  Sotó Jr. ", 12, "Team B")
	require.NoError(t, err)
	assert.Equal(t, "Juan Soto", action.PlayerName)

	tbl, err := playerRepo.Load(domain.Hitters)
	require.NoError(t, err)
	assert.True(t, tbl.Find("Juan Soto").IsDrafted)
}

func TestUndo_EmptyLog(t *testing.T) {
	svc, _, _, emitted := setup(t)

	name, ok, err := svc.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", name)
	assert.Empty(t, *emitted)
}

func TestUndo_RevertsOnlyLatest(t *testing.T) {
	svc, _, playerRepo, _ := setup(t)

	_, err := svc.Draft(domain.Hitters, "Mike Trout", 40, "Team A")
	require.NoError(t, err)
	_, err = svc.Draft(domain.Pitchers, "Gerrit Cole", 28, "Team B")
	require.NoError(t, err)

	name, ok, err := svc.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Gerrit Cole", name)

	hitters, err := playerRepo.Load(domain.Hitters)
	require.NoError(t, err)
	assert.True(t, hitters.Find("Mike Trout").IsDrafted)

	pitchers, err := playerRepo.Load(domain.Pitchers)
	require.NoError(t, err)
	assert.False(t, pitchers.Find("Gerrit Cole").IsDrafted)
}

func TestDraft_Errors(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Draft(domain.Hitters, "Nobody", 5, "Team A")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	_, err = svc.Draft(domain.Pitchers, "Mike Trout", 5, "Team A")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	_, err = svc.Draft(domain.Hitters, "Mike Trout", -1, "Team A")
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Draft(domain.Hitters, "Mike Trout", 40, "Team A")
	require.NoError(t, err)
	_, err = svc.Draft(domain.Hitters, "Mike Trout", 41, "Team B")
	assert.ErrorIs(t, err, domain.ErrAlreadyDrafted)

	log, err := svc.Log()
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestLog_NewestFirstWithValue(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Draft(domain.Hitters, "Mike Trout", 40, "Team A")
	require.NoError(t, err)
	_, err = svc.Draft(domain.Hitters, "Juan Soto", 12, "Team A")
	require.NoError(t, err)

	log, err := svc.Log()
	require.NoError(t, err)
	require.Len(t, log, 2)

	assert.Equal(t, "Juan Soto", log[0].PlayerName)
	assert.Nil(t, log[0].ProjectedSalary)
	assert.Equal(t, -12, log[0].Value)

	assert.Equal(t, "Mike Trout", log[1].PlayerName)
	assert.Equal(t, domain.Hitters, log[1].Population)
	assert.Equal(t, 5, log[1].Value)
	assert.Equal(t, time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC), log[1].Timestamp)
}

func TestRoster(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Draft(domain.Hitters, "Mike Trout", 40, "Team A")
	require.NoError(t, err)
	_, err = svc.Draft(domain.Pitchers, "Gerrit Cole", 28, "Team A")
	require.NoError(t, err)
	_, err = svc.Draft(domain.Hitters, "Juan Soto", 50, "Team B")
	require.NoError(t, err)

	roster, err := svc.Roster("Team A", 400)
	require.NoError(t, err)
	require.Len(t, roster.Players, 2)
	assert.Equal(t, "Mike Trout", roster.Players[0].PlayerName)
	assert.Equal(t, 68, roster.Spent)
	assert.Equal(t, 332, roster.Remaining)
	assert.Equal(t, 5+2, roster.Value)
}
