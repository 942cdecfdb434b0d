package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aristath/draftboard/internal/config"
	"github.com/aristath/draftboard/internal/di"
	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/events"
	"github.com/aristath/draftboard/internal/modules/draft"
	testingpkg "github.com/aristath/draftboard/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func newTestServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:                 dir,
		SourceDir:               dir,
		DBPath:                  filepath.Join(dir, "draft.db"),
		ModelDir:                filepath.Join(dir, "models"),
		PruneOwnershipThreshold: 5,
		PruneUnknownOwnership:   true,
		RidgeAlpha:              1,
		HistorySeason:           2024,
		MaintenanceSchedule:     "0 4 * * *",
		Backup:                  &config.BackupConfig{},
	}

	container, _, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	hitters := testingpkg.NewPlayerTableFixture(domain.Hitters,
		testingpkg.FixturePlayer{Name: "Mike Trout", Team: "LAA", Salary: 40, Position: "OF", Ownership: -1,
			Stats: map[string]float64{domain.ColumnProjectedPoints: 600}},
		testingpkg.FixturePlayer{Name: "Mookie Betts", Team: "LAD", Salary: 35, Position: "SS,OF", Ownership: -1,
			Stats: map[string]float64{domain.ColumnProjectedPoints: 550}},
		testingpkg.FixturePlayer{Name: "Jose Ramirez", Team: "CLE", Position: "3B", Ownership: -1,
			Stats: map[string]float64{domain.ColumnProjectedPoints: 500}},
	)
	require.NoError(t, container.PlayerRepo.ReplaceAll(hitters))

	s := New(Config{Port: 0, DevMode: true, DataDir: dir, Container: container}, zerolog.Nop())
	return s, container
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestListPlayers(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/players/hitters?sort="+domain.ColumnProjectedPoints, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PlayersResponse
	decode(t, rec, &resp)
	assert.Equal(t, domain.Hitters, resp.Population)
	require.Equal(t, 3, resp.Count)
	assert.Equal(t, "Mike Trout", resp.Players[0].Name)
	assert.Equal(t, "Jose Ramirez", resp.Players[2].Name)

	rec = do(t, s, http.MethodGet, "/api/players/hitters?position=SS&search=Betts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Mookie Betts", resp.Players[0].Name)

	rec = do(t, s, http.MethodGet, "/api/players/hitters?min_"+domain.ColumnProjectedPoints+"=520", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, 2, resp.Count)
}

func TestListPlayers_BadRequests(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/players/goalies", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/players/hitters?limit=ten", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/players/hitters?show_drafted=maybe", "").Code)
}

func TestPlayerTeamsAndColumns(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/players/hitters/teams", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var teams map[string][]string
	decode(t, rec, &teams)
	assert.ElementsMatch(t, []string{"LAA", "LAD", "CLE"}, teams["teams"])

	rec = do(t, s, http.MethodGet, "/api/players/hitters/columns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cols map[string][]string
	decode(t, rec, &cols)
	assert.Contains(t, cols["columns"], domain.ColumnProjectedPoints)
}

func TestDraftFlow(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/draft", `{"population":"hitters","player_name":"Mike Trout","price":45,"team":"Team A"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry draft.LogEntry
	decode(t, rec, &entry)
	assert.Equal(t, "Mike Trout", entry.PlayerName)
	assert.Equal(t, 45, entry.DraftPrice)
	assert.Equal(t, -5, entry.Value)

	// Drafted players leave the default board
	var board PlayersResponse
	decode(t, do(t, s, http.MethodGet, "/api/players/hitters", ""), &board)
	assert.Equal(t, 2, board.Count)
	decode(t, do(t, s, http.MethodGet, "/api/players/hitters?show_drafted=true", ""), &board)
	assert.Equal(t, 3, board.Count)

	rec = do(t, s, http.MethodPost, "/api/draft", `{"population":"hitters","player_name":"Mike Trout","price":50,"team":"Team B"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var log []draft.LogEntry
	decode(t, do(t, s, http.MethodGet, "/api/draft/log", ""), &log)
	require.Len(t, log, 1)
	assert.Equal(t, "Team A", log[0].DraftingTeam)

	var roster draft.Roster
	decode(t, do(t, s, http.MethodGet, "/api/roster/Team%20A", ""), &roster)
	assert.Equal(t, 45, roster.Spent)
	assert.Equal(t, 355, roster.Remaining)
	require.Len(t, roster.Players, 1)

	var undo map[string]interface{}
	rec = do(t, s, http.MethodPost, "/api/draft/undo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &undo)
	assert.Equal(t, true, undo["undone"])
	assert.Equal(t, "Mike Trout", undo["player_name"])

	decode(t, do(t, s, http.MethodPost, "/api/draft/undo", ""), &undo)
	assert.Equal(t, false, undo["undone"])

	decode(t, do(t, s, http.MethodGet, "/api/draft/log", ""), &log)
	assert.Empty(t, log)
}

func TestDraft_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"unknown player", `{"population":"hitters","player_name":"Nobody","price":5}`, http.StatusNotFound},
		{"negative price", `{"population":"hitters","player_name":"Mike Trout","price":-1}`, http.StatusBadRequest},
		{"unknown population", `{"population":"goalies","player_name":"Mike Trout","price":5}`, http.StatusBadRequest},
		{"missing name", `{"population":"hitters","price":5}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(t, s, http.MethodPost, "/api/draft", tt.body).Code)
		})
	}
}

func TestConfigRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg domain.LeagueConfig
	decode(t, rec, &cfg)
	assert.Equal(t, 12, cfg.TeamCount)

	rec = do(t, s, http.MethodPut, "/api/config", `{"num_teams":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigUpdate_PipelineBusy(t *testing.T) {
	s, _ := newTestServer(t)

	s.pipeline.mu.Lock()
	defer s.pipeline.mu.Unlock()

	assert.Equal(t, http.StatusInternalServerError, do(t, s, http.MethodPut, "/api/config", `{"num_teams":10}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, "/api/pipeline/run", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, "/api/pipeline/train", "").Code)
}

func TestPipelineRun_MissingSources(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/pipeline/run", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestImportHistory(t *testing.T) {
	s, c := newTestServer(t)

	csv := "Player,Winning Bid,Pos\nMike Trout,$44,OF\nMookie Betts,$39,SS\n"
	rec := do(t, s, http.MethodPost, "/api/history/import?season=2024", csv)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.EqualValues(t, 2, body["imported"])
	assert.EqualValues(t, 2024, body["season"])

	records, err := c.HistoryRepo.GetAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/history/import?season=abc", csv).Code)
}

func TestBackups_Disabled(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/backups", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodPost, "/api/backups", "").Code)
}

func TestSystemRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/system/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status SystemStatusResponse
	decode(t, rec, &status)
	assert.True(t, status.DatabaseOK)
	assert.Equal(t, "healthy", status.Status)

	rec = do(t, s, http.MethodGet, "/api/system/database", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var dbStats DatabaseStatsResponse
	decode(t, rec, &dbStats)
	assert.Equal(t, "draft", dbStats.Name)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/system/disk", "").Code)
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, http.MethodGet, "/api/players/hitters", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "draftboard_http_requests_total")
	assert.Contains(t, body, `route="/api/players/{population}`)
	assert.NotContains(t, body, `route="/api/players/hitters`)
}

func TestEventsWebsocket(t *testing.T) {
	s, c := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events/ws?types=" + string(events.PlayerDrafted)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return c.EventManager.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	c.EventManager.Emit(events.DraftUndone, "draft", map[string]interface{}{"player_name": "ignored"})
	_, err = c.DraftService.Draft(domain.Hitters, "Mike Trout", 45, "Team A")
	require.NoError(t, err)

	var event events.Event
	require.NoError(t, wsjson.Read(ctx, conn, &event))
	assert.Equal(t, events.PlayerDrafted, event.Type)
	assert.Equal(t, "Mike Trout", event.Data["player_name"])
}

func TestEventsStream(t *testing.T) {
	s, c := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readData := func() map[string]interface{} {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				var v map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &v))
				return v
			}
		}
	}

	assert.Equal(t, "connected", readData()["type"])

	require.Eventually(t, func() bool { return c.EventManager.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	c.EventManager.Emit(events.SettingsChanged, "settings", map[string]interface{}{"num_teams": 10})

	event := readData()
	assert.Equal(t, string(events.SettingsChanged), event["type"])
	assert.Equal(t, "settings", event["module"])
}

func TestParseFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/players/hitters?search=+trout+&position=OF,+SS,&show_drafted=1&sort=hr&asc=true&limit=25&min_hr=10&max_hr=40&max_sb=5", nil)

	f, err := parseFilter(req)
	require.NoError(t, err)
	assert.Equal(t, "trout", f.Search)
	assert.Equal(t, []string{"OF", "SS"}, f.Positions)
	assert.True(t, f.ShowDrafted)
	assert.True(t, f.SortAsc)
	assert.Equal(t, "hr", f.SortBy)
	assert.Equal(t, 25, f.Limit)
	require.Contains(t, f.StatFilters, "hr")
	assert.InDelta(t, 10, *f.StatFilters["hr"].Min, 1e-9)
	assert.InDelta(t, 40, *f.StatFilters["hr"].Max, 1e-9)
	assert.Nil(t, f.StatFilters["sb"].Min)
	assert.InDelta(t, 5, *f.StatFilters["sb"].Max, 1e-9)
}
