package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/settings"
	testingpkg "github.com/aristath/draftboard/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRecalculator struct {
	svc   *settings.Service
	calls []domain.LeagueConfig
}

func (r *recordingRecalculator) Recalculate(ctx context.Context, cfg domain.LeagueConfig) error {
	r.calls = append(r.calls, cfg)
	return r.svc.SaveLeagueConfig(cfg)
}

func newHandler(t *testing.T) (*Handler, *settings.Service) {
	db, cleanup := testingpkg.NewTestDB(t, "settings_handlers")
	t.Cleanup(cleanup)
	svc := settings.NewService(settings.NewRepository(db.Conn(), zerolog.Nop()), nil, zerolog.Nop())
	require.NoError(t, svc.SeedDefaults())
	return NewHandler(svc, zerolog.Nop()), svc
}

func TestHandleGetConfig(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.HandleGetConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var cfg domain.LeagueConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, domain.DefaultLeagueConfig(), cfg)
}

func TestHandleUpdateConfig_PartialBody(t *testing.T) {
	h, svc := newHandler(t)
	recalc := &recordingRecalculator{svc: svc}
	h.SetRecalculator(recalc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"num_teams": 10}`))
	h.HandleUpdateConfig(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, recalc.calls, 1)
	assert.Equal(t, 10, recalc.calls[0].TeamCount)
	assert.Equal(t, 400, recalc.calls[0].BudgetPerTeam)

	cfg, err := svc.LoadLeagueConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.TeamCount)
}

func TestHandleUpdateConfig_Rejects(t *testing.T) {
	h, _ := newHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"num_teams":`},
		{"invalid value", `{"hitter_budget_pct": 120}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleUpdateConfig(rec, httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleListSettings(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.HandleListSettings(rec, httptest.NewRequest(http.MethodGet, "/api/config/keys", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var views []settings.SettingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 5)
}
