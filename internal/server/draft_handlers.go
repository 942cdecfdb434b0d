package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/metrics"
	"github.com/aristath/draftboard/internal/modules/draft"
	"github.com/aristath/draftboard/internal/modules/settings"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// DraftHandlers serves draft, undo, log and rosters
type DraftHandlers struct {
	service  *draft.Service
	settings *settings.Service
	metrics  *metrics.Manager
	log      zerolog.Logger
}

// NewDraftHandlers creates draft handlers
func NewDraftHandlers(service *draft.Service, settingsService *settings.Service, metricsManager *metrics.Manager, log zerolog.Logger) *DraftHandlers {
	return &DraftHandlers{
		service:  service,
		settings: settingsService,
		metrics:  metricsManager,
		log:      log.With().Str("handler", "draft").Logger(),
	}
}

// DraftRequest is the body of POST /api/draft
type DraftRequest struct {
	Population string `json:"population"`
	PlayerName string `json:"player_name"`
	Price      int    `json:"price"`
	Team       string `json:"team"`
}

// HandleDraft handles POST /api/draft
func (h *DraftHandlers) HandleDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.log, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if req.PlayerName == "" {
		writeJSON(w, h.log, http.StatusBadRequest, map[string]string{"error": "player_name is required"})
		return
	}

	pop, err := domain.ParsePopulation(req.Population)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	action, err := h.service.Draft(pop, req.PlayerName, req.Price, strings.TrimSpace(req.Team))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.RecordDraftAction("draft")

	writeJSON(w, h.log, http.StatusCreated, draft.LogEntry{DraftAction: action, Value: action.Value()})
}

// HandleUndo handles POST /api/draft/undo
func (h *DraftHandlers) HandleUndo(w http.ResponseWriter, r *http.Request) {
	name, ok, err := h.service.Undo()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !ok {
		writeJSON(w, h.log, http.StatusOK, map[string]interface{}{"undone": false})
		return
	}
	h.metrics.RecordDraftAction("undo")

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"undone":      true,
		"player_name": name,
	})
}

// HandleLog handles GET /api/draft/log
func (h *DraftHandlers) HandleLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Log()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if entries == nil {
		entries = []draft.LogEntry{}
	}
	writeJSON(w, h.log, http.StatusOK, entries)
}

// HandleRoster handles GET /api/roster/{team}
func (h *DraftHandlers) HandleRoster(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.LoadLeagueConfig()
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	roster, err := h.service.Roster(chi.URLParam(r, "team"), cfg.BudgetPerTeam)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if roster.Players == nil {
		roster.Players = []draft.LogEntry{}
	}
	writeJSON(w, h.log, http.StatusOK, roster)
}
