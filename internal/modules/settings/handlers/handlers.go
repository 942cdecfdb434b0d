// Package handlers provides HTTP handlers for league configuration.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/aristath/draftboard/internal/modules/settings"
	"github.com/rs/zerolog"
)

// Recalculator persists a new league config and re-values both populations
type Recalculator interface {
	Recalculate(ctx context.Context, cfg domain.LeagueConfig) error
}

// Handler provides HTTP handlers for config endpoints
type Handler struct {
	service      *settings.Service
	recalculator Recalculator
	log          zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "settings").Logger(),
	}
}

// SetRecalculator sets the recalculator (for dependency injection).
// Without one, updates are persisted but values are not recomputed.
func (h *Handler) SetRecalculator(recalculator Recalculator) {
	h.recalculator = recalculator
}

// HandleGetConfig handles GET /api/config
func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.LoadLeagueConfig()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load league config")
		http.Error(w, "Failed to load config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.log, http.StatusOK, cfg)
}

// HandleListSettings handles GET /api/config/keys
func (h *Handler) HandleListSettings(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list config keys")
		http.Error(w, "Failed to list config", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.log, http.StatusOK, views)
}

// HandleUpdateConfig handles PUT /api/config.
// Fields omitted from the body keep their current value.
func (h *Handler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.LoadLeagueConfig()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load league config")
		http.Error(w, "Failed to load config", http.StatusInternalServerError)
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.recalculator != nil {
		err = h.recalculator.Recalculate(r.Context(), cfg)
	} else {
		err = h.service.SaveLeagueConfig(cfg)
	}
	if err != nil {
		h.log.Error().Err(err).Interface("config", cfg).Msg("Failed to apply league config")
		http.Error(w, "Failed to apply config", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, http.StatusOK, cfg)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
