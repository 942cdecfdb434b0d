package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/aristath/draftboard/internal/domain"
	"github.com/rs/zerolog"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := s.container.DB.Conn().PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, s.log, code, map[string]interface{}{
		"status":  status,
		"service": "draftboard",
	})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError maps domain errors to status codes and writes a JSON error body
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, log, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound), errors.Is(err, domain.ErrNoModel):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyDrafted), errors.Is(err, errPipelineBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidPrice), errors.Is(err, domain.ErrUnknownPopulation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingRequiredColumn), errors.Is(err, domain.ErrInsufficientTrainingData),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
