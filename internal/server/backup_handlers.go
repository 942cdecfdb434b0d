package server

import (
	"net/http"

	"github.com/aristath/draftboard/internal/reliability"
	"github.com/rs/zerolog"
)

// BackupHandlers lists and triggers backups. service is nil when backups are disabled.
type BackupHandlers struct {
	service *reliability.BackupService
	log     zerolog.Logger
}

// NewBackupHandlers creates backup handlers
func NewBackupHandlers(service *reliability.BackupService, log zerolog.Logger) *BackupHandlers {
	return &BackupHandlers{
		service: service,
		log:     log.With().Str("handler", "backups").Logger(),
	}
}

// HandleListBackups handles GET /api/backups
func (h *BackupHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		h.writeDisabled(w)
		return
	}

	backups, err := h.service.ListBackups(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if backups == nil {
		backups = []reliability.BackupInfo{}
	}
	writeJSON(w, h.log, http.StatusOK, backups)
}

// HandleTriggerBackup handles POST /api/backups
func (h *BackupHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		h.writeDisabled(w)
		return
	}

	key, err := h.service.CreateAndUploadBackup(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, map[string]string{"key": key})
}

func (h *BackupHandlers) writeDisabled(w http.ResponseWriter) {
	writeJSON(w, h.log, http.StatusServiceUnavailable, map[string]string{"error": "backups are disabled"})
}
