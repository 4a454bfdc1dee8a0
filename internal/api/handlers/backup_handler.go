package handlers

import (
	"net/http"

	"github.com/isdelr/student-records/internal/services"
	"github.com/rs/zerolog/log"
)

// BackupHandler handles HTTP requests related to backups.
type BackupHandler struct {
	service services.BackupServiceProvider
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(service services.BackupServiceProvider) *BackupHandler {
	return &BackupHandler{service: service}
}

// CreateBackupPayload is the expected JSON body for creating a backup.
type CreateBackupPayload struct {
	Name string `json:"name"`
}

// GetAll handles the request to list backups.
func (h *BackupHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	backups, err := h.service.ListBackups(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve backups")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve backups")
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

// Create handles the request to create a new backup.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateBackupPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "Backup name is required")
		return
	}

	backup, err := h.service.CreateBackup(r.Context(), payload.Name)
	if err != nil {
		log.Error().Err(err).Str("backup_name", payload.Name).Msg("Failed to create backup")
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, backup)
}
