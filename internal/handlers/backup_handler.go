package handlers

import (
	"net/http"

	"cambistas-backend/internal/services"
	"cambistas-backend/pkg/utils"

	"go.uber.org/zap"
)

type BackupHandler struct {
	Service *services.BackupService
	logger  *zap.Logger
}

func NewBackupHandler(s *services.BackupService, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{Service: s, logger: logger.Named("backups")}
}

// List returns recent R2 backups, ?limit= defaults to 20
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.Service.List(r.Context(), limitFromQuery(r, 20, 100))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  h.Service.Status(),
		"backups": backups,
	})
}

// Create runs a backup right away
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	key, err := h.Service.BackupNow(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("manual backup stored", zap.String("key", key), actor(r))
	utils.JSON(w, http.StatusCreated, map[string]string{"key": key})
}
