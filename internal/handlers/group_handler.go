package handlers

import (
	"net/http"
	"strings"

	"cambistas-backend/internal/models"
	"cambistas-backend/internal/services"
	"cambistas-backend/pkg/utils"

	"go.uber.org/zap"
)

type GroupHandler struct {
	Service *services.LedgerService
	logger  *zap.Logger
}

func NewGroupHandler(s *services.LedgerService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{Service: s, logger: logger.Named("groups")}
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Service.ListGroups())
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	details, err := decodeAndValidate(w, r, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if details != nil {
		utils.ValidationError(w, details)
		return
	}

	group, err := h.Service.AddGroup(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, group)
}
