package handlers

import (
	"net/http"

	"cambistas-backend/internal/services"
	"cambistas-backend/pkg/utils"

	"go.uber.org/zap"
)

type SummaryHandler struct {
	Service *services.LedgerService
	logger  *zap.Logger
}

func NewSummaryHandler(s *services.LedgerService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{Service: s, logger: logger.Named("summary")}
}

// Get folds the four weeks over the agents selected by the query filter.
// The week only matters when a status filter is set.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	summary, err := h.Service.MonthlySummary(f)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}
