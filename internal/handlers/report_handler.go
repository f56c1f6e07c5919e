package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"cambistas-backend/internal/models"
	"cambistas-backend/internal/services"

	"go.uber.org/zap"
)

type ReportHandler struct {
	Service *services.ReportService
	logger  *zap.Logger
}

func NewReportHandler(s *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{Service: s, logger: logger.Named("reports")}
}

func (h *ReportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.Service.CSV)
}

func (h *ReportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.Service.PDF)
}

func (h *ReportHandler) serve(w http.ResponseWriter, r *http.Request, render func(context.Context, models.AgentFilter) (*services.Report, error)) {
	week, err := weekFromPath(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	f.Week = week

	report, err := render(r.Context(), f)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	if report.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Data)
}
