package handlers

import (
	"context"
	"net/http"
	"strings"

	"cambistas-backend/internal/models"
	"cambistas-backend/internal/services"
	"cambistas-backend/pkg/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type AgentHandler struct {
	Service *services.LedgerService
	logger  *zap.Logger
}

func NewAgentHandler(s *services.LedgerService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{Service: s, logger: logger.Named("agents")}
}

// AgentRowsResponse is one week of rows for the filtered agents
type AgentRowsResponse struct {
	Week   models.Week        `json:"week"`
	Filter models.AgentFilter `json:"filter"`
	Rows   []models.Row       `json:"rows"`
}

// AgentDetailResponse is an agent with its row for every week
type AgentDetailResponse struct {
	Agent models.Agent `json:"agent"`
	Weeks []models.Row `json:"weeks"`
}

// List returns the rows of the agents matching ?group=&status=&week=
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	rows, err := h.Service.Rows(f)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if rows == nil {
		rows = []models.Row{}
	}
	utils.JSON(w, http.StatusOK, AgentRowsResponse{Week: f.Week, Filter: f, Rows: rows})
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAgentRequest
	details, err := decodeAndValidate(w, r, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if details != nil {
		utils.ValidationError(w, details)
		return
	}

	agent, err := h.Service.AddAgent(r.Context(), strings.TrimSpace(req.Name), req.GroupIDs)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, agent)
}

func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	agent, err := h.Service.GetAgent(id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	resp := AgentDetailResponse{Agent: agent, Weeks: make([]models.Row, 0, len(models.Weeks))}
	for _, week := range models.Weeks {
		row, err := h.Service.AgentRow(id, week)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		resp.Weeks = append(resp.Weeks, row)
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Delete removes the agent and every week entry it had
func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.RemoveAgent(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("agent removed", zap.String("agent_id", id), actor(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AgentHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	week, err := weekFromPath(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	row, err := h.Service.AgentRow(mux.Vars(r)["id"], week)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, row)
}

// RecordTransaction adds a loan, sale or receipt to one week
func (h *AgentHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	week, err := weekFromPath(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	var req models.TransactionRequest
	details, err := decodeAndValidate(w, r, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if details != nil {
		utils.ValidationError(w, details)
		return
	}

	row, err := h.Service.RecordTransaction(r.Context(), mux.Vars(r)["id"], week, req.Type, req.Amount)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusOK, row)
}

func (h *AgentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.weekAction(w, r, "week confirmed", h.Service.ConfirmWeek)
}

func (h *AgentHandler) ZeroOut(w http.ResponseWriter, r *http.Request) {
	h.weekAction(w, r, "week zeroed", h.Service.ZeroOutWeek)
}

func (h *AgentHandler) weekAction(w http.ResponseWriter, r *http.Request, done string, action func(ctx context.Context, agentID string, week models.Week) (models.Row, error)) {
	week, err := weekFromPath(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	id := mux.Vars(r)["id"]
	row, err := action(r.Context(), id, week)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info(done, zap.String("agent_id", id), zap.Int("week", int(week)), actor(r))
	utils.JSON(w, http.StatusOK, row)
}
