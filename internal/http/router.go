package http

import (
	"net/http"

	"cambistas-backend/internal/handlers"
	"cambistas-backend/internal/middleware"
	"cambistas-backend/internal/monitoring"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Auth    *handlers.AuthHandler
	Groups  *handlers.GroupHandler
	Agents  *handlers.AgentHandler
	Summary *handlers.SummaryHandler
	Reports *handlers.ReportHandler
	Backups *handlers.BackupHandler
	Health  *handlers.HealthHandler
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, hub *monitoring.Hub, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RequestLogger(logger.Named("http")))

	// Public routes
	r.HandleFunc("/auth/register", h.Auth.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")

	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Change feed; the token comes as a query parameter on the handshake
	r.Handle("/ws", authMiddleware.Authenticate(http.HandlerFunc(hub.ServeWS))).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/groups", h.Groups.List).Methods("GET")
	api.HandleFunc("/groups", h.Groups.Create).Methods("POST")

	api.HandleFunc("/agents", h.Agents.List).Methods("GET")
	api.HandleFunc("/agents", h.Agents.Create).Methods("POST")
	api.HandleFunc("/agents/{id}", h.Agents.Get).Methods("GET")
	api.HandleFunc("/agents/{id}", h.Agents.Delete).Methods("DELETE")
	api.HandleFunc("/agents/{id}/weeks/{week}", h.Agents.GetWeek).Methods("GET")
	api.HandleFunc("/agents/{id}/weeks/{week}/transactions", h.Agents.RecordTransaction).Methods("POST")
	api.HandleFunc("/agents/{id}/weeks/{week}/confirm", h.Agents.Confirm).Methods("POST")
	api.HandleFunc("/agents/{id}/weeks/{week}/zero-out", h.Agents.ZeroOut).Methods("POST")

	api.HandleFunc("/summary", h.Summary.Get).Methods("GET")

	api.HandleFunc("/reports/weeks/{week}/csv", h.Reports.CSV).Methods("GET")
	api.HandleFunc("/reports/weeks/{week}/pdf", h.Reports.PDF).Methods("GET")

	api.HandleFunc("/backups", h.Backups.List).Methods("GET")
	api.HandleFunc("/backups", h.Backups.Create).Methods("POST")

	return r
}
