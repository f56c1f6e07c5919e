package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/middleware"
	"cambistas-backend/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// defaultWeek is the week shown when a request names none
const defaultWeek models.Week = 1

// filterFromQuery reads ?group=&status=&week=. Missing values select every
// group, every status and the first week.
func filterFromQuery(r *http.Request) (models.AgentFilter, error) {
	q := r.URL.Query()
	f := models.AgentFilter{
		GroupID: q.Get("group"),
		Status:  models.StatusFilter(q.Get("status")),
		Week:    defaultWeek,
	}
	if f.GroupID == "" {
		f.GroupID = models.GroupAll
	}
	if f.Status == "" {
		f.Status = models.StatusFilterAll
	}
	if w := q.Get("week"); w != "" {
		week, err := ledger.ParseWeek(w)
		if err != nil {
			return f, err
		}
		f.Week = week
	}
	return f, nil
}

func weekFromPath(r *http.Request) (models.Week, error) {
	return ledger.ParseWeek(mux.Vars(r)["week"])
}

func limitFromQuery(r *http.Request, def, max int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// clientIP extracts the caller address, preferring proxy headers
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// actor is the audit field naming the authenticated caller
func actor(r *http.Request) zap.Field {
	username, _ := middleware.UsernameFromContext(r.Context())
	return zap.String("user", username)
}
