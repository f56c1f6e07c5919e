package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/models"
	"cambistas-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.ErrInvalidAmount, http.StatusBadRequest},
		{ledger.ErrInvalidWeek, http.StatusBadRequest},
		{ledger.ErrInvalidTransactionType, http.StatusBadRequest},
		{ledger.ErrInvalidStatusFilter, http.StatusBadRequest},
		{services.ErrMissingCredential, http.StatusBadRequest},
		{services.ErrInvalidCredential, http.StatusUnauthorized},
		{ledger.ErrAgentNotFound, http.StatusNotFound},
		{services.ErrDuplicateCredential, http.StatusConflict},
		{ledger.ErrOutstandingBalance, http.StatusConflict},
		{fmt.Errorf("%w: disk full", services.ErrPersistenceWrite), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestFilterFromQuery(t *testing.T) {
	f, err := filterFromQuery(httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	require.NoError(t, err)
	assert.Equal(t, models.AgentFilter{GroupID: models.GroupAll, Status: models.StatusFilterAll, Week: 1}, f)

	f, err = filterFromQuery(httptest.NewRequest(http.MethodGet, "/api/agents?group=g1&status=pending&week=3", nil))
	require.NoError(t, err)
	assert.Equal(t, models.AgentFilter{GroupID: "g1", Status: models.StatusFilterPending, Week: 3}, f)

	_, err = filterFromQuery(httptest.NewRequest(http.MethodGet, "/api/agents?week=0", nil))
	assert.ErrorIs(t, err, ledger.ErrInvalidWeek)
}

func TestLimitFromQuery(t *testing.T) {
	req := func(q string) *http.Request { return httptest.NewRequest(http.MethodGet, "/api/backups"+q, nil) }
	assert.Equal(t, 20, limitFromQuery(req(""), 20, 100))
	assert.Equal(t, 20, limitFromQuery(req("?limit=-1"), 20, 100))
	assert.Equal(t, 5, limitFromQuery(req("?limit=5"), 20, 100))
	assert.Equal(t, 100, limitFromQuery(req("?limit=5000"), 20, 100))
}

func TestValidatorUsesJSONNames(t *testing.T) {
	err := validate.Struct(models.TransactionRequest{Type: "gift"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'type'")
}
