package handlers

import (
	"errors"
	"net/http"

	"cambistas-backend/internal/ledger"
	"cambistas-backend/internal/services"
	"cambistas-backend/pkg/utils"

	"go.uber.org/zap"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidWeek),
		errors.Is(err, ledger.ErrInvalidTransactionType),
		errors.Is(err, ledger.ErrInvalidStatusFilter),
		errors.Is(err, services.ErrMissingCredential):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateCredential),
		errors.Is(err, ledger.ErrOutstandingBalance):
		return http.StatusConflict
	case errors.Is(err, services.ErrPersistenceWrite),
		errors.Is(err, services.ErrBackupsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		utils.Error(w, status, "Internal server error")
		return
	}
	utils.Error(w, status, err.Error())
}
