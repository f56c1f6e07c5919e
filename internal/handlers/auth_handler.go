package handlers

import (
	"net/http"

	"cambistas-backend/internal/auth"
	"cambistas-backend/internal/models"
	"cambistas-backend/internal/services"
	"cambistas-backend/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	Service    *services.UserService
	JWTManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthHandler(s *services.UserService, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		Service:    s,
		JWTManager: jwtManager,
		logger:     logger.Named("auth"),
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (models.CredentialRequest, error) {
	var req models.CredentialRequest
	err := decodeJSON(w, r, &req)
	return req, err
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.Service.Register(r.Context(), req.Username, req.Password); err != nil {
		respondError(w, h.logger, err)
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

// Login checks the credential table and issues a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.Service.Authenticate(r.Context(), req.Username, req.Password); err != nil {
		h.logger.Info("login rejected", zap.String("username", req.Username), zap.String("ip", clientIP(r)))
		respondError(w, h.logger, err)
		return
	}

	token, expiresAt, err := h.JWTManager.GenerateToken(req.Username)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("login", zap.String("username", req.Username), zap.String("ip", clientIP(r)))
	utils.JSON(w, http.StatusOK, models.AuthResponse{
		Token:     token,
		Username:  req.Username,
		ExpiresAt: expiresAt.Unix(),
	})
}
