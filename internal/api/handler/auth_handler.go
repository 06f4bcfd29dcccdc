package handler

import (
	"customer-manager/internal/api/handler/dto"
	"customer-manager/internal/config"
	"customer-manager/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	cfg    config.AuthConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthHandler(cfg config.AuthConfig, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		logger: l.With("component", "AuthHandler"),
		now:    time.Now,
	}
}

// GenerateBearerToken issues an HS256 token for the customer routes.
//
// @Summary Generate a JWT bearer token
// @Description Issues a bearer token valid for 24 hours. Only required when server auth is enabled.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "username"
// @Success 200 {object} map[string]string "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode token request", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		h.logger.WarnContext(r.Context(), "Token request without username")
		respondError(w, apperrors.NewValidationError("username", "username is required"))
		return
	}
	if h.cfg.JWTSecret == "" {
		h.logger.ErrorContext(r.Context(), "JWT secret is not configured")
		respondError(w, fmt.Errorf("%w: jwt secret not configured", apperrors.ErrInternalServer))
		return
	}

	claims := jwt.MapClaims{
		"username": req.Username,
		"exp":      h.now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign token", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInternalServer, err))
		return
	}

	h.logger.InfoContext(r.Context(), "Bearer token issued", slog.String("username", req.Username))
	respondJSON(w, http.StatusOK, map[string]string{"token": "Bearer " + tokenString})
}
