// Package api implements the local HTTP control surface: token issuing,
// operation submission and tracking, and history queries.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/stegosight/stegosight/internal/api/shared"
	"github.com/stegosight/stegosight/internal/service/auth"
)

// AuthHandler issues control-API session tokens against the configured
// operator passphrase.
type AuthHandler struct {
	passphraseHash string
	verifier       auth.PassphraseVerifier
	jwtService     auth.JWTService
	tokenLifetime  time.Duration
	logger         *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	passphraseHash string,
	verifier auth.PassphraseVerifier,
	jwtService auth.JWTService,
	tokenLifetime time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		passphraseHash: passphraseHash,
		verifier:       verifier,
		jwtService:     jwtService,
		tokenLifetime:  tokenLifetime,
		logger:         logger.With("component", "auth_handler"),
	}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Passphrase == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Passphrase is required")
		return
	}

	if err := h.verifier.Compare(h.passphraseHash, req.Passphrase); err != nil {
		h.logger.Warn("failed authentication attempt", "remote_addr", r.RemoteAddr)
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid passphrase")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context())
	if err != nil {
		h.logger.Error("failed to generate session token", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokenLifetime).UTC(),
	})
}
