package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/ssgl/ourtransfer/internal/auth"
)

// Authenticator checks a username/password pair against the user store
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*auth.User, error)
}

// AuthHandler handles user login
type AuthHandler struct {
	store    Authenticator
	tokens   TokenIssuer
	tokenTTL time.Duration
}

// TokenIssuer mints an access token for an authenticated user
type TokenIssuer func(user *auth.User, ttl time.Duration) (string, error)

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store Authenticator, issue TokenIssuer, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{store: store, tokens: issue, tokenTTL: tokenTTL}
}

// LoginRequest represents the login form
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse keeps the existing API field names alongside the token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Nombre      string `json:"nombre"`
	Apellido    string `json:"apellido"`
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "Credenciales incorrectas.")
		return
	}

	user, err := h.store.Authenticate(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrUnknownUser):
		writeError(w, r, http.StatusUnauthorized, "unknown_user", "Usuario no encontrado.")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid_credentials", "Credenciales incorrectas.")
		return
	case err != nil:
		slog.Error("Login query failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "database_error", "Error de conexión con la base de datos.")
		return
	}

	token, err := h.tokens(user, h.tokenTTL)
	if err != nil {
		slog.Error("Failed to issue token", "username", user.Username, "err", err)
		writeError(w, r, http.StatusInternalServerError, "token_error", "Error de configuración en servidor")
		return
	}

	render.JSON(w, r, LoginResponse{
		AccessToken: token,
		Username:    user.Username,
		Nombre:      user.Nombre,
		Apellido:    user.Apellido,
	})
}
