package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssgl/ourtransfer/internal/api"
	"github.com/ssgl/ourtransfer/internal/auth"
)

type fakeCredentials struct {
	user *auth.User
	err  error
}

func (f fakeCredentials) Authenticate(ctx context.Context, username, password string) (*auth.User, error) {
	return f.user, f.err
}

func staticIssuer(token string, err error) api.TokenIssuer {
	return func(user *auth.User, ttl time.Duration) (string, error) {
		return token, err
	}
}

func TestLoginSuccess(t *testing.T) {
	store := fakeCredentials{user: &auth.User{
		Username: "jperez",
		Nombre:   "Juan",
		Apellido: "Pérez",
	}}
	h := api.NewAuthHandler(store, staticIssuer("tok-123", nil), time.Hour)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"jperez","password":"secret"}`))
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "tok-123", resp.AccessToken)
	assert.Equal(t, "jperez", resp.Username)
	assert.Equal(t, "Juan", resp.Nombre)
	assert.Equal(t, "Pérez", resp.Apellido)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name        string
		store       api.Authenticator
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "unknown user",
			store:       fakeCredentials{err: auth.ErrUnknownUser},
			body:        `{"username":"nadie","password":"x"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Usuario no encontrado.",
		},
		{
			name:        "wrong password",
			store:       fakeCredentials{err: auth.ErrInvalidCredentials},
			body:        `{"username":"jperez","password":"mal"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Credenciales incorrectas.",
		},
		{
			name:        "database down",
			store:       fakeCredentials{err: errors.New("connection refused")},
			body:        `{"username":"jperez","password":"x"}`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Error de conexión con la base de datos.",
		},
		{
			name:        "malformed body",
			store:       fakeCredentials{},
			body:        `{`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Credenciales incorrectas.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := api.NewAuthHandler(tt.store, staticIssuer("tok", nil), time.Hour)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			h.Login(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMessage, decodeErrorBody(t, rec.Body).Error.Message)
		})
	}
}

func TestLoginTokenFailure(t *testing.T) {
	store := fakeCredentials{user: &auth.User{Username: "jperez"}}
	h := api.NewAuthHandler(store, staticIssuer("", errors.New("no signing key")), time.Hour)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"jperez","password":"secret"}`))
	h.Login(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error de configuración en servidor", decodeErrorBody(t, rec.Body).Error.Message)
}
