package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssgl/ourtransfer/internal/api"
	"github.com/ssgl/ourtransfer/pkg/transfer"
)

func newGrantsService(t *testing.T) transfer.Service {
	t.Helper()
	signer := transfer.NewSigner(transfer.WithSecretKey(blobTestKey))
	svc, err := transfer.New(
		transfer.WithSigner(signer),
		transfer.WithAccount("ssglstorage"),
		transfer.WithStorageBaseURL("https://files.ssgl.example"),
	)
	require.NoError(t, err)
	return svc
}

func TestGrantsHandlerIssuesGrantPair(t *testing.T) {
	h := api.NewGrantsHandler(newGrantsService(t), "https://transfer.ssgl.example")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/grants",
		strings.NewReader(`{"filename":"report.pdf"}`))
	h.IssueGrants(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.GrantsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.UploadURL, "https://files.ssgl.example/temporales/")
	assert.Contains(t, resp.UploadURL, "sp=cw")
	assert.Contains(t, resp.PublicLink, "sp=r")
	assert.True(t, strings.HasPrefix(resp.ShareLink, "https://transfer.ssgl.example/download?url="))
	assert.Contains(t, resp.ShareLink, "filename=report.pdf")
}

func TestGrantsHandlerNoShareLinkWithoutOrigin(t *testing.T) {
	h := api.NewGrantsHandler(newGrantsService(t), "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/grants",
		strings.NewReader(`{"filename":"report.pdf"}`))
	h.IssueGrants(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.GrantsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp.ShareLink)
}

func TestGrantsHandlerMissingFilename(t *testing.T) {
	h := api.NewGrantsHandler(newGrantsService(t), "")

	tests := []struct {
		name string
		body string
	}{
		{"empty filename", `{"filename":""}`},
		{"no body", ``},
		{"malformed json", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/grants", strings.NewReader(tt.body))
			h.IssueGrants(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Nombre de archivo requerido", decodeErrorBody(t, rec.Body).Error.Message)
		})
	}
}

func TestGrantsHandlerInvalidFilename(t *testing.T) {
	h := api.NewGrantsHandler(newGrantsService(t), "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/grants",
		strings.NewReader(`{"filename":"x/../../../escaped.txt"}`))
	h.IssueGrants(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec.Body)
	assert.Equal(t, "invalid_filename", body.Error.Code)
	assert.Equal(t, "Nombre de archivo no válido", body.Error.Message)
}

func TestGrantsHandlerNotConfigured(t *testing.T) {
	svc, err := transfer.New()
	require.NoError(t, err)
	h := api.NewGrantsHandler(svc, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/grants",
		strings.NewReader(`{"filename":"a.txt"}`))
	h.IssueGrants(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error de configuración en servidor", decodeErrorBody(t, rec.Body).Error.Message)
}

type failingService struct{}

func (failingService) IssueGrants(ctx context.Context, filename string) (*transfer.IssuedGrants, error) {
	return nil, &transfer.GrantError{ObjectName: "x", Op: "sign_write", Err: errors.New("boom")}
}

func TestGrantsHandlerSignerFailure(t *testing.T) {
	h := api.NewGrantsHandler(failingService{}, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/grants",
		strings.NewReader(`{"filename":"a.txt"}`))
	h.IssueGrants(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error al generar permisos", decodeErrorBody(t, rec.Body).Error.Message)
}
