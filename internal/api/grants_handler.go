package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/ssgl/ourtransfer/pkg/transfer"
)

// GrantsHandler issues upload/download grant pairs
type GrantsHandler struct {
	service   transfer.Service
	appOrigin string
}

// NewGrantsHandler creates a new grants handler. appOrigin is the public
// origin share links are composed under; empty leaves shareLink out of
// the response.
func NewGrantsHandler(service transfer.Service, appOrigin string) *GrantsHandler {
	return &GrantsHandler{service: service, appOrigin: appOrigin}
}

// GrantsRequest represents the request to issue grants for a file
type GrantsRequest struct {
	Filename string `json:"filename"`
}

// GrantsResponse carries the signed upload URL and the 24-hour public link
type GrantsResponse struct {
	UploadURL  string `json:"uploadUrl"`
	PublicLink string `json:"publicLink"`
	ShareLink  string `json:"shareLink,omitempty"`
}

// IssueGrants handles POST /api/grants
func (h *GrantsHandler) IssueGrants(w http.ResponseWriter, r *http.Request) {
	var req GrantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Fail to decode grants request", "err", err)
		writeError(w, r, http.StatusBadRequest, "invalid_body", "Nombre de archivo requerido")
		return
	}

	grants, err := h.service.IssueGrants(r.Context(), req.Filename)
	switch {
	case errors.Is(err, transfer.ErrEmptyFilename):
		writeError(w, r, http.StatusBadRequest, "missing_filename", "Nombre de archivo requerido")
		return
	case errors.Is(err, transfer.ErrInvalidFilename):
		writeError(w, r, http.StatusBadRequest, "invalid_filename", "Nombre de archivo no válido")
		return
	case errors.Is(err, transfer.ErrNotConfigured):
		slog.Error("Storage credentials not configured")
		writeError(w, r, http.StatusInternalServerError, "not_configured", "Error de configuración en servidor")
		return
	case err != nil:
		slog.Error("Failed to issue grants", "filename", req.Filename, "err", err)
		writeError(w, r, http.StatusInternalServerError, "signer_error", "Error al generar permisos")
		return
	}

	resp := GrantsResponse{
		UploadURL:  grants.UploadURL,
		PublicLink: grants.PublicLink,
	}
	if h.appOrigin != "" {
		resp.ShareLink = transfer.ShareLink(h.appOrigin, grants.PublicLink, req.Filename)
	}

	slog.Info("Grants issued", "object_name", grants.ObjectName)
	render.JSON(w, r, resp)
}
