package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ssgl/ourtransfer/pkg/transfer"
	"github.com/ssgl/ourtransfer/pkg/transfer/storage"
)

// BlockBlobHeader must accompany direct uploads, declaring block-blob
// semantics. The name matches what existing upload clients already send.
const BlockBlobHeader = "x-ms-blob-type"

// BlobHandler serves the storage endpoints issued grants point at when
// OurTransfer hosts its own storage: a direct binary PUT for write grants
// and a streaming GET for read grants. Grant validation happens here; the
// underlying bytes live in the configured BlobStore.
type BlobHandler struct {
	store     storage.BlobStore
	signer    *transfer.Signer
	container string
}

// NewBlobHandler creates a new blob gateway handler
func NewBlobHandler(store storage.BlobStore, signer *transfer.Signer, container string) *BlobHandler {
	return &BlobHandler{
		store:     store,
		signer:    signer,
		container: container,
	}
}

// HandleUpload handles PUT /blob/{container}/{object}?sv=..&sp=..&sig=..
func (h *BlobHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	objectKey, grant, ok := h.verifyGrant(w, r)
	if !ok {
		return
	}

	if err := grant.Allow("w", "c"); err != nil {
		writeError(w, r, http.StatusForbidden, "permission_denied", "el permiso no autoriza subir archivos")
		return
	}

	if !strings.EqualFold(r.Header.Get(BlockBlobHeader), "BlockBlob") {
		writeError(w, r, http.StatusBadRequest, "missing_blob_type",
			fmt.Sprintf("header %s: BlockBlob is required", BlockBlobHeader))
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	err := h.store.UploadWithParams(r.Context(), r.Body, storage.UploadParams{
		ObjectKey:   objectKey,
		ContentType: contentType,
	})
	if err != nil {
		slog.Error("Blob upload failed", "object_key", objectKey, "err", err)
		writeError(w, r, http.StatusInternalServerError, "upload_failed", "Error al guardar el archivo")
		return
	}

	slog.Info("Blob uploaded", "object_key", objectKey, "content_type", contentType)
	w.WriteHeader(http.StatusCreated)
}

// HandleDownload handles GET /blob/{container}/{object}?sv=..&sp=..&sig=..
func (h *BlobHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	objectKey, grant, ok := h.verifyGrant(w, r)
	if !ok {
		return
	}

	if err := grant.Allow("r"); err != nil {
		writeError(w, r, http.StatusForbidden, "permission_denied", "el permiso no autoriza descargar archivos")
		return
	}

	rc, err := h.store.Download(r.Context(), objectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", "Archivo no disponible o expirado")
			return
		}
		slog.Error("Blob download failed", "object_key", objectKey, "err", err)
		writeError(w, r, http.StatusInternalServerError, "download_failed", "Error al procesar la descarga")
		return
	}
	defer rc.Close()

	if meta, err := h.store.GetObjectMeta(r.Context(), objectKey); err == nil {
		w.Header().Set("Content-Type", meta.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if grant.Disposition != "" {
		w.Header().Set("Content-Disposition", grant.Disposition)
	}

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Blob download copy error", "object_key", objectKey, "err", err)
	}
}

// verifyGrant validates the signed query string against the decoded request
// path and checks the container. On failure it writes the error response
// and returns ok=false.
//
// The signature binds the decoded object path; r.URL.Path is already the
// product of the server's single decode, so no extra unescaping happens.
func (h *BlobHandler) verifyGrant(w http.ResponseWriter, r *http.Request) (string, transfer.Grant, bool) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/blob")

	prefix := "/" + h.container + "/"
	if !strings.HasPrefix(objectPath, prefix) || len(objectPath) == len(prefix) {
		writeError(w, r, http.StatusNotFound, "not_found", "Archivo no disponible o expirado")
		return "", transfer.Grant{}, false
	}
	objectKey := objectPath[len(prefix):]

	// Object keys are single path elements. A key with separators or dot
	// segments could resolve outside the container on path-based stores,
	// so it is rejected before the store sees it, valid signature or not.
	if !transfer.ValidFilename(objectKey) {
		slog.Warn("Blob gateway rejected unsafe object key", "object_key", objectKey)
		writeError(w, r, http.StatusNotFound, "not_found", "Archivo no disponible o expirado")
		return "", transfer.Grant{}, false
	}

	grant, err := h.signer.Verify(objectPath, r.URL.Query())
	if err != nil {
		slog.Warn("Blob grant validation failed", "object_key", objectKey, "err", err)
		switch {
		case errors.Is(err, transfer.ErrMissingSignature),
			errors.Is(err, transfer.ErrInvalidWindow),
			errors.Is(err, transfer.ErrUnsupportedVersion):
			writeError(w, r, http.StatusUnauthorized, "missing_signature", "firma requerida")
		case errors.Is(err, transfer.ErrGrantExpired),
			errors.Is(err, transfer.ErrGrantNotYetValid):
			writeError(w, r, http.StatusForbidden, "grant_expired", "Archivo no disponible o expirado")
		default:
			writeError(w, r, http.StatusForbidden, "invalid_signature", "firma no válida")
		}
		return "", transfer.Grant{}, false
	}

	return objectKey, grant, true
}
