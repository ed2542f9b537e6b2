package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// fallback display name when the share link carries none
const defaultDownloadName = "archivo"

// DownloadHandler proxies a signed storage URL back to the recipient's
// browser as a same-origin attachment response. The browser cannot fetch
// the cross-origin storage URL itself and still force a download under an
// arbitrary display filename, so the fetch happens server-side.
type DownloadHandler struct {
	httpClient *http.Client
	hostSuffix string
}

// NewDownloadHandler creates a download proxy restricted to upstream hosts
// matching the given suffix. An empty suffix would match every host and
// turn the proxy into an open relay, so it is an error. The upstream
// timeout bounds the whole fetch, including streaming the body; transfer
// sizes are uncontrolled, so it should be generous (10 minutes by default).
func NewDownloadHandler(hostSuffix string, upstreamTimeout time.Duration) (*DownloadHandler, error) {
	if hostSuffix == "" {
		return nil, errors.New("download proxy host suffix is required")
	}
	if upstreamTimeout <= 0 {
		upstreamTimeout = 10 * time.Minute
	}
	return &DownloadHandler{
		httpClient: &http.Client{Timeout: upstreamTimeout},
		hostSuffix: hostSuffix,
	}, nil
}

// Proxy handles GET /download?url={signed storage URL}&filename={name}.
//
// The url parameter arrives percent-encoded exactly once and Query().Get
// below performs the one decode. Nothing downstream may decode again: the
// storage URL's own query string stays percent-encoded as signed, and a
// second decode corrupts the signature material.
func (h *DownloadHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, r, http.StatusBadRequest, "missing_url", "URL requerida")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = defaultDownloadName
	}

	// SSRF guard: only the storage domain may be fetched through here.
	upstream, err := url.Parse(rawURL)
	if err != nil || (upstream.Scheme != "http" && upstream.Scheme != "https") ||
		!strings.HasSuffix(upstream.Hostname(), h.hostSuffix) {
		slog.Warn("Download proxy rejected non-storage URL", "host", hostOf(upstream))
		writeError(w, r, http.StatusBadRequest, "invalid_url", "URL no válida")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstream.String(), nil)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_url", "URL no válida")
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		slog.Error("Download proxy upstream fetch failed", "err", err)
		writeError(w, r, http.StatusBadGateway, "upstream_error", "Error al procesar la descarga")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Propagate the status but never the upstream error body.
		slog.Warn("Download proxy upstream returned non-success", "status", resp.StatusCode)
		writeError(w, r, resp.StatusCode, "unavailable", "Archivo no disponible o expirado")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if resp.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are gone; all that is left is to log the broken stream.
		slog.Error("Download proxy copy error", "err", err)
	}
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Hostname()
}
