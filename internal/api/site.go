package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/storage"
)

// SiteHandler serves raw site files (images, Markdown sources, the manifest)
// through the document provider.
type SiteHandler struct {
	provider storage.Provider
}

// NewSiteHandler creates a handler backed by provider.
func NewSiteHandler(provider storage.Provider) *SiteHandler {
	return &SiteHandler{provider: provider}
}

// safeName cleans a site path and rejects traversal.
func safeName(name string) (string, error) {
	if name == "" {
		return "", errors.New("path is required")
	}
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || strings.HasPrefix(cleaned, "..") || strings.Contains(name, "\\") {
		return "", errors.New("invalid path: " + name)
	}
	return cleaned, nil
}

// ServeFile handles GET /site/*.
func (h *SiteHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, err := safeName(strings.TrimPrefix(chi.URLParam(r, "*"), "/"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.provider.ReadBytes(r.Context(), name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Warn("site: read failed", slog.String("path", name), slog.String("error", err.Error()))
		http.Error(w, "unavailable", http.StatusBadGateway)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(name))
	switch {
	case strings.HasSuffix(name, ".md"):
		ctype = "text/markdown; charset=utf-8"
	case ctype == "":
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)

	slog.Debug("site: served", slog.String("path", name), slog.String("size", humanize.Bytes(uint64(len(data)))))
}
