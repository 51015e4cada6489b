package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/prefs"
	"github.com/starford/folio/internal/viewer"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *viewer.Service
	theme *prefs.Theme
}

// NewHandler creates a new Handler.
func NewHandler(svc *viewer.Service, theme *prefs.Theme) *Handler {
	return &Handler{svc: svc, theme: theme}
}

// docPath extracts the document path from the URL (everything after /api/docs/).
// Supports encoded slashes (e.g. docs%2Fguide%2Fsetup.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Manifest handles GET /api/manifest.
//
//	@Summary		Full navigation tree
//	@Tags			navigation
//	@Produce		json
//	@Success		200	{object}	TreeResponse
//	@Router			/manifest [get]
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TreeResponse{Tree: h.svc.Tree()})
}

// Tree handles GET /api/tree?q=.
//
//	@Summary		Navigation tree filtered by a search query
//	@Tags			navigation
//	@Produce		json
//	@Param			q	query		string	false	"Search query"
//	@Success		200	{object}	TreeResponse
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	q := viewer.NormalizeQuery(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, TreeResponse{Query: q, Tree: h.svc.FilteredTree(q)})
}

// GetDocument handles GET /api/docs/*.
//
//	@Summary		Render a document, optionally highlighting a query
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Param			q		query		string	false	"Query to highlight"
//	@Success		200		{object}	Page
//	@Success		304		"Not modified"
//	@Failure		404		{object}	errResponse
//	@Router			/docs/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required", "")
		return
	}
	page, err := h.svc.Open(r.Context(), path, viewer.NormalizeQuery(r.URL.Query().Get("q")))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Could not load: "+path, path)
		} else {
			slog.Error("open document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error", "")
		}
		return
	}

	etag := `"` + page.Checksum + `"`
	if page.Query != "" {
		etag = `W/"` + page.Checksum + `-` + url.QueryEscape(page.Query) + `"`
	}
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /api/search?q=.
//
//	@Summary		Full-text search across loaded documents
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Search query (at least 2 characters)"
//	@Success		200	{object}	SearchView
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Search(r.URL.Query().Get("q")))
}

// Recent handles GET /api/recent.
//
//	@Summary		All documents, most recent first
//	@Tags			navigation
//	@Produce		json
//	@Success		200	{object}	RecentResponse
//	@Router			/recent [get]
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RecentResponse{Articles: h.svc.Recent()})
}

// History handles GET /api/history.
//
//	@Summary		Recently read documents
//	@Tags			navigation
//	@Produce		json
//	@Success		200	{object}	HistoryResponse
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	visits, err := h.svc.History(r.Context())
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Visits: visits})
}

// GetTheme handles GET /api/preferences/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.theme.Get(r.Context())
	if err != nil {
		slog.Error("get theme failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}

// PutTheme handles PUT /api/preferences/theme.
//
//	@Summary		Set the colour theme
//	@Tags			preferences
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ThemeRequest	true	"Theme"
//	@Success		200		{object}	ThemeResponse
//	@Failure		400		{object}	errResponse
//	@Router			/preferences/theme [put]
func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	if err := h.theme.Set(r.Context(), req.Theme); err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "theme must be light or dark", "")
		} else {
			slog.Error("set theme failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error", "")
		}
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: req.Theme})
}
