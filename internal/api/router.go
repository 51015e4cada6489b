package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/prefs"
	"github.com/starford/folio/internal/viewer"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *viewer.Service, theme *prefs.Theme, sseHandler http.Handler, allowedOrigins []string) chi.Router {
	h := NewHandler(svc, theme)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(allowedOrigins))

	// Navigation.
	r.Get("/manifest", h.Manifest)
	r.Get("/tree", h.Tree)

	// Documents.
	r.Get("/docs/*", h.GetDocument)

	// Search.
	r.Get("/search", h.Search)

	// Sidebar tabs.
	r.Get("/recent", h.Recent)
	r.Get("/history", h.History)

	// Preferences.
	r.Get("/preferences/theme", h.GetTheme)
	r.Put("/preferences/theme", h.PutTheme)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
