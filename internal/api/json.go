package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON encodes v with the given status. Encoding errors after the header
// is sent can only be logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response", slog.Int("status", status), slog.String("error", err.Error()))
	}
}

// errResponse is the body of every non-2xx API response.
type errResponse struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

// writeError sends an error body. path names the document involved, if any.
func writeError(w http.ResponseWriter, status int, msg, path string) {
	writeJSON(w, status, errResponse{Error: msg, Path: path})
}
