package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMaxRecent caps the recently-read list.
const DefaultMaxRecent = 50

// Record is one entry of the recently-read list. Timestamp is epoch millis.
type Record struct {
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"`
}

// Time returns the timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// History is the recently-read list: deduplicated by path, most recent
// first, capped at a fixed number of entries. It is stored as a JSON array under
// KeyRecentlyRead.
type History struct {
	kv     KV
	max    int
	logger *slog.Logger

	mu sync.Mutex
}

// NewHistory returns a History over kv. max <= 0 means DefaultMaxRecent.
func NewHistory(kv KV, limit int, logger *slog.Logger) *History {
	if limit <= 0 {
		limit = DefaultMaxRecent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &History{kv: kv, max: limit, logger: logger}
}

// Add moves path to the front of the list with timestamp now.
func (h *History) Add(ctx context.Context, path string, now time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, err := h.load(ctx)
	if err != nil {
		return err
	}
	next := make([]Record, 0, len(list)+1)
	next = append(next, Record{Path: path, Timestamp: now.UnixMilli()})
	for _, r := range list {
		if r.Path != path {
			next = append(next, r)
		}
	}
	if len(next) > h.max {
		next = next[:h.max]
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("prefs: encode history: %w", err)
	}
	return h.kv.Set(ctx, KeyRecentlyRead, string(data))
}

// List returns the recently-read list, most recent first.
func (h *History) List(ctx context.Context) ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// load treats a missing or corrupt value as an empty list.
func (h *History) load(ctx context.Context) ([]Record, error) {
	raw, ok, err := h.kv.Get(ctx, KeyRecentlyRead)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []Record{}, nil
	}
	var list []Record
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		h.logger.Warn("prefs: discarding unreadable history", slog.String("error", err.Error()))
		return []Record{}, nil
	}
	if list == nil {
		list = []Record{}
	}
	return list, nil
}
