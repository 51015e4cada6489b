// Package prefs persists viewer preferences (reading history, theme) in a
// string key-value store.
package prefs

import (
	"context"
	"fmt"
	"sync"
)

// Fixed keys shared by every backend.
const (
	KeyRecentlyRead = "recentlyRead"
	KeyTheme        = "theme"
)

// KV is a string key-value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Settings selects and configures a backend.
type Settings struct {
	Backend    string
	SQLitePath string
	Redis      RedisOptions
}

// Open returns the backend named in s.
func Open(ctx context.Context, s Settings) (KV, error) {
	switch s.Backend {
	case BackendSQLite:
		return OpenSQLite(s.SQLitePath)
	case BackendRedis:
		return OpenRedis(ctx, s.Redis)
	case BackendMemory, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("prefs: unknown backend %q", s.Backend)
	}
}

// Verify *Memory satisfies KV at compile time.
var _ KV = (*Memory)(nil)

// Memory is an in-process KV. Values are lost on exit.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
