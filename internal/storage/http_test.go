package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/folio/internal/apperr"
)

func siteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/site/docs.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"A":{"path":"docs/a.md"}}`))
	})
	mux.HandleFunc("/site/docs/a.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# A"))
	})
	mux.HandleFunc("/site/docs/broken.md", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/site/docs/slow.md", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRead(t *testing.T) {
	srv := siteServer(t)
	h, err := NewHTTP(srv.URL + "/site")
	if err != nil {
		t.Fatalf("NewHTTP: %v", err)
	}

	got, err := h.Read(context.Background(), "docs/a.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "# A" {
		t.Errorf("body = %q", got)
	}

	manifest, err := h.Read(context.Background(), "docs.json")
	if err != nil {
		t.Fatalf("Read manifest: %v", err)
	}
	if manifest == "" {
		t.Error("empty manifest body")
	}
}

func TestHTTPReadNotFound(t *testing.T) {
	srv := siteServer(t)
	h, _ := NewHTTP(srv.URL + "/site/")

	_, err := h.Read(context.Background(), "docs/missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHTTPReadServerError(t *testing.T) {
	srv := siteServer(t)
	h, _ := NewHTTP(srv.URL + "/site/")

	_, err := h.Read(context.Background(), "docs/broken.md")
	if err == nil {
		t.Fatal("expected error for 500")
	}
	if errors.Is(err, apperr.ErrNotFound) {
		t.Error("500 should not map to ErrNotFound")
	}
}

func TestHTTPTimeout(t *testing.T) {
	srv := siteServer(t)
	h, _ := NewHTTP(srv.URL+"/site/", WithTimeout(20*time.Millisecond))

	if _, err := h.Read(context.Background(), "docs/slow.md"); err == nil {
		t.Error("expected timeout error")
	}
}

func TestHTTPRejectsAbsoluteURL(t *testing.T) {
	srv := siteServer(t)
	h, _ := NewHTTP(srv.URL + "/site/")

	if _, err := h.Read(context.Background(), "https://example.com/x.md"); err == nil {
		t.Error("expected error for absolute url")
	}
}

func TestNewHTTP_BadScheme(t *testing.T) {
	if _, err := NewHTTP("ftp://example.com/"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}
