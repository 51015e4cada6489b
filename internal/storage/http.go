package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/folio/internal/apperr"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// Verify *HTTP satisfies Provider at compile time.
var _ Provider = (*HTTP)(nil)

// HTTP implements Provider for a site served over HTTP. Paths are resolved
// against the base URL the way a browser resolves relative fetches.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
}

// HTTPOption configures an HTTP provider.
type HTTPOption func(*HTTP)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.timeout = d
	}
}

// WithClient replaces the HTTP client. The timeout option is ignored when a
// client is supplied.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = c
	}
}

// NewHTTP creates a provider rooted at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("storage: base url must be http or https: %s", baseURL)
	}

	h := &HTTP{base: base, timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = &http.Client{Timeout: h.timeout}
	}
	return h, nil
}

// Read returns the body of the file at path as text.
func (h *HTTP) Read(ctx context.Context, path string) (string, error) {
	data, err := h.ReadBytes(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBytes fetches path relative to the base URL. Any non-200 status is a
// failure; 404 wraps apperr.ErrNotFound.
func (h *HTTP) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("storage: parse path %s: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("storage: absolute urls not allowed: %s", path)
	}
	target := h.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("storage: fetch %s: %w", path, apperr.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("storage: fetch %s: HTTP %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read body %s: %w", path, err)
	}
	return data, nil
}
