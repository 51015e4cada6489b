// Package storage defines where site files (manifest, documents, images) are
// fetched from.
package storage

import "context"

// Provider reads files relative to the site root. A failed read means the
// file is unavailable; callers never retry.
type Provider interface {
	// Read returns the text of the file at path.
	Read(ctx context.Context, path string) (string, error)
	// ReadBytes returns the raw bytes of the file at path.
	ReadBytes(ctx context.Context, path string) ([]byte, error)
}
