// Package models defines the domain types shared across folio packages.
package models

import "time"

// DocumentMeta describes a Markdown file found under the site root.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Date returns the modification date in manifest form (YYYY-MM-DD).
func (m DocumentMeta) Date() string {
	if m.UpdatedAt.IsZero() {
		return ""
	}
	return m.UpdatedAt.Format(time.DateOnly)
}
