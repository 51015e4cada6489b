// Package testutil provides shared test helpers for setting up sites and
// preference stores.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/folio/internal/prefs"
	"github.com/starford/folio/internal/storage"
)

// SampleManifest describes SampleFiles.
const SampleManifest = `{
	"Welcome.md": {"path": "docs/welcome.md", "date": "2026-01-10"},
	"Guide": {
		"Setup.md": {"path": "docs/guide/setup.md", "date": "2025-12-15"},
		"Tuning.md": "docs/guide/tuning.md"
	},
	"Missing.md": {"path": "docs/missing.md", "date": "2026-02-01"}
}`

// SampleFiles is a small site whose manifest lists one file that does not
// exist.
var SampleFiles = map[string]string{
	"docs.json":            SampleManifest,
	"docs/welcome.md":      "# Welcome\n\nStart with the [setup guide](guide/setup.md).\n",
	"docs/guide/setup.md":  "---\ntitle: Setup\n---\n# Installing\n\nRun the installer.\nThe installer asks for a folder.\n",
	"docs/guide/tuning.md": "# Tuning\n\nCache sizes and the installer flags.\n",
	"docs/img/logo.png":    "\x89PNG",
}

// WriteSite writes files (site-relative, forward slashes) under dir.
func WriteSite(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TestSite creates a temporary site directory holding files and returns it
// with a file system provider rooted there.
func TestSite(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	WriteSite(t, dir, files)
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestPrefsDB creates a temporary SQLite preference store that is closed
// automatically.
func TestPrefsDB(t *testing.T) *prefs.SQLite {
	t.Helper()
	db, err := prefs.OpenSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
