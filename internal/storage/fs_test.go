package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempSite(t *testing.T, files map[string]string) *FS {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestRead(t *testing.T) {
	s := tempSite(t, map[string]string{"docs/a/b.md": "# Deep\n"})
	got, err := s.Read(context.Background(), "docs/a/b.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "# Deep\n" {
		t.Errorf("content = %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	s := tempSite(t, nil)
	_, err := s.Read(context.Background(), "docs/nope.md")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestReadDirectoryFails(t *testing.T) {
	s := tempSite(t, map[string]string{"docs/a.md": "a"})
	if _, err := s.Read(context.Background(), "docs"); err == nil {
		t.Error("expected error reading a directory")
	}
}

func TestList(t *testing.T) {
	s := tempSite(t, map[string]string{
		"docs/b.md":       "b",
		"docs/sub/a.md":   "a",
		"docs/readme.txt": "not md",
		"docs/.git/x.md":  "hidden",
	})

	items, err := s.List("docs")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "docs/b.md" || items[1].Path != "docs/sub/a.md" {
		t.Errorf("paths = %q, %q", items[0].Path, items[1].Path)
	}
	if items[0].Checksum == "" || items[0].Date() == "" {
		t.Errorf("missing metadata: %+v", items[0])
	}
}

func TestRel(t *testing.T) {
	s := tempSite(t, nil)
	rel, err := s.Rel(filepath.Join(s.Root(), "docs", "x.md"))
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if rel != "docs/x.md" {
		t.Errorf("rel = %q", rel)
	}
	if _, err := s.Rel(filepath.Dir(s.Root())); err == nil {
		t.Error("expected error for path outside root")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempSite(t, nil)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(context.Background(), p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "folio-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
