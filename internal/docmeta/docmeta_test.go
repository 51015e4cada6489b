package docmeta

import (
	"testing"
)

func TestParse_FrontmatterAndOutline(t *testing.T) {
	input := "---\ntitle: Hello\ndescription: A greeting\ndate: 2026-01-05\ntags:\n  - go\n  - docs\n  - go\n---\n# Heading One\n\nText.\n\n## Sub *part*\n"
	m := Parse(input)

	if m.Title != "Hello" {
		t.Errorf("title = %q, want %q", m.Title, "Hello")
	}
	if m.Description != "A greeting" {
		t.Errorf("description = %q", m.Description)
	}
	if m.Date != "2026-01-05" {
		t.Errorf("date = %q", m.Date)
	}
	if len(m.Tags) != 2 || m.Tags[0] != "go" || m.Tags[1] != "docs" {
		t.Errorf("tags = %v, want [go docs]", m.Tags)
	}
	if len(m.Outline) != 2 {
		t.Fatalf("outline = %+v", m.Outline)
	}
	if m.Outline[1] != (Heading{Level: 2, Text: "Sub part", ID: "sub-part"}) {
		t.Errorf("outline[1] = %+v", m.Outline[1])
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	m := Parse("Intro\n\n# Just a heading\nSome text.\n")
	if m.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", m.Frontmatter)
	}
	if m.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", m.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	m := Parse("---\n: invalid: yaml: {{{\n---\nBody\n")
	if m.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if m.Title != "" {
		t.Errorf("title = %q, want empty", m.Title)
	}
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	m := Parse("---\ntitle: x\n# Real\n")
	if m.Frontmatter != nil {
		t.Errorf("expected nil frontmatter")
	}
}

func TestOutline_SkipsFencedHeadings(t *testing.T) {
	src := "# A\n\n```\n# not a heading\n```\n\nB\n===\n"
	got := Outline([]byte(src))
	if len(got) != 2 {
		t.Fatalf("outline = %+v", got)
	}
	if got[1].Text != "B" || got[1].Level != 1 {
		t.Errorf("setext heading = %+v", got[1])
	}
}

func TestOutline_DuplicateIDs(t *testing.T) {
	got := Outline([]byte("## Setup\n## Setup\n## Setup\n"))
	want := []string{"setup", "setup-1", "setup-2"}
	for i, h := range got {
		if h.ID != want[i] {
			t.Errorf("id[%d] = %q, want %q", i, h.ID, want[i])
		}
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Hello World":   "hello-world",
		"  Go  1.25!  ": "go-125",
		"snake_case-ok": "snake_case-ok",
		"Ünïcode Títle": "ünïcode-títle",
		"":              "",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
