package manifest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/models"
)

func listing() []models.DocumentMeta {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 9, 0, 0, 0, time.UTC) }
	return []models.DocumentMeta{
		{Path: "docs/guide/advanced/tuning.md", UpdatedAt: day(3)},
		{Path: "docs/guide/setup.md", UpdatedAt: day(2)},
		{Path: "docs/welcome.md", UpdatedAt: day(1)},
		{Path: "notes/todo.md"},
	}
}

func TestFromDocuments(t *testing.T) {
	root := FromDocuments(listing(), "docs/")

	assert.Equal(t, []string{
		"docs/guide/advanced/tuning.md",
		"docs/guide/setup.md",
		"docs/welcome.md",
		"notes/todo.md",
	}, Paths(root))

	require.Equal(t, 3, root.Len())
	assert.Equal(t, "guide", root.Entries[0].Name)
	assert.Equal(t, "welcome.md", root.Entries[1].Name)
	assert.Equal(t, "notes", root.Entries[2].Name)

	guide, ok := root.Entries[0].Node.(*Folder)
	require.True(t, ok)
	assert.Equal(t, "advanced", guide.Entries[0].Name)
	assert.Equal(t, "setup.md", guide.Entries[1].Name)

	files := Files(root)
	assert.Equal(t, "2026-01-03", files[0].Date)
	assert.Equal(t, DefaultDate, files[3].Date)
}

func TestMarshal_KeepsOrder(t *testing.T) {
	root := Empty().
		Add("Zebra.md", File("docs/zebra.md", "2026-01-01")).
		Add("Alpha", Empty().Add("Beta.md", File("docs/alpha/beta.md", "")))

	out, err := Marshal(root, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, `{
  "Zebra.md": {
    "path": "docs/zebra.md",
    "date": "2026-01-01"
  },
  "Alpha": {
    "Beta.md": {
      "path": "docs/alpha/beta.md",
      "date": "2025-12-01"
    }
  }
}
`, string(out))
}

func TestMarshal_ParsesBack(t *testing.T) {
	root := FromDocuments(listing(), "docs/")

	for name, format := range map[string]Format{"json": FormatJSON, "yaml": FormatYAML} {
		t.Run(name, func(t *testing.T) {
			out, err := Marshal(root, format)
			require.NoError(t, err)

			back, err := Parse(out, format)
			require.NoError(t, err)
			assert.Equal(t, root, back)
		})
	}
}

func TestMarshal_Empty(t *testing.T) {
	out, err := Marshal(nil, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}
