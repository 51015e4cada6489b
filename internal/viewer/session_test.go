package viewer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/apperr"
)

func TestSession_QueryFiltersAndResets(t *testing.T) {
	svc, _ := newTestService(t)
	preload(t, svc)
	s := NewSession(svc)

	assert.Len(t, s.Tree(), 3)
	assert.Nil(t, s.State().Visible)

	view := s.SetQuery("Installer")
	require.NotNil(t, view)
	assert.Equal(t, 2, view.Documents)
	assert.Equal(t, []string{"docs/guide/setup.md", "docs/guide/tuning.md"}, s.State().Visible)

	tree := s.Tree()
	require.Len(t, tree, 1)
	assert.Equal(t, "Guide", tree[0].Name)
	assert.Len(t, tree[0].Children, 2)

	assert.Nil(t, s.SetQuery("i"))
	assert.Nil(t, s.State().Visible)
	assert.Len(t, s.Tree(), 3)
	assert.Equal(t, "i", s.Query())
}

func TestSession_NoMatchesHidesEverything(t *testing.T) {
	svc, _ := newTestService(t)
	preload(t, svc)
	s := NewSession(svc)

	view := s.SetQuery("zzz")
	require.NotNil(t, view)
	assert.Empty(t, view.Hits)
	assert.Empty(t, s.Tree())
	assert.Equal(t, []string{}, s.State().Visible)
}

func TestSession_FollowLinkKeepsQuery(t *testing.T) {
	svc, _ := newTestService(t)
	preload(t, svc)
	s := NewSession(svc)
	ctx := context.Background()

	s.SetQuery("installer")
	page, err := s.FollowLink(ctx, "docs/guide/tuning.md")
	require.NoError(t, err)
	assert.Equal(t, "installer", page.Query)
	assert.Contains(t, page.HTML, `<mark class="search-highlight">installer</mark>`)
	assert.Equal(t, "docs/guide/tuning.md", s.State().Current)

	page, err = s.Open(ctx, "docs/welcome.md")
	require.NoError(t, err)
	assert.Empty(t, page.Query)
	assert.Equal(t, "docs/welcome.md", s.State().Current)
}

func TestSession_OpenFailureKeepsCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	s := NewSession(svc)
	ctx := context.Background()

	_, err := s.Open(ctx, "docs/welcome.md")
	require.NoError(t, err)
	_, err = s.OpenResult(ctx, "docs/missing.md")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "docs/welcome.md", s.State().Current)
}

func TestSession_Restore(t *testing.T) {
	svc, _ := newTestService(t)
	s := NewSession(svc)
	ctx := context.Background()

	page, err := s.Restore(ctx, "docs/guide/setup.md")
	require.NoError(t, err)
	assert.Equal(t, "docs/guide/setup.md", page.Path)

	_, err = s.Restore(ctx, "../secrets.md")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSession_Tabs(t *testing.T) {
	svc, _ := newTestService(t)
	s := NewSession(svc)

	assert.Equal(t, TabDocs, s.State().Tab)
	require.NoError(t, s.SwitchTab(TabHistory))
	assert.Equal(t, TabHistory, s.State().Tab)
	assert.ErrorIs(t, s.SwitchTab("settings"), apperr.ErrInvalidInput)
	assert.Equal(t, TabHistory, s.State().Tab)
}
