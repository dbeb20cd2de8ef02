// Tests for the transactional store operations.
package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoblehr/codex/pkg/types"
)

func createTags(t *testing.T, s *Store, texts ...string) []types.Tag {
	t.Helper()
	out := make([]types.Tag, 0, len(texts))
	for _, text := range texts {
		tag, err := s.CreateTag(context.Background(), types.TagInput{Tag: text})
		require.NoError(t, err)
		out = append(out, *tag)
	}
	return out
}

func tagTexts(tags []types.Tag) []string {
	out := []string{}
	for _, t := range tags {
		out = append(out, t.Tag)
	}
	return out
}

func TestStoreCreateBookmark(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	tags := createTags(t, s, "go", "docs")

	b, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://go.dev", Name: strPtr("Go"), Tags: tags})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "go"}, tagTexts(b.Tags))
	assert.Nil(t, b.UpdatedAt)

	got, err := s.GetBookmark(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestStoreCreateBookmarkRollsBack(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://go.dev", Tags: tagsWithIDs(404)})
	assert.ErrorIs(t, err, types.ErrConstraintViolation)

	all, err := s.GetBookmarks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all, "the bookmark insert must be rolled back")

	_, err = s.CreateBookmark(ctx, types.BookmarkInput{})
	assert.ErrorIs(t, err, types.ErrInvalidURI)
}

func TestStoreUpdateBookmark(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	tags := createTags(t, s, "one", "two", "three", "four")
	b, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://go.dev", Tags: tags[:3]})
	require.NoError(t, err)

	t.Run("nil tags leave associations", func(t *testing.T) {
		got, err := s.UpdateBookmark(ctx, b.ID, types.BookmarkInput{URI: "https://go.dev/doc"})
		require.NoError(t, err)
		assert.Equal(t, "https://go.dev/doc", got.URI)
		assert.Len(t, got.Tags, 3)
		assert.NotNil(t, got.UpdatedAt)
	})

	t.Run("tags are reconciled", func(t *testing.T) {
		got, err := s.UpdateBookmark(ctx, b.ID, types.BookmarkInput{URI: "https://go.dev", Tags: tags[1:]})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"two", "three", "four"}, tagTexts(got.Tags))
	})

	t.Run("empty tags clear associations", func(t *testing.T) {
		got, err := s.UpdateBookmark(ctx, b.ID, types.BookmarkInput{URI: "https://go.dev", Tags: []types.Tag{}})
		require.NoError(t, err)
		assert.Empty(t, got.Tags)
	})

	t.Run("missing bookmark", func(t *testing.T) {
		_, err := s.UpdateBookmark(ctx, 999, types.BookmarkInput{URI: "https://x"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestStoreUpdateBookmarkRollsBack(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	tags := createTags(t, s, "go")
	b, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://go.dev", Tags: tags})
	require.NoError(t, err)

	desired := append(tagsWithIDs(404), tags...)
	_, err = s.UpdateBookmark(ctx, b.ID, types.BookmarkInput{URI: "https://changed", Tags: desired})
	assert.ErrorIs(t, err, types.ErrConstraintViolation)

	got, err := s.GetBookmark(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", got.URI, "the column update must be rolled back")
	assert.Nil(t, got.UpdatedAt)
	assert.Equal(t, []string{"go"}, tagTexts(got.Tags))
}

func TestStoreDeleteBookmark(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	tags := createTags(t, s, "go", "db")
	b, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://go.dev", Tags: tags})
	require.NoError(t, err)

	require.NoError(t, s.DeleteBookmark(ctx, b.ID))

	_, err = s.GetBookmark(ctx, b.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	counts, err := s.CountTagBookmarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Count{{ID: tags[0].ID, Count: 0}, {ID: tags[1].ID, Count: 0}}, counts)

	remaining, err := s.GetTags(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 2, "tags survive bookmark deletion")

	assert.ErrorIs(t, s.DeleteBookmark(ctx, b.ID), types.ErrNotFound)
}

func TestStoreDeleteTagReferenced(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	tags := createTags(t, s, "go")
	b, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://go.dev", Tags: tags})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteTag(ctx, tags[0].ID), types.ErrConstraintViolation)

	_, err = s.UpdateBookmark(ctx, b.ID, types.BookmarkInput{URI: b.URI, Tags: []types.Tag{}})
	require.NoError(t, err)
	require.NoError(t, s.DeleteTag(ctx, tags[0].ID))
}

func TestStoreTags(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	tag, err := s.CreateTag(ctx, types.TagInput{Tag: "go", Color: strPtr(types.ColorBlue)})
	require.NoError(t, err)

	_, err = s.CreateTag(ctx, types.TagInput{Tag: "go"})
	assert.ErrorIs(t, err, types.ErrConstraintViolation)

	updated, err := s.UpdateTag(ctx, tag.ID, types.TagInput{Tag: "golang", Color: strPtr(types.ColorGreen)})
	require.NoError(t, err)
	assert.Equal(t, "golang", updated.Tag)
	assert.Equal(t, types.ColorGreen, *updated.Color)

	got, err := s.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	found, err := s.GetTags(ctx, types.Where{types.Eq("color", types.ColorGreen)})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, tag.ID, found[0].ID)
}

func TestStoreCountBookmarkTags(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	tags := createTags(t, s, "a", "b")
	b1, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://one", Tags: tags})
	require.NoError(t, err)
	b2, err := s.CreateBookmark(ctx, types.BookmarkInput{URI: "https://two"})
	require.NoError(t, err)

	counts, err := s.CountBookmarkTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Count{{ID: b1.ID, Count: 2}, {ID: b2.ID, Count: 0}}, counts)
}

func TestStoreLinks(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	l, err := s.CreateLink(ctx, types.LinkInput{URI: "https://go.dev", Tags: []string{"go", "docs"}})
	require.NoError(t, err)
	require.Len(t, l.Tags, 2)

	other, err := s.CreateLink(ctx, types.LinkInput{URI: "https://pkg.go.dev", Tags: []string{"go"}})
	require.NoError(t, err)

	grouped, err := s.GetLinkTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.TagCount{{Tag: "docs", Count: 1}, {Tag: "go", Count: 2}}, grouped)

	updated, err := s.UpdateLink(ctx, l.ID, types.LinkInput{URI: "https://go.dev", Tags: []string{"web"}})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "web", updated.Tags[0].Tag)

	kept, err := s.UpdateLink(ctx, l.ID, types.LinkInput{URI: "https://go.dev/doc"})
	require.NoError(t, err)
	assert.Equal(t, updated.Tags, kept.Tags)

	require.NoError(t, s.DeleteLink(ctx, l.ID))
	_, err = s.GetLink(ctx, l.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	links, err := s.GetLinks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, other.ID, links[0].ID)

	grouped, err = s.GetLinkTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.TagCount{{Tag: "go", Count: 1}}, grouped)

	_, err = s.CreateLink(ctx, types.LinkInput{URI: "https://x", Tags: []string{" "}})
	assert.ErrorIs(t, err, types.ErrInvalidTag)
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(types.ErrNotFound))
	assert.True(t, IsUserError(types.ErrConstraintViolation))
	assert.False(t, IsUserError(context.Canceled))
	assert.False(t, IsUserError(nil))
}
