// Tests for the generic entity operations, exercised through the concrete
// mappings.
package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoblehr/codex/pkg/types"
)

func TestEntityCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		in   types.BookmarkInput
	}{
		{"uri only", types.BookmarkInput{URI: "https://go.dev"}},
		{"with name", types.BookmarkInput{URI: "https://go.dev", Name: strPtr("Go")}},
		{"all columns", types.BookmarkInput{
			URI:         "https://pkg.go.dev",
			Name:        strPtr("Packages"),
			Description: strPtr("Package docs"),
			ImageURI:    strPtr("https://pkg.go.dev/favicon.ico"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := setupDB(t)
			created, err := Bookmarks.Create(ctx, q, tt.in)
			require.NoError(t, err)
			assert.Positive(t, created.ID)

			got, err := Bookmarks.Find(ctx, q, created.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.in.URI, got.URI)
			assert.Equal(t, tt.in.Name, got.Name)
			assert.Equal(t, tt.in.Description, got.Description)
			assert.Equal(t, tt.in.ImageURI, got.ImageURI)
			assert.False(t, got.CreatedAt.IsZero(), "created_at must be set")
			assert.Nil(t, got.UpdatedAt, "updated_at must be unset")
			assert.Empty(t, got.Tags)
		})
	}
}

func TestEntityCreateValidation(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)

	_, err := Bookmarks.Create(ctx, q, types.BookmarkInput{URI: "  "})
	assert.ErrorIs(t, err, types.ErrInvalidURI)

	all, err := Bookmarks.FindAll(ctx, q, nil)
	require.NoError(t, err)
	assert.Empty(t, all, "a rejected create must not insert")
}

func TestEntityFind(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)

	_, err := Bookmarks.Find(ctx, q, 0)
	assert.ErrorIs(t, err, types.ErrInvalidID)

	_, err = Bookmarks.Find(ctx, q, 42)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEntityUpdate(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)
	b := mustBookmark(t, q, "https://example.com")

	updated, err := Bookmarks.Update(ctx, q, b.ID, types.BookmarkInput{URI: "https://example.org", Name: strPtr("Example")})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", updated.URI)
	assert.Equal(t, "Example", *updated.Name)
	assert.NotNil(t, updated.UpdatedAt, "updated_at is set by the trigger")
	assert.Equal(t, b.CreatedAt, updated.CreatedAt)

	t.Run("missing row", func(t *testing.T) {
		_, err := Bookmarks.Update(ctx, q, 999, types.BookmarkInput{URI: "https://x"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := Bookmarks.Update(ctx, q, b.ID, types.BookmarkInput{})
		assert.ErrorIs(t, err, types.ErrInvalidURI)
		got, err := Bookmarks.Find(ctx, q, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://example.org", got.URI)
	})
}

func TestEntityDelete(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)
	tag := mustTag(t, q, "go")

	require.NoError(t, Tags.Delete(ctx, q, tag.ID))
	_, err := Tags.Find(ctx, q, tag.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, Tags.Delete(ctx, q, tag.ID), types.ErrNotFound)
}

func TestEntityFindAll(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)
	for _, text := range []string{"x", "y", "z"} {
		mustTag(t, q, text)
	}

	all, err := Tags.FindAll(ctx, q, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	clause, err := types.ParseClause("tag", "x", "=")
	require.NoError(t, err)
	only, err := Tags.FindAll(ctx, q, types.Where{clause})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "x", only[0].Tag)

	none, err := Tags.FindAll(ctx, q, types.Where{types.Eq("tag", "missing")})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = Tags.FindAll(ctx, q, types.Where{types.Eq("bogus", 1)})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestEntityDeleteAllIn(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)

	b1 := mustBookmark(t, q, "https://one")
	b2 := mustBookmark(t, q, "https://two")
	var tagIDs []int64
	for _, text := range []string{"t1", "t2", "t3", "t4", "t5", "t6"} {
		tagIDs = append(tagIDs, mustTag(t, q, text).ID)
	}
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6}, tagIDs)

	for _, b := range []int64{b1.ID, b2.ID} {
		for _, tagID := range tagIDs {
			_, err := BookmarkTags.Create(ctx, q, types.BookmarkTagInput{BookmarkID: b, TagID: tagID})
			require.NoError(t, err)
		}
	}

	n, err := BookmarkTags.DeleteAll(ctx, q, types.Where{types.InInt64("tag_id", []int64{5, 6})})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	assert.Equal(t, []int64{1, 2, 3, 4}, joinTagIDs(t, q, b1.ID))
	assert.Equal(t, []int64{1, 2, 3, 4}, joinTagIDs(t, q, b2.ID))

	n, err = BookmarkTags.DeleteAll(ctx, q, types.Where{types.InInt64("tag_id", nil)})
	require.NoError(t, err)
	assert.Zero(t, n, "an empty IN list deletes nothing")
}

func TestEntityCount(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)

	b1 := mustBookmark(t, q, "https://one")
	b2 := mustBookmark(t, q, "https://two")
	go1 := mustTag(t, q, "go")
	db := mustTag(t, q, "db")
	for _, in := range []types.BookmarkTagInput{
		{BookmarkID: b1.ID, TagID: go1.ID},
		{BookmarkID: b1.ID, TagID: db.ID},
		{BookmarkID: b2.ID, TagID: go1.ID},
	} {
		_, err := BookmarkTags.Create(ctx, q, in)
		require.NoError(t, err)
	}

	perBookmark, err := Bookmarks.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []types.Count{{ID: b1.ID, Count: 2}, {ID: b2.ID, Count: 1}}, perBookmark)

	perTag, err := Tags.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []types.Count{{ID: go1.ID, Count: 2}, {ID: db.ID, Count: 1}}, perTag)

	joins, err := BookmarkTags.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, perBookmark, joins)
}
