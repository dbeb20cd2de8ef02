// Tests for association reconciliation.
package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoblehr/codex/pkg/types"
)

func tagsWithIDs(ids ...int64) []types.Tag {
	out := make([]types.Tag, len(ids))
	for i, id := range ids {
		out[i] = types.Tag{ID: id}
	}
	return out
}

func TestDiffTags(t *testing.T) {
	tests := []struct {
		name       string
		persisted  []types.Tag
		desired    []types.Tag
		wantAdd    []int64
		wantRemove []int64
	}{
		{"both empty", nil, nil, nil, nil},
		{"equal sets", tagsWithIDs(1, 2), tagsWithIDs(2, 1), nil, nil},
		{"add only", nil, tagsWithIDs(3, 4), []int64{3, 4}, nil},
		{"remove only", tagsWithIDs(3, 4), nil, nil, []int64{3, 4}},
		{"overlap", tagsWithIDs(1, 2, 3), tagsWithIDs(2, 3, 4), []int64{4}, []int64{1}},
		{"duplicate desired", nil, tagsWithIDs(5, 5), []int64{5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			add, remove := diffTags(tt.persisted, tt.desired)
			assert.Equal(t, tt.wantAdd, add)
			assert.Equal(t, tt.wantRemove, remove)
		})
	}
}

func TestDiffLinkTags(t *testing.T) {
	persisted := []types.LinkTag{{ID: 10, Tag: "go"}, {ID: 11, Tag: "db"}}
	add, remove := diffLinkTags(persisted, []string{"go", " web ", "web"})
	assert.Equal(t, []string{"web"}, add)
	assert.Equal(t, []int64{11}, remove)
}

// setupTagged creates a bookmark linked to tags 1, 2, 3 and a fourth
// unlinked tag.
func setupTagged(t *testing.T) (Querier, *types.Bookmark) {
	t.Helper()
	q := setupDB(t)
	b := mustBookmark(t, q, "https://go.dev")
	for _, text := range []string{"one", "two", "three", "four"} {
		mustTag(t, q, text)
	}
	require.NoError(t, reconcileBookmarkTags(context.Background(), q, b.ID, nil, tagsWithIDs(1, 2, 3)))
	return q, b
}

func TestReconcileBookmarkTags(t *testing.T) {
	ctx := context.Background()
	q, b := setupTagged(t)

	before, err := BookmarkTags.FindAll(ctx, q, types.Where{types.Eq("bookmark_id", b.ID)})
	require.NoError(t, err)
	rowID := map[int64]int64{}
	for _, r := range before {
		rowID[r.TagID] = r.ID
	}

	require.NoError(t, reconcileBookmarkTags(ctx, q, b.ID, tagsWithIDs(1, 2, 3), tagsWithIDs(2, 3, 4)))
	assert.Equal(t, []int64{2, 3, 4}, joinTagIDs(t, q, b.ID))

	after, err := BookmarkTags.FindAll(ctx, q, types.Where{types.Eq("bookmark_id", b.ID)})
	require.NoError(t, err)
	for _, r := range after {
		if r.TagID == 2 || r.TagID == 3 {
			assert.Equal(t, rowID[r.TagID], r.ID, "row for tag %d must be untouched", r.TagID)
		}
	}
}

func TestReconcileBookmarkTagsIdempotent(t *testing.T) {
	ctx := context.Background()
	q, b := setupTagged(t)

	before, err := BookmarkTags.FindAll(ctx, q, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, reconcileBookmarkTags(ctx, q, b.ID, tagsWithIDs(1, 2, 3), tagsWithIDs(1, 2, 3)))
	}

	after, err := BookmarkTags.FindAll(ctx, q, nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReconcileScopedToBookmark(t *testing.T) {
	ctx := context.Background()
	q, b := setupTagged(t)
	other := mustBookmark(t, q, "https://pkg.go.dev")
	require.NoError(t, reconcileBookmarkTags(ctx, q, other.ID, nil, tagsWithIDs(1)))

	require.NoError(t, reconcileBookmarkTags(ctx, q, b.ID, tagsWithIDs(1, 2, 3), tagsWithIDs(2, 3)))

	assert.Equal(t, []int64{2, 3}, joinTagIDs(t, q, b.ID))
	assert.Equal(t, []int64{1}, joinTagIDs(t, q, other.ID), "other bookmarks keep their tags")
}

func TestPurgeBookmarkTags(t *testing.T) {
	q, b := setupTagged(t)
	n, err := purgeBookmarkTags(context.Background(), q, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Empty(t, joinTagIDs(t, q, b.ID))
}

func TestReconcileLinkTags(t *testing.T) {
	ctx := context.Background()
	q := setupDB(t)
	l, err := Links.Create(ctx, q, types.LinkInput{URI: "https://go.dev"})
	require.NoError(t, err)

	require.NoError(t, reconcileLinkTags(ctx, q, l.ID, nil, []string{"go", "db"}))
	got, err := Links.Find(ctx, q, l.ID)
	require.NoError(t, err)

	require.NoError(t, reconcileLinkTags(ctx, q, l.ID, got.Tags, []string{"go", "web"}))
	got, err = Links.Find(ctx, q, l.ID)
	require.NoError(t, err)

	var texts []string
	for _, tag := range got.Tags {
		texts = append(texts, tag.Tag)
	}
	assert.Equal(t, []string{"go", "web"}, texts)
}
