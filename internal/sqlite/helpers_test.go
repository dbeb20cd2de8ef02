package sqlite

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacoblehr/codex/internal/logger"
	"github.com/jacoblehr/codex/pkg/types"
)

// setupWorkspace opens an in-memory workspace with the full schema.
func setupWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := OpenWorkspace(context.Background(), types.Config{Database: types.MemoryTarget}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// setupStore returns a Store over a fresh in-memory workspace.
func setupStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(setupWorkspace(t), logger.Nop())
}

// setupDB returns the live database of a fresh workspace for direct entity
// calls. The handle stays valid for the test since nothing reloads it.
func setupDB(t *testing.T) Querier {
	t.Helper()
	ws := setupWorkspace(t)
	var q Querier
	require.NoError(t, ws.With(func(h *Handle) error {
		q = h.DB()
		return nil
	}))
	return q
}

func strPtr(s string) *string { return &s }

func mustTag(t *testing.T, q Querier, text string) *types.Tag {
	t.Helper()
	tag, err := Tags.Create(context.Background(), q, types.TagInput{Tag: text})
	require.NoError(t, err)
	return tag
}

func mustBookmark(t *testing.T, q Querier, uri string) *types.Bookmark {
	t.Helper()
	b, err := Bookmarks.Create(context.Background(), q, types.BookmarkInput{URI: uri})
	require.NoError(t, err)
	return b
}

// joinTagIDs returns the tag ids linked to bookmarkID in ascending order.
func joinTagIDs(t *testing.T, q Querier, bookmarkID int64) []int64 {
	t.Helper()
	rows, err := BookmarkTags.FindAll(context.Background(), q, types.Where{types.Eq("bookmark_id", bookmarkID)})
	require.NoError(t, err)
	ids := []int64{}
	for _, r := range rows {
		ids = append(ids, r.TagID)
	}
	slices.Sort(ids)
	return ids
}
