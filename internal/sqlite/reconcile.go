package sqlite

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jacoblehr/codex/pkg/types"
)

// diffTags compares the persisted and desired tag lists by identifier.
// toAdd holds desired ids absent from persisted; toRemove holds persisted
// ids absent from desired. Both keep the order of their source list and
// contain no duplicates.
func diffTags(persisted, desired []types.Tag) (toAdd, toRemove []int64) {
	have := make(map[int64]bool, len(persisted))
	for _, t := range persisted {
		have[t.ID] = true
	}
	want := make(map[int64]bool, len(desired))
	for _, t := range desired {
		if want[t.ID] {
			continue
		}
		want[t.ID] = true
		if !have[t.ID] {
			toAdd = append(toAdd, t.ID)
		}
	}
	seen := make(map[int64]bool, len(persisted))
	for _, t := range persisted {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if !want[t.ID] {
			toRemove = append(toRemove, t.ID)
		}
	}
	return toAdd, toRemove
}

// reconcileBookmarkTags brings the join rows of bookmarkID from persisted
// to desired. Missing rows are inserted concurrently; stale rows are
// removed by a single bulk delete scoped to the bookmark. q should be a
// transaction so a failure leaves no partial change.
func reconcileBookmarkTags(ctx context.Context, q Querier, bookmarkID int64, persisted, desired []types.Tag) error {
	toAdd, toRemove := diffTags(persisted, desired)

	g, gctx := errgroup.WithContext(ctx)
	for _, tagID := range toAdd {
		tagID := tagID
		g.Go(func() error {
			_, err := BookmarkTags.Create(gctx, q, types.BookmarkTagInput{
				BookmarkID: bookmarkID,
				TagID:      tagID,
			})
			if err != nil {
				return fmt.Errorf("linking tag %d: %w", tagID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	_, err := BookmarkTags.DeleteAll(ctx, q, types.Where{
		types.Eq("bookmark_id", bookmarkID),
		types.InInt64("tag_id", toRemove),
	})
	if err != nil {
		return fmt.Errorf("unlinking tags: %w", err)
	}
	return nil
}

// purgeBookmarkTags removes every join row of bookmarkID.
func purgeBookmarkTags(ctx context.Context, q Querier, bookmarkID int64) (int64, error) {
	n, err := BookmarkTags.DeleteAll(ctx, q, types.Where{types.Eq("bookmark_id", bookmarkID)})
	if err != nil {
		return 0, fmt.Errorf("purging tags of bookmark %d: %w", bookmarkID, err)
	}
	return n, nil
}

// diffLinkTags compares owned link tags with the desired tag texts.
// toAdd holds new texts; toRemove holds the ids of rows no longer wanted.
func diffLinkTags(persisted []types.LinkTag, desired []string) (toAdd []string, toRemove []int64) {
	have := make(map[string]bool, len(persisted))
	for _, t := range persisted {
		have[t.Tag] = true
	}
	want := make(map[string]bool, len(desired))
	for _, raw := range desired {
		tag := strings.TrimSpace(raw)
		if want[tag] {
			continue
		}
		want[tag] = true
		if !have[tag] {
			toAdd = append(toAdd, tag)
		}
	}
	for _, t := range persisted {
		if !want[t.Tag] {
			toRemove = append(toRemove, t.ID)
		}
	}
	return toAdd, toRemove
}

// reconcileLinkTags brings the owned tags of linkID from persisted to
// desired, matching by tag text.
func reconcileLinkTags(ctx context.Context, q Querier, linkID int64, persisted []types.LinkTag, desired []string) error {
	toAdd, toRemove := diffLinkTags(persisted, desired)

	g, gctx := errgroup.WithContext(ctx)
	for _, tag := range toAdd {
		tag := tag
		g.Go(func() error {
			_, err := LinkTags.Create(gctx, q, types.LinkTagInput{LinkID: linkID, Tag: tag})
			if err != nil {
				return fmt.Errorf("adding tag %q: %w", tag, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	_, err := LinkTags.DeleteAll(ctx, q, types.Where{
		types.Eq("link_id", linkID),
		types.InInt64("id", toRemove),
	})
	if err != nil {
		return fmt.Errorf("removing tags: %w", err)
	}
	return nil
}
