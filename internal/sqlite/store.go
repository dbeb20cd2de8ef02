package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jacoblehr/codex/internal/logger"
	"github.com/jacoblehr/codex/pkg/types"
)

// Store exposes the bookmark, tag and link operations over a Workspace.
// Every mutation runs in one transaction: a failure in any step rolls back
// the whole operation.
type Store struct {
	ws  *Workspace
	log logger.Logger
}

// NewStore returns a Store over ws.
func NewStore(ws *Workspace, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{ws: ws, log: log}
}

// Workspace returns the workspace the store operates on.
func (s *Store) Workspace() *Workspace {
	return s.ws
}

// inTx runs fn in a transaction on the live handle and commits when fn
// succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.ws.With(func(h *Handle) error {
		tx, err := h.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}

// read runs fn against the live handle without a transaction.
func (s *Store) read(fn func(q Querier) error) error {
	return s.ws.With(func(h *Handle) error {
		return fn(h.DB())
	})
}

// Bookmarks.

// CreateBookmark inserts a bookmark and links the input tags.
func (s *Store) CreateBookmark(ctx context.Context, in types.BookmarkInput) (*types.Bookmark, error) {
	var out *types.Bookmark
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		b, err := Bookmarks.Create(ctx, tx, in)
		if err != nil {
			return err
		}
		if len(in.Tags) > 0 {
			if err := reconcileBookmarkTags(ctx, tx, b.ID, nil, in.Tags); err != nil {
				return err
			}
			if b, err = Bookmarks.Find(ctx, tx, b.ID); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating bookmark: %w", err)
	}
	s.log.Debug("bookmark created", logger.Int64("id", out.ID), logger.Int("tags", len(out.Tags)))
	return out, nil
}

// GetBookmark returns the bookmark with its tags.
func (s *Store) GetBookmark(ctx context.Context, id int64) (*types.Bookmark, error) {
	var out *types.Bookmark
	err := s.read(func(q Querier) error {
		var err error
		out, err = Bookmarks.Find(ctx, q, id)
		return err
	})
	return out, err
}

// UpdateBookmark replaces the bookmark's columns. A nil in.Tags leaves the
// associations untouched; otherwise they are reconciled to in.Tags. The
// returned bookmark is read after reconciliation.
func (s *Store) UpdateBookmark(ctx context.Context, id int64, in types.BookmarkInput) (*types.Bookmark, error) {
	var out *types.Bookmark
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		b, err := Bookmarks.Update(ctx, tx, id, in)
		if err != nil {
			return err
		}
		if in.Tags != nil {
			if err := reconcileBookmarkTags(ctx, tx, id, b.Tags, in.Tags); err != nil {
				return err
			}
			if b, err = Bookmarks.Find(ctx, tx, id); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating bookmark %d: %w", id, err)
	}
	s.log.Debug("bookmark updated", logger.Int64("id", id))
	return out, nil
}

// DeleteBookmark removes the bookmark and its associations. Tags are kept.
func (s *Store) DeleteBookmark(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := Bookmarks.Find(ctx, tx, id); err != nil {
			return err
		}
		if _, err := purgeBookmarkTags(ctx, tx, id); err != nil {
			return err
		}
		return Bookmarks.Delete(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting bookmark %d: %w", id, err)
	}
	s.log.Debug("bookmark deleted", logger.Int64("id", id))
	return nil
}

// GetBookmarks returns the bookmarks matching where, each with its tags.
func (s *Store) GetBookmarks(ctx context.Context, where types.Where) ([]*types.Bookmark, error) {
	var out []*types.Bookmark
	err := s.read(func(q Querier) error {
		var err error
		out, err = Bookmarks.FindAll(ctx, q, where)
		return err
	})
	return out, err
}

// CountBookmarkTags returns the number of tags on every bookmark.
func (s *Store) CountBookmarkTags(ctx context.Context) ([]types.Count, error) {
	var out []types.Count
	err := s.read(func(q Querier) error {
		var err error
		out, err = Bookmarks.Count(ctx, q)
		return err
	})
	return out, err
}

// Tags.

// CreateTag inserts a tag. A duplicate tag text is a constraint violation.
func (s *Store) CreateTag(ctx context.Context, in types.TagInput) (*types.Tag, error) {
	var out *types.Tag
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = Tags.Create(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating tag %q: %w", in.Tag, err)
	}
	s.log.Debug("tag created", logger.Int64("id", out.ID), logger.String("tag", out.Tag))
	return out, nil
}

// UpdateTag replaces the tag text and colour.
func (s *Store) UpdateTag(ctx context.Context, id int64, in types.TagInput) (*types.Tag, error) {
	var out *types.Tag
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = Tags.Update(ctx, tx, id, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("updating tag %d: %w", id, err)
	}
	s.log.Debug("tag updated", logger.Int64("id", id))
	return out, nil
}

// DeleteTag removes a tag. A tag still linked to a bookmark is refused with
// ErrConstraintViolation.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return Tags.Delete(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting tag %d: %w", id, err)
	}
	s.log.Debug("tag deleted", logger.Int64("id", id))
	return nil
}

// GetTag returns one tag.
func (s *Store) GetTag(ctx context.Context, id int64) (*types.Tag, error) {
	var out *types.Tag
	err := s.read(func(q Querier) error {
		var err error
		out, err = Tags.Find(ctx, q, id)
		return err
	})
	return out, err
}

// GetTags returns the tags matching where, ordered by tag text.
func (s *Store) GetTags(ctx context.Context, where types.Where) ([]*types.Tag, error) {
	var out []*types.Tag
	err := s.read(func(q Querier) error {
		var err error
		out, err = Tags.FindAll(ctx, q, where)
		return err
	})
	return out, err
}

// CountTagBookmarks returns the number of bookmarks carrying each tag.
func (s *Store) CountTagBookmarks(ctx context.Context) ([]types.Count, error) {
	var out []types.Count
	err := s.read(func(q Querier) error {
		var err error
		out, err = Tags.Count(ctx, q)
		return err
	})
	return out, err
}

// ensureTags resolves tag texts to Tag rows, creating the missing ones.
func ensureTags(ctx context.Context, q Querier, texts []string) ([]types.Tag, error) {
	out := make([]types.Tag, 0, len(texts))
	for _, raw := range texts {
		text := strings.TrimSpace(raw)
		found, err := Tags.FindAll(ctx, q, types.Where{types.Eq("tag", text)})
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			out = append(out, *found[0])
			continue
		}
		t, err := Tags.Create(ctx, q, types.TagInput{Tag: text})
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// Links.

// CreateLink inserts a link and its owned tags.
func (s *Store) CreateLink(ctx context.Context, in types.LinkInput) (*types.Link, error) {
	var out *types.Link
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		l, err := Links.Create(ctx, tx, in)
		if err != nil {
			return err
		}
		if len(in.Tags) > 0 {
			if err := reconcileLinkTags(ctx, tx, l.ID, nil, in.Tags); err != nil {
				return err
			}
			if l, err = Links.Find(ctx, tx, l.ID); err != nil {
				return err
			}
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating link: %w", err)
	}
	s.log.Debug("link created", logger.Int64("id", out.ID))
	return out, nil
}

// GetLink returns the link with its tags.
func (s *Store) GetLink(ctx context.Context, id int64) (*types.Link, error) {
	var out *types.Link
	err := s.read(func(q Querier) error {
		var err error
		out, err = Links.Find(ctx, q, id)
		return err
	})
	return out, err
}

// UpdateLink replaces the link's columns. A nil in.Tags leaves the tags
// untouched; otherwise they are reconciled to in.Tags by text.
func (s *Store) UpdateLink(ctx context.Context, id int64, in types.LinkInput) (*types.Link, error) {
	var out *types.Link
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		l, err := Links.Update(ctx, tx, id, in)
		if err != nil {
			return err
		}
		if in.Tags != nil {
			if err := reconcileLinkTags(ctx, tx, id, l.Tags, in.Tags); err != nil {
				return err
			}
			if l, err = Links.Find(ctx, tx, id); err != nil {
				return err
			}
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating link %d: %w", id, err)
	}
	s.log.Debug("link updated", logger.Int64("id", id))
	return out, nil
}

// DeleteLink removes the link together with its owned tags.
func (s *Store) DeleteLink(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := Links.Find(ctx, tx, id); err != nil {
			return err
		}
		if _, err := LinkTags.DeleteAll(ctx, tx, types.Where{types.Eq("link_id", id)}); err != nil {
			return err
		}
		return Links.Delete(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting link %d: %w", id, err)
	}
	s.log.Debug("link deleted", logger.Int64("id", id))
	return nil
}

// GetLinks returns the links matching where, each with its tags.
func (s *Store) GetLinks(ctx context.Context, where types.Where) ([]*types.Link, error) {
	var out []*types.Link
	err := s.read(func(q Querier) error {
		var err error
		out, err = Links.FindAll(ctx, q, where)
		return err
	})
	return out, err
}

// GetLinkTags returns each distinct link tag with the number of links
// carrying it.
func (s *Store) GetLinkTags(ctx context.Context) ([]types.TagCount, error) {
	var out []types.TagCount
	err := s.read(func(q Querier) error {
		var err error
		out, err = GroupedLinkTags(ctx, q)
		return err
	})
	return out, err
}

// Workspace files.

// SaveWorkspace writes the live database to path.
func (s *Store) SaveWorkspace(ctx context.Context, path string) error {
	return s.ws.Save(ctx, path)
}

// OpenWorkspace replaces the live database with the workspace saved at
// path. Records read before the call belong to the previous generation.
func (s *Store) OpenWorkspace(ctx context.Context, path string) error {
	return s.ws.Load(ctx, path)
}

// IsUserError reports whether err was caused by caller input rather than
// by the storage system.
func IsUserError(err error) bool {
	for _, target := range []error{
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrInvalidURI,
		types.ErrInvalidTag,
		types.ErrInvalidColor,
		types.ErrInvalidFilter,
		types.ErrConstraintViolation,
		types.ErrEmptySnapshot,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
