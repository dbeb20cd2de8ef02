package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jacoblehr/codex/pkg/types"
)

var _ Hydrator[types.Bookmark] = bookmarksTable{}

// bookmarksTable maps the bookmarks table. Reads are hydrated with the
// bookmark's tags through bookmark_tags.
type bookmarksTable struct{}

// Bookmarks is the entity accessor for bookmarks.
var Bookmarks = newEntity[types.Bookmark, types.BookmarkInput](bookmarksTable{})

const bookmarkColumns = `id, uri, name, description, image_uri, created_at, updated_at`

// hydrateChunk bounds the parent ids bound into one association query.
const hydrateChunk = 500

func (bookmarksTable) Table() string { return types.TableBookmarks }

func (bookmarksTable) Statements() Statements {
	return Statements{
		Init: `CREATE TABLE IF NOT EXISTS bookmarks (
    id INTEGER PRIMARY KEY,
    uri TEXT NOT NULL CHECK (uri <> ''),
    name TEXT,
    description TEXT,
    image_uri TEXT,
    created_at TEXT NOT NULL DEFAULT (` + timestampSQL + `),
    updated_at TEXT
);

CREATE TRIGGER IF NOT EXISTS bookmark_updated
AFTER UPDATE OF uri, name, description, image_uri ON bookmarks
BEGIN
    UPDATE bookmarks SET updated_at = ` + timestampSQL + ` WHERE id = NEW.id;
END;`,
		Create: `INSERT INTO bookmarks (uri, name, description, image_uri)
VALUES (@uri, @name, @description, @image_uri)`,
		Find: `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE id = @id`,
		Update: `UPDATE bookmarks
SET uri = @uri, name = @name, description = @description, image_uri = @image_uri
WHERE id = @id`,
		Delete:    `DELETE FROM bookmarks WHERE id = @id`,
		FindAll:   `SELECT ` + bookmarkColumns + ` FROM bookmarks`,
		DeleteAll: `DELETE FROM bookmarks`,
		Count: `SELECT b.id, COUNT(bt.tag_id)
FROM bookmarks b
LEFT JOIN bookmark_tags bt ON bt.bookmark_id = b.id
GROUP BY b.id
ORDER BY b.id`,
		OrderBy: ` ORDER BY id`,
	}
}

func (bookmarksTable) Columns() []string {
	return []string{"id", "uri", "name", "description", "image_uri", "created_at", "updated_at"}
}

func (bookmarksTable) Validate(in types.BookmarkInput) error {
	return in.Validate()
}

func (bookmarksTable) Bind(in types.BookmarkInput) Params {
	return Params{
		"uri":         in.URI,
		"name":        nullString(in.Name),
		"description": nullString(in.Description),
		"image_uri":   nullString(in.ImageURI),
	}
}

func (bookmarksTable) Scan(s scanner) (*types.Bookmark, error) {
	return hydrateBookmark(s)
}

// Hydrate loads the tags of every bookmark in rows with one join query per
// chunk of ids and assembles them by bookmark id. Bookmarks without tags
// get an empty list.
func (bookmarksTable) Hydrate(ctx context.Context, q Querier, rows []*types.Bookmark) error {
	byID := make(map[int64]*types.Bookmark, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, b := range rows {
		b.Tags = []types.Tag{}
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	for _, chunk := range chunkIDs(ids, hydrateChunk) {
		clause, params, err := composeWhere(types.Where{types.InInt64("bt.bookmark_id", chunk)}, nil)
		if err != nil {
			return err
		}
		query := `SELECT bt.bookmark_id, t.id, t.tag, t.color
FROM bookmark_tags bt
JOIN tags t ON t.id = bt.tag_id` + clause + ` ORDER BY bt.bookmark_id, t.tag`

		if err := bookmarkTagRows(ctx, q, query, params, byID); err != nil {
			return err
		}
	}
	return nil
}

func bookmarkTagRows(ctx context.Context, q Querier, query string, params Params, byID map[int64]*types.Bookmark) error {
	rows, err := q.QueryContext(ctx, query, params.args()...)
	if err != nil {
		return fmt.Errorf("loading bookmark tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookmarkID int64
		var t types.Tag
		var color sql.NullString
		if err := rows.Scan(&bookmarkID, &t.ID, &t.Tag, &color); err != nil {
			return fmt.Errorf("scanning bookmark tag: %w", err)
		}
		t.Color = stringPtr(color)
		if b, ok := byID[bookmarkID]; ok {
			b.Tags = append(b.Tags, t)
		}
	}
	return rows.Err()
}

// hydrateBookmark converts a bookmarks row into a *types.Bookmark.
func hydrateBookmark(s scanner) (*types.Bookmark, error) {
	var b types.Bookmark
	var name, description, imageURI, updatedAt sql.NullString
	var createdAt string
	if err := s.Scan(&b.ID, &b.URI, &name, &description, &imageURI, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	b.CreatedAt, err = parseTimestamp("created_at", createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseNullableTimestamp("updated_at", updatedAt)
	if err != nil {
		return nil, err
	}
	b.Name = stringPtr(name)
	b.Description = stringPtr(description)
	b.ImageURI = stringPtr(imageURI)
	b.Tags = []types.Tag{}
	return &b, nil
}
