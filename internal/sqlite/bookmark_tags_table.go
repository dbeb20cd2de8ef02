package sqlite

import "github.com/jacoblehr/codex/pkg/types"

// bookmarkTagsTable maps the bookmark/tag association table. At most one
// row exists per (bookmark_id, tag_id).
type bookmarkTagsTable struct{}

// BookmarkTags is the entity accessor for bookmark/tag associations.
var BookmarkTags = newEntity[types.BookmarkTag, types.BookmarkTagInput](bookmarkTagsTable{})

func (bookmarkTagsTable) Table() string { return types.TableBookmarkTags }

func (bookmarkTagsTable) Statements() Statements {
	return Statements{
		Init: `CREATE TABLE IF NOT EXISTS bookmark_tags (
    id INTEGER PRIMARY KEY,
    bookmark_id INTEGER NOT NULL,
    tag_id INTEGER NOT NULL,
    FOREIGN KEY (bookmark_id) REFERENCES bookmarks (id),
    FOREIGN KEY (tag_id) REFERENCES tags (id),
    UNIQUE (bookmark_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_bookmark_tags_tag ON bookmark_tags (tag_id);`,
		Create:    `INSERT INTO bookmark_tags (bookmark_id, tag_id) VALUES (@bookmark_id, @tag_id)`,
		Find:      `SELECT id, bookmark_id, tag_id FROM bookmark_tags WHERE id = @id`,
		Update:    `UPDATE bookmark_tags SET bookmark_id = @bookmark_id, tag_id = @tag_id WHERE id = @id`,
		Delete:    `DELETE FROM bookmark_tags WHERE id = @id`,
		FindAll:   `SELECT id, bookmark_id, tag_id FROM bookmark_tags`,
		DeleteAll: `DELETE FROM bookmark_tags`,
		Count: `SELECT bookmark_id, COUNT(*)
FROM bookmark_tags
GROUP BY bookmark_id
ORDER BY bookmark_id`,
		OrderBy: ` ORDER BY id`,
	}
}

func (bookmarkTagsTable) Columns() []string {
	return []string{"id", "bookmark_id", "tag_id"}
}

func (bookmarkTagsTable) Validate(in types.BookmarkTagInput) error {
	return in.Validate()
}

func (bookmarkTagsTable) Bind(in types.BookmarkTagInput) Params {
	return Params{
		"bookmark_id": in.BookmarkID,
		"tag_id":      in.TagID,
	}
}

func (bookmarkTagsTable) Scan(s scanner) (*types.BookmarkTag, error) {
	var bt types.BookmarkTag
	if err := s.Scan(&bt.ID, &bt.BookmarkID, &bt.TagID); err != nil {
		return nil, err
	}
	return &bt, nil
}
