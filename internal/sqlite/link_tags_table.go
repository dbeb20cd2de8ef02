package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacoblehr/codex/pkg/types"
)

// linkTagsTable maps link_tags: tag rows owned directly by a link, unique
// per (link_id, tag).
type linkTagsTable struct{}

// LinkTags is the entity accessor for link-owned tags.
var LinkTags = newEntity[types.LinkTag, types.LinkTagInput](linkTagsTable{})

func (linkTagsTable) Table() string { return types.TableLinkTags }

func (linkTagsTable) Statements() Statements {
	return Statements{
		Init: `CREATE TABLE IF NOT EXISTS link_tags (
    id INTEGER PRIMARY KEY,
    link_id INTEGER NOT NULL,
    tag TEXT NOT NULL,
    FOREIGN KEY (link_id) REFERENCES links (id),
    UNIQUE (link_id, tag)
);`,
		Create:    `INSERT INTO link_tags (link_id, tag) VALUES (@link_id, @tag)`,
		Find:      `SELECT id, link_id, tag FROM link_tags WHERE id = @id`,
		Update:    `UPDATE link_tags SET link_id = @link_id, tag = @tag WHERE id = @id`,
		Delete:    `DELETE FROM link_tags WHERE id = @id`,
		FindAll:   `SELECT id, link_id, tag FROM link_tags`,
		DeleteAll: `DELETE FROM link_tags`,
		Count: `SELECT link_id, COUNT(*)
FROM link_tags
GROUP BY link_id
ORDER BY link_id`,
		OrderBy: ` ORDER BY link_id, tag`,
	}
}

func (linkTagsTable) Columns() []string {
	return []string{"id", "link_id", "tag"}
}

func (linkTagsTable) Validate(in types.LinkTagInput) error {
	return in.Validate()
}

func (linkTagsTable) Bind(in types.LinkTagInput) Params {
	return Params{
		"link_id": in.LinkID,
		"tag":     strings.TrimSpace(in.Tag),
	}
}

func (linkTagsTable) Scan(s scanner) (*types.LinkTag, error) {
	var lt types.LinkTag
	if err := s.Scan(&lt.ID, &lt.LinkID, &lt.Tag); err != nil {
		return nil, err
	}
	return &lt, nil
}

// GroupedLinkTags returns each distinct link tag with the number of links
// carrying it, ordered by tag.
func GroupedLinkTags(ctx context.Context, q Querier) ([]types.TagCount, error) {
	rows, err := q.QueryContext(ctx, `SELECT tag, COUNT(*) FROM link_tags GROUP BY tag ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("grouping link tags: %w", err)
	}
	defer rows.Close()

	counts := []types.TagCount{}
	for rows.Next() {
		var tc types.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning link tag count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating link tag counts: %w", err)
	}
	return counts, nil
}
