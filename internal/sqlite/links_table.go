package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jacoblehr/codex/pkg/types"
)

var _ Hydrator[types.Link] = linksTable{}

// linksTable maps the links table, the variant of bookmarks whose tags are
// owned rows of link_tags.
type linksTable struct{}

// Links is the entity accessor for links.
var Links = newEntity[types.Link, types.LinkInput](linksTable{})

const linkColumns = `id, uri, name, description, created_at, updated_at`

func (linksTable) Table() string { return types.TableLinks }

func (linksTable) Statements() Statements {
	return Statements{
		Init: `CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY,
    uri TEXT NOT NULL CHECK (uri <> ''),
    name TEXT,
    description TEXT,
    created_at TEXT NOT NULL DEFAULT (` + timestampSQL + `),
    updated_at TEXT
);

CREATE TRIGGER IF NOT EXISTS link_updated
AFTER UPDATE OF uri, name, description ON links
BEGIN
    UPDATE links SET updated_at = ` + timestampSQL + ` WHERE id = NEW.id;
END;`,
		Create:    `INSERT INTO links (uri, name, description) VALUES (@uri, @name, @description)`,
		Find:      `SELECT ` + linkColumns + ` FROM links WHERE id = @id`,
		Update:    `UPDATE links SET uri = @uri, name = @name, description = @description WHERE id = @id`,
		Delete:    `DELETE FROM links WHERE id = @id`,
		FindAll:   `SELECT ` + linkColumns + ` FROM links`,
		DeleteAll: `DELETE FROM links`,
		Count: `SELECT l.id, COUNT(lt.id)
FROM links l
LEFT JOIN link_tags lt ON lt.link_id = l.id
GROUP BY l.id
ORDER BY l.id`,
		OrderBy: ` ORDER BY id`,
	}
}

func (linksTable) Columns() []string {
	return []string{"id", "uri", "name", "description", "created_at", "updated_at"}
}

func (linksTable) Validate(in types.LinkInput) error {
	return in.Validate()
}

func (linksTable) Bind(in types.LinkInput) Params {
	return Params{
		"uri":         in.URI,
		"name":        nullString(in.Name),
		"description": nullString(in.Description),
	}
}

func (linksTable) Scan(s scanner) (*types.Link, error) {
	return hydrateLink(s)
}

// Hydrate attaches the owned tag rows of every link in rows.
func (linksTable) Hydrate(ctx context.Context, q Querier, rows []*types.Link) error {
	byID := make(map[int64]*types.Link, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, l := range rows {
		l.Tags = []types.LinkTag{}
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	for _, chunk := range chunkIDs(ids, hydrateChunk) {
		tags, err := LinkTags.FindAll(ctx, q, types.Where{types.InInt64("link_id", chunk)})
		if err != nil {
			return fmt.Errorf("loading link tags: %w", err)
		}
		for _, t := range tags {
			if l, ok := byID[t.LinkID]; ok {
				l.Tags = append(l.Tags, *t)
			}
		}
	}
	return nil
}

// hydrateLink converts a links row into a *types.Link.
func hydrateLink(s scanner) (*types.Link, error) {
	var l types.Link
	var name, description, updatedAt sql.NullString
	var createdAt string
	if err := s.Scan(&l.ID, &l.URI, &name, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	l.CreatedAt, err = parseTimestamp("created_at", createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseNullableTimestamp("updated_at", updatedAt)
	if err != nil {
		return nil, err
	}
	l.Name = stringPtr(name)
	l.Description = stringPtr(description)
	l.Tags = []types.LinkTag{}
	return &l, nil
}
