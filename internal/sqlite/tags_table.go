package sqlite

import (
	"database/sql"
	"strings"

	"github.com/jacoblehr/codex/pkg/types"
)

// tagsTable maps the tags table. Tag text is unique across the table.
type tagsTable struct{}

// Tags is the entity accessor for tags.
var Tags = newEntity[types.Tag, types.TagInput](tagsTable{})

func (tagsTable) Table() string { return types.TableTags }

func (tagsTable) Statements() Statements {
	return Statements{
		Init: `CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY,
    tag TEXT NOT NULL,
    color TEXT CHECK (color IS NULL OR color IN (` + colorList() + `)),
    UNIQUE (tag)
);`,
		Create:    `INSERT INTO tags (tag, color) VALUES (@tag, @color)`,
		Find:      `SELECT id, tag, color FROM tags WHERE id = @id`,
		Update:    `UPDATE tags SET tag = @tag, color = @color WHERE id = @id`,
		Delete:    `DELETE FROM tags WHERE id = @id`,
		FindAll:   `SELECT id, tag, color FROM tags`,
		DeleteAll: `DELETE FROM tags`,
		Count: `SELECT t.id, COUNT(bt.bookmark_id)
FROM tags t
LEFT JOIN bookmark_tags bt ON bt.tag_id = t.id
GROUP BY t.id
ORDER BY t.id`,
		OrderBy: ` ORDER BY tag`,
	}
}

func (tagsTable) Columns() []string {
	return []string{"id", "tag", "color"}
}

func (tagsTable) Validate(in types.TagInput) error {
	return in.Validate()
}

func (tagsTable) Bind(in types.TagInput) Params {
	return Params{
		"tag":   strings.TrimSpace(in.Tag),
		"color": nullString(in.Color),
	}
}

func (tagsTable) Scan(s scanner) (*types.Tag, error) {
	return hydrateTag(s)
}

// hydrateTag converts a tags row into a *types.Tag.
func hydrateTag(s scanner) (*types.Tag, error) {
	var t types.Tag
	var color sql.NullString
	if err := s.Scan(&t.ID, &t.Tag, &color); err != nil {
		return nil, err
	}
	t.Color = stringPtr(color)
	return &t, nil
}

// colorList renders the colour enumeration as a SQL literal list.
func colorList() string {
	quoted := make([]string, len(types.Colors))
	for i, c := range types.Colors {
		quoted[i] = "'" + c + "'"
	}
	return strings.Join(quoted, ", ")
}
