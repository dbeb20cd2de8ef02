package sqlite

import (
	"strings"

	"github.com/jacoblehr/codex/pkg/types"
)

// Record kinds in an export file.
const (
	kindTag      = "tag"
	kindBookmark = "bookmark"
	kindLink     = "link"
)

// recordJSON is one line of an export file. Kind selects which of the
// remaining fields are meaningful. Tags are referenced by text so a file
// can be imported into a workspace with different tag ids.
type recordJSON struct {
	Kind        string   `json:"kind"`
	URI         string   `json:"uri,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURI    *string  `json:"image_uri,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   *string  `json:"updated_at,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// incomplete reports whether rec lacks the field that identifies it.
func (r recordJSON) incomplete() bool {
	switch r.Kind {
	case kindTag:
		return strings.TrimSpace(r.Tag) == ""
	case kindBookmark, kindLink:
		return strings.TrimSpace(r.URI) == ""
	}
	return false
}

func tagToRecord(t *types.Tag) recordJSON {
	return recordJSON{Kind: kindTag, Tag: t.Tag, Color: t.Color}
}

func bookmarkToRecord(b *types.Bookmark) recordJSON {
	rec := recordJSON{
		Kind:        kindBookmark,
		URI:         b.URI,
		Name:        b.Name,
		Description: b.Description,
		ImageURI:    b.ImageURI,
		CreatedAt:   b.CreatedAt.Format(timestampLayout),
		UpdatedAt:   formatNullable(b.UpdatedAt),
	}
	for _, t := range b.Tags {
		rec.Tags = append(rec.Tags, t.Tag)
	}
	return rec
}

func linkToRecord(l *types.Link) recordJSON {
	rec := recordJSON{
		Kind:        kindLink,
		URI:         l.URI,
		Name:        l.Name,
		Description: l.Description,
		CreatedAt:   l.CreatedAt.Format(timestampLayout),
		UpdatedAt:   formatNullable(l.UpdatedAt),
	}
	for _, t := range l.Tags {
		rec.Tags = append(rec.Tags, t.Tag)
	}
	return rec
}
