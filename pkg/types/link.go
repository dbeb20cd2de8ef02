package types

import (
	"strings"
	"time"
)

// Link is the direct-ownership variant of a bookmark: its tags are rows of
// link_tags keyed by (link_id, tag) rather than shared Tag entities.
type Link struct {
	ID          int64      `json:"id"`
	URI         string     `json:"uri"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Tags        []LinkTag  `json:"tags"`
}

// LinkInput is the write shape for a link. Tags holds the desired tag texts.
type LinkInput struct {
	URI         string   `json:"uri"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate checks the required columns of a link write.
func (in LinkInput) Validate() error {
	if strings.TrimSpace(in.URI) == "" {
		return ErrInvalidURI
	}
	for _, t := range in.Tags {
		if strings.TrimSpace(t) == "" {
			return ErrInvalidTag
		}
	}
	return nil
}

// LinkTag is a tag row owned by a single link.
type LinkTag struct {
	ID     int64  `json:"id"`
	LinkID int64  `json:"link_id"`
	Tag    string `json:"tag"`
}

// LinkTagInput is the write shape for a link tag.
type LinkTagInput struct {
	LinkID int64  `json:"link_id"`
	Tag    string `json:"tag"`
}

// Validate checks the owner and the tag text.
func (in LinkTagInput) Validate() error {
	if in.LinkID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(in.Tag) == "" {
		return ErrInvalidTag
	}
	return nil
}

// TagCount is the grouped projection of link tags: each distinct tag text
// with the number of links carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}
