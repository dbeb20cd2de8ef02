package types

import (
	"strings"
	"time"
)

// Bookmark is a stored URI together with the tags associated with it
// through the bookmark_tags join table.
type Bookmark struct {
	ID          int64      `json:"id"`
	URI         string     `json:"uri"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	ImageURI    *string    `json:"image_uri,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"` // Nil until the first update.
	Tags        []Tag      `json:"tags"`
}

// BookmarkInput is the write shape for a bookmark. Tags is the desired tag
// list; only tag identity is consulted when associations are reconciled.
type BookmarkInput struct {
	URI         string  `json:"uri"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURI    *string `json:"image_uri,omitempty"`
	Tags        []Tag   `json:"tags,omitempty"`
}

// Validate checks the required columns of a bookmark write.
func (in BookmarkInput) Validate() error {
	if strings.TrimSpace(in.URI) == "" {
		return ErrInvalidURI
	}
	return nil
}

// TagIDs returns the identifiers of the desired tags in input order.
func (in BookmarkInput) TagIDs() []int64 {
	ids := make([]int64, 0, len(in.Tags))
	for _, t := range in.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// BookmarkTag is a row of the bookmark/tag association table.
type BookmarkTag struct {
	ID         int64 `json:"id"`
	BookmarkID int64 `json:"bookmark_id"`
	TagID      int64 `json:"tag_id"`
}

// BookmarkTagInput is the write shape for an association row.
type BookmarkTagInput struct {
	BookmarkID int64 `json:"bookmark_id"`
	TagID      int64 `json:"tag_id"`
}

// Validate rejects non-positive identifiers.
func (in BookmarkTagInput) Validate() error {
	if in.BookmarkID <= 0 || in.TagID <= 0 {
		return ErrInvalidID
	}
	return nil
}
