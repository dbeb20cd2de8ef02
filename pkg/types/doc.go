// Package types defines the entity types, write shapes, predicate algebra,
// configuration and standard errors for the codex bookmark store.
//
// Read shapes (Bookmark, Tag, Link, ...) carry identity and engine-computed
// columns. Write shapes (BookmarkInput, TagInput, ...) carry only the
// columns a caller may set.
package types
