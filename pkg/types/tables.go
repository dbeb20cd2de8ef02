package types

// Table names used by the SQLite mappings.
const (
	TableBookmarks     = "bookmarks"
	TableTags          = "tags"
	TableBookmarkTags  = "bookmark_tags"
	TableLinks         = "links"
	TableLinkTags      = "link_tags"
	TableWorkspaceMeta = "workspace_meta"
)

// StandardTableNames lists the entity tables in dependency order: a table
// appears after every table it references.
var StandardTableNames = []string{
	TableTags,
	TableBookmarks,
	TableBookmarkTags,
	TableLinks,
	TableLinkTags,
}
