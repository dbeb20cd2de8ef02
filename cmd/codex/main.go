// Command codex manages bookmarks, tags and links in a SQLite workspace.
package main

import "github.com/jacoblehr/codex/internal/cli"

func main() {
	cli.Execute()
}
