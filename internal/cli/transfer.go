package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jacoblehr/codex/internal/sqlite"
)

func (a *app) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.jsonl>",
		Short: "Export tags, bookmarks and links as JSONL",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return systemError{err}
		}
		if err := s.Export(ctx, path); err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, map[string]string{"exported": path})
		}
		fmt.Fprintf(a.out, "Exported to %s\n", path)
		return nil
	})
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Import a JSONL export into the workspace",
		Long: `Import adds the records of an export file in one transaction. Tags are
matched by text; bookmarks and links are added as new rows.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		sum, err := s.Import(ctx, args[0])
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, sum)
		}
		fmt.Fprintf(a.out, "Imported %d tag(s), %d bookmark(s), %d link(s); skipped %d line(s)\n",
			sum.Tags, sum.Bookmarks, sum.Links, sum.Skipped)
		return nil
	})
	return cmd
}
