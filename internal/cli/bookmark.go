package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacoblehr/codex/internal/sqlite"
	"github.com/jacoblehr/codex/pkg/types"
)

// bookmarkFlags holds the column flags shared by add and update.
type bookmarkFlags struct {
	uri         string
	name        string
	description string
	image       string
	tags        []string
	clearTags   bool
}

func (f *bookmarkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.uri, "uri", "", "bookmark URI")
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.image, "image", "", "image URI")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag text; repeat for several (tags must exist)")
}

func (a *app) newBookmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmark",
		Aliases: []string{"bm"},
		Short:   "Manage bookmarks",
	}
	cmd.AddCommand(a.newBookmarkAddCmd())
	cmd.AddCommand(a.newBookmarkGetCmd())
	cmd.AddCommand(a.newBookmarkUpdateCmd())
	cmd.AddCommand(a.newBookmarkDeleteCmd())
	cmd.AddCommand(a.newBookmarkListCmd())
	cmd.AddCommand(a.newBookmarkCountsCmd())
	return cmd
}

// resolveTags looks up tags by text. Every name must exist.
func resolveTags(ctx context.Context, s *sqlite.Store, names []string) ([]types.Tag, error) {
	out := make([]types.Tag, 0, len(names))
	if len(names) == 0 {
		return out, nil
	}
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = n
	}
	found, err := s.GetTags(ctx, types.Where{types.In{Column: "tag", Values: values}})
	if err != nil {
		return nil, err
	}
	byText := make(map[string]types.Tag, len(found))
	for _, t := range found {
		byText[t.Tag] = *t
	}
	for _, n := range names {
		t, ok := byText[n]
		if !ok {
			return nil, fmt.Errorf("tag %q: %w", n, types.ErrNotFound)
		}
		out = append(out, t)
	}
	return out, nil
}

func (a *app) newBookmarkAddCmd() *cobra.Command {
	var f bookmarkFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a bookmark",
		Long: `Add creates a bookmark and links the given tags.

Example:
  codex bookmark add --uri https://go.dev --name Go --tag lang --tag docs`,
		Args: cobra.NoArgs,
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("uri")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		tags, err := resolveTags(ctx, s, f.tags)
		if err != nil {
			return err
		}
		b, err := s.CreateBookmark(ctx, types.BookmarkInput{
			URI:         f.uri,
			Name:        optional(cmd.Flags().Changed("name"), f.name),
			Description: optional(cmd.Flags().Changed("description"), f.description),
			ImageURI:    optional(cmd.Flags().Changed("image"), f.image),
			Tags:        tags,
		})
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, b)
		}
		fmt.Fprintf(a.out, "Created bookmark %d\n", b.ID)
		return nil
	})
	return cmd
}

func (a *app) newBookmarkGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a bookmark",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := s.GetBookmark(ctx, id)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, b)
		}
		printBookmark(a.out, b)
		return nil
	})
	return cmd
}

func (a *app) newBookmarkUpdateCmd() *cobra.Command {
	var f bookmarkFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a bookmark",
		Long: `Update changes the given columns of a bookmark. Columns whose flags are
not given keep their value. --tag replaces the tag list; --clear-tags
removes every tag.

Example:
  codex bookmark update 3 --name "Go home" --tag lang`,
		Args: cobra.ExactArgs(1),
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.clearTags, "clear-tags", false, "remove all tags")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		cur, err := s.GetBookmark(ctx, id)
		if err != nil {
			return err
		}

		in := types.BookmarkInput{
			URI:         cur.URI,
			Name:        cur.Name,
			Description: cur.Description,
			ImageURI:    cur.ImageURI,
		}
		flags := cmd.Flags()
		if flags.Changed("uri") {
			in.URI = f.uri
		}
		if flags.Changed("name") {
			in.Name = &f.name
		}
		if flags.Changed("description") {
			in.Description = &f.description
		}
		if flags.Changed("image") {
			in.ImageURI = &f.image
		}
		switch {
		case f.clearTags:
			in.Tags = []types.Tag{}
		case flags.Changed("tag"):
			if in.Tags, err = resolveTags(ctx, s, f.tags); err != nil {
				return err
			}
		}

		b, err := s.UpdateBookmark(ctx, id, in)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, b)
		}
		fmt.Fprintf(a.out, "Updated bookmark %d\n", b.ID)
		return nil
	})
	return cmd
}

func (a *app) newBookmarkDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bookmark and its tag associations",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := s.DeleteBookmark(ctx, id); err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, map[string]int64{"deleted": id})
		}
		fmt.Fprintf(a.out, "Deleted bookmark %d\n", id)
		return nil
	})
	return cmd
}

func (a *app) newBookmarkListCmd() *cobra.Command {
	var where, in []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookmarks",
		Long: `List prints bookmarks, optionally filtered by column.

Example:
  codex bookmark list
  codex bookmark list --where name=Go
  codex bookmark list --in id=1,2,3 --json`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "column=value equality filter")
	cmd.Flags().StringArrayVar(&in, "in", nil, "column=v1,v2 membership filter")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		filter, err := parseFilters(where, in)
		if err != nil {
			return err
		}
		bookmarks, err := s.GetBookmarks(ctx, filter)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, bookmarks)
		}
		if len(bookmarks) == 0 {
			fmt.Fprintln(a.out, "No bookmarks found.")
			return nil
		}
		rows := make([][]string, len(bookmarks))
		for i, b := range bookmarks {
			rows[i] = []string{
				fmt.Sprint(b.ID),
				truncate(b.URI, 48),
				truncate(deref(b.Name), 32),
				chips(b.Tags),
				ago(b.CreatedAt),
			}
		}
		table(a.out, []string{"ID", "URI", "NAME", "TAGS", "CREATED"}, rows)
		fmt.Fprintf(a.out, "Total: %d bookmark(s)\n", len(bookmarks))
		return nil
	})
	return cmd
}

func (a *app) newBookmarkCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show the number of tags on each bookmark",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		counts, err := s.CountBookmarkTags(ctx)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, counts)
		}
		printCounts(a.out, "BOOKMARK", counts)
		return nil
	})
	return cmd
}
