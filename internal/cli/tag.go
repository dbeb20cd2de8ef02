package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacoblehr/codex/internal/sqlite"
	"github.com/jacoblehr/codex/pkg/types"
)

func (a *app) newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}
	cmd.AddCommand(a.newTagAddCmd())
	cmd.AddCommand(a.newTagUpdateCmd())
	cmd.AddCommand(a.newTagDeleteCmd())
	cmd.AddCommand(a.newTagListCmd())
	cmd.AddCommand(a.newTagCountsCmd())
	return cmd
}

var colorHelp = "colour: " + strings.Join(types.Colors, ", ")

func (a *app) newTagAddCmd() *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <tag>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&color, "color", "", colorHelp)

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		t, err := s.CreateTag(ctx, types.TagInput{
			Tag:   args[0],
			Color: optional(cmd.Flags().Changed("color"), color),
		})
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, t)
		}
		fmt.Fprintf(a.out, "Created tag %d %s\n", t.ID, chip(*t))
		return nil
	})
	return cmd
}

func (a *app) newTagUpdateCmd() *cobra.Command {
	var text, color string
	var clearColor bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or recolour a tag",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&text, "tag", "", "new tag text")
	cmd.Flags().StringVar(&color, "color", "", colorHelp)
	cmd.Flags().BoolVar(&clearColor, "clear-color", false, "remove the colour")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		cur, err := s.GetTag(ctx, id)
		if err != nil {
			return err
		}
		in := types.TagInput{Tag: cur.Tag, Color: cur.Color}
		if cmd.Flags().Changed("tag") {
			in.Tag = text
		}
		if cmd.Flags().Changed("color") {
			in.Color = &color
		}
		if clearColor {
			in.Color = nil
		}

		t, err := s.UpdateTag(ctx, id, in)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, t)
		}
		fmt.Fprintf(a.out, "Updated tag %d %s\n", t.ID, chip(*t))
		return nil
	})
	return cmd
}

func (a *app) newTagDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag that no bookmark uses",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := s.DeleteTag(ctx, id); err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, map[string]int64{"deleted": id})
		}
		fmt.Fprintf(a.out, "Deleted tag %d\n", id)
		return nil
	})
	return cmd
}

func (a *app) newTagListCmd() *cobra.Command {
	var where, in []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "column=value equality filter")
	cmd.Flags().StringArrayVar(&in, "in", nil, "column=v1,v2 membership filter")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		filter, err := parseFilters(where, in)
		if err != nil {
			return err
		}
		tags, err := s.GetTags(ctx, filter)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, tags)
		}
		if len(tags) == 0 {
			fmt.Fprintln(a.out, "No tags found.")
			return nil
		}
		rows := make([][]string, len(tags))
		for i, t := range tags {
			color := deref(t.Color)
			if color == "" {
				color = "-"
			}
			rows[i] = []string{fmt.Sprint(t.ID), chip(*t), color}
		}
		table(a.out, []string{"ID", "TAG", "COLOR"}, rows)
		return nil
	})
	return cmd
}

func (a *app) newTagCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show the number of bookmarks carrying each tag",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		counts, err := s.CountTagBookmarks(ctx)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, counts)
		}
		printCounts(a.out, "TAG", counts)
		return nil
	})
	return cmd
}
