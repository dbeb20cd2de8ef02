package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacoblehr/codex/internal/sqlite"
	"github.com/jacoblehr/codex/pkg/types"
)

type linkFlags struct {
	uri         string
	name        string
	description string
	tags        []string
	clearTags   bool
}

func (f *linkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.uri, "uri", "", "link URI")
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag text; repeat for several")
}

func (a *app) newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage links with free-form tags",
	}
	cmd.AddCommand(a.newLinkAddCmd())
	cmd.AddCommand(a.newLinkGetCmd())
	cmd.AddCommand(a.newLinkUpdateCmd())
	cmd.AddCommand(a.newLinkDeleteCmd())
	cmd.AddCommand(a.newLinkListCmd())
	cmd.AddCommand(a.newLinkTagsCmd())
	return cmd
}

func (a *app) newLinkAddCmd() *cobra.Command {
	var f linkFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a link",
		Args:  cobra.NoArgs,
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("uri")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		l, err := s.CreateLink(ctx, types.LinkInput{
			URI:         f.uri,
			Name:        optional(cmd.Flags().Changed("name"), f.name),
			Description: optional(cmd.Flags().Changed("description"), f.description),
			Tags:        f.tags,
		})
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, l)
		}
		fmt.Fprintf(a.out, "Created link %d\n", l.ID)
		return nil
	})
	return cmd
}

func (a *app) newLinkGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a link",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		l, err := s.GetLink(ctx, id)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, l)
		}
		printLink(a.out, l)
		return nil
	})
	return cmd
}

func (a *app) newLinkUpdateCmd() *cobra.Command {
	var f linkFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a link",
		Args:  cobra.ExactArgs(1),
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.clearTags, "clear-tags", false, "remove all tags")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		cur, err := s.GetLink(ctx, id)
		if err != nil {
			return err
		}

		in := types.LinkInput{URI: cur.URI, Name: cur.Name, Description: cur.Description}
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
		switch {
		case f.clearTags:
			in.Tags = []string{}
		case flags.Changed("tag"):
			in.Tags = f.tags
		}

		l, err := s.UpdateLink(ctx, id, in)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, l)
		}
		fmt.Fprintf(a.out, "Updated link %d\n", l.ID)
		return nil
	})
	return cmd
}

func (a *app) newLinkDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a link and its tags",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := s.DeleteLink(ctx, id); err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, map[string]int64{"deleted": id})
		}
		fmt.Fprintf(a.out, "Deleted link %d\n", id)
		return nil
	})
	return cmd
}

func (a *app) newLinkListCmd() *cobra.Command {
	var where, in []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List links",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "column=value equality filter")
	cmd.Flags().StringArrayVar(&in, "in", nil, "column=v1,v2 membership filter")

	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		filter, err := parseFilters(where, in)
		if err != nil {
			return err
		}
		links, err := s.GetLinks(ctx, filter)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, links)
		}
		if len(links) == 0 {
			fmt.Fprintln(a.out, "No links found.")
			return nil
		}
		rows := make([][]string, len(links))
		for i, l := range links {
			rows[i] = []string{
				fmt.Sprint(l.ID),
				truncate(l.URI, 48),
				truncate(deref(l.Name), 32),
				linkChips(l.Tags),
				ago(l.CreatedAt),
			}
		}
		table(a.out, []string{"ID", "URI", "NAME", "TAGS", "CREATED"}, rows)
		fmt.Fprintf(a.out, "Total: %d link(s)\n", len(links))
		return nil
	})
	return cmd
}

func (a *app) newLinkTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show each link tag with the number of links carrying it",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		grouped, err := s.GetLinkTags(ctx)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, grouped)
		}
		rows := make([][]string, len(grouped))
		for i, g := range grouped {
			rows[i] = []string{"#" + g.Tag, fmt.Sprint(g.Count)}
		}
		table(a.out, []string{"TAG", "LINKS"}, rows)
		return nil
	})
	return cmd
}
