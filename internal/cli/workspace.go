package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacoblehr/codex/internal/paths"
	"github.com/jacoblehr/codex/internal/sqlite"
	"github.com/jacoblehr/codex/pkg/types"
)

func (a *app) newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Save, open and inspect workspaces",
	}
	cmd.AddCommand(a.newWorkspaceSaveCmd())
	cmd.AddCommand(a.newWorkspaceOpenCmd())
	cmd.AddCommand(a.newWorkspaceInfoCmd())
	return cmd
}

// workspacePath resolves a workspace file argument against the data dir.
func (a *app) workspacePath(name string) (string, error) {
	path, err := paths.WorkspaceFile(a.cfg.DataDir, name)
	if err != nil {
		return "", systemError{err}
	}
	return path, nil
}

func (a *app) newWorkspaceSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Save the workspace to a file",
		Long: `Save writes a snapshot of the live workspace. A bare file name is placed
in the data directory and gets the ` + types.WorkspaceExt + ` extension.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		path, err := a.workspacePath(args[0])
		if err != nil {
			return err
		}
		if err := s.SaveWorkspace(ctx, path); err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, map[string]string{"saved": path})
		}
		fmt.Fprintf(a.out, "Saved workspace to %s\n", path)
		return nil
	})
	return cmd
}

func (a *app) newWorkspaceOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Replace the workspace with a saved file",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, args []string) error {
		path, err := a.workspacePath(args[0])
		if err != nil {
			return err
		}
		if err := s.OpenWorkspace(ctx, path); err != nil {
			return err
		}
		info, err := s.Workspace().Info(ctx)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, info)
		}
		fmt.Fprintf(a.out, "Opened workspace %s from %s\n", info.WorkspaceID, path)
		return nil
	})
	return cmd
}

func (a *app) newWorkspaceInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the workspace identity and row counts",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
		info, err := s.Workspace().Info(ctx)
		if err != nil {
			return err
		}
		if a.flags.jsonMode {
			return printJSON(a.out, info)
		}
		fmt.Fprintf(a.out, "workspace: %s\ncreated:   %s\ndatabase:  %s\n", info.WorkspaceID, info.CreatedAt, info.Target)
		rows := make([][]string, 0, len(types.StandardTableNames))
		for _, name := range types.StandardTableNames {
			rows = append(rows, []string{name, fmt.Sprint(info.Rows[name])})
		}
		table(a.out, []string{"TABLE", "ROWS"}, rows)
		return nil
	})
	return cmd
}
