package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacoblehr/codex/internal/sqlite"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize codex storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nand create the workspace database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, cfg, err := a.settings()
			if err != nil {
				return err
			}
			dataDir := ""
			if a.flags.dataDir != "" {
				dataDir = cfg.DataDir
			}
			path, err := writeConfigIfMissing(configDir, dataDir)
			if err != nil {
				return systemError{err}
			}

			return a.withStore(func(ctx context.Context, s *sqlite.Store, _ []string) error {
				info, err := s.Workspace().Info(ctx)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return printJSON(a.out, map[string]string{
						"config":       path,
						"data_dir":     cfg.DataDir,
						"workspace_id": info.WorkspaceID,
					})
				}
				fmt.Fprintf(a.out, "Codex initialized\n  config:    %s\n  database:  %s\n", path, info.Target)
				return nil
			})(cmd, args)
		},
	}
}
