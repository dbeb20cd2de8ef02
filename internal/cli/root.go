// Package cli implements the codex command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacoblehr/codex/internal/logger"
	"github.com/jacoblehr/codex/internal/paths"
	"github.com/jacoblehr/codex/internal/sqlite"
	"github.com/jacoblehr/codex/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app carries the state shared by the commands of one invocation.
type app struct {
	flags rootFlags
	out   io.Writer
	cfg   types.Config
}

// systemError marks failures of the storage system or the environment, as
// opposed to bad input.
type systemError struct {
	err error
}

func (e systemError) Error() string { return e.err.Error() }
func (e systemError) Unwrap() error { return e.err }

// classify wraps store errors that were not caused by the caller.
func classify(err error) error {
	if err == nil || sqlite.IsUserError(err) {
		return err
	}
	var se systemError
	if errors.As(err, &se) {
		return err
	}
	return systemError{err: err}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se systemError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}

// NewRootCmd creates the top-level "codex" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "codex",
		Short: "A local bookmark manager",
		Long:  "Codex stores bookmarks, tags and links in a SQLite workspace\nthat can be saved to and opened from workspace files.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newBookmarkCmd())
	root.AddCommand(a.newTagCmd())
	root.AddCommand(a.newLinkCmd())
	root.AddCommand(a.newWorkspaceCmd())
	root.AddCommand(a.newExportCmd())
	root.AddCommand(a.newImportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "codex:", err)
		os.Exit(exitCode(err))
	}
}

// settings resolves the directories and loads config.yaml.
func (a *app) settings() (configDir string, cfg types.Config, err error) {
	configDir, err = paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return "", cfg, systemError{fmt.Errorf("resolving config dir: %w", err)}
	}
	cfg, err = loadConfig(configDir)
	if err != nil {
		return "", cfg, systemError{err}
	}
	cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return "", cfg, systemError{fmt.Errorf("resolving data dir: %w", err)}
	}
	return configDir, cfg, nil
}

// storeFunc is a command body that needs an open store.
type storeFunc func(ctx context.Context, s *sqlite.Store, args []string) error

// withStore opens the configured workspace around fn and closes it after.
func (a *app) withStore(fn storeFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a.out = cmd.OutOrStdout()
		_, cfg, err := a.settings()
		if err != nil {
			return err
		}
		a.cfg = cfg
		log, err := logger.New(cfg.LogLevel, cfg.LogPretty)
		if err != nil {
			return systemError{err}
		}
		defer log.Sync()

		ctx := cmd.Context()
		ws, err := sqlite.OpenWorkspace(ctx, cfg, log)
		if err != nil {
			return systemError{fmt.Errorf("opening workspace: %w", err)}
		}
		defer ws.Close()

		return classify(fn(ctx, sqlite.NewStore(ws, log), args))
	}
}
