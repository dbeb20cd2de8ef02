// Package paths resolves the configuration directory, the data directory
// and workspace file names used by the codex CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jacoblehr/codex/pkg/types"
)

// appName is the directory name codex uses under the platform config and
// data roots.
const appName = "codex"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CODEX_CONFIG_DIR"
	EnvDataDir   = "CODEX_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/codex (fallback ~/.config/codex)
// macOS:   ~/Library/Application Support/codex
// Windows: %APPDATA%/codex
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/codex (fallback ~/.local/share/codex)
// macOS:   ~/Library/Application Support/codex
// Windows: %APPDATA%/codex
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	// macOS and Windows keep data beside the config.
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

func xdgDir(env, homeRel string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > CODEX_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml data_dir > CODEX_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, v := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	return DefaultDataDir()
}

// WorkspaceFile returns the path of a saved workspace. A bare name is
// placed in dataDir; a name without an extension gets types.WorkspaceExt.
func WorkspaceFile(dataDir, name string) (string, error) {
	if filepath.Ext(name) == "" {
		name += types.WorkspaceExt
	}
	if !strings.ContainsRune(name, filepath.Separator) && dataDir != "" {
		name = filepath.Join(dataDir, name)
	}
	return filepath.Abs(name)
}
