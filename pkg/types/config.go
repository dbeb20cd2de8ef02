package types

import "errors"

// MemoryTarget selects an in-memory database for Config.Database.
const MemoryTarget = ":memory:"

// Log levels accepted by Config.LogLevel.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// WorkspaceExt is the conventional extension of saved workspace files.
const WorkspaceExt = ".cdx"

// Config holds storage and logging parameters for opening a workspace.
type Config struct {
	// Database is MemoryTarget or a file name. A relative file name is
	// resolved against DataDir.
	Database  string `json:"database" yaml:"database"`
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogPretty bool   `json:"log_pretty" yaml:"log_pretty"`
}

// Config validation errors.
var (
	ErrDatabaseEmpty   = errors.New("database must not be empty")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

var knownLogLevels = map[string]bool{
	"":            true,
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.Database == "" {
		return ErrDatabaseEmpty
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}

// InMemory reports whether the config selects an in-memory database.
func (c Config) InMemory() bool {
	return c.Database == MemoryTarget
}
