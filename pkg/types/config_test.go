package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty database returns ErrDatabaseEmpty",
			config:  Config{Database: "", DataDir: "/tmp/data"},
			wantErr: ErrDatabaseEmpty,
		},
		{
			name:    "unknown log level returns ErrLogLevelUnknown",
			config:  Config{Database: MemoryTarget, LogLevel: "verbose"},
			wantErr: ErrLogLevelUnknown,
		},
		{
			name:    "valid memory config",
			config:  Config{Database: MemoryTarget},
			wantErr: nil,
		},
		{
			name:    "file database with empty DataDir is valid at config level",
			config:  Config{Database: "codex.db", LogLevel: LogLevelDebug},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigInMemory(t *testing.T) {
	if !(Config{Database: MemoryTarget}).InMemory() {
		t.Fatal("expected MemoryTarget to be in memory")
	}
	if (Config{Database: "codex.db"}).InMemory() {
		t.Fatal("expected a file database not to be in memory")
	}
}
