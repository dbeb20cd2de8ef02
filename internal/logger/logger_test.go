package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *zapcore.Level
	}{
		{"debug", levelPtr(zapcore.DebugLevel)},
		{"info", levelPtr(zapcore.InfoLevel)},
		{"warn", levelPtr(zapcore.WarnLevel)},
		{"error", levelPtr(zapcore.ErrorLevel)},
		{"", nil},
		{"verbose", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New("debug", false)
	require.NoError(t, err)
	require.NotNil(t, l)

	l, err = New("", true)
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(String("workspace", "ws-1"))

	l.Info("saved", Int64("bookmarks", 3), Error(errors.New("boom")))
	l.Debugf("loaded %d rows", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "saved", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "ws-1", ctx["workspace"])
	assert.Equal(t, int64(3), ctx["bookmarks"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "loaded 2 rows", entries[1].Message)
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("ignored")
	assert.NoError(t, l.Sync())
}

func levelPtr(l zapcore.Level) *zapcore.Level { return &l }
