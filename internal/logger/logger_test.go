package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel checks recognized and unknown level strings.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	lvl, ok := ParseLogLevel("debug")
	require.True(t, ok)
	require.Equal(t, zapcore.DebugLevel, lvl)

	lvl, ok = ParseLogLevel(" WARN ")
	require.True(t, ok)
	require.Equal(t, zapcore.WarnLevel, lvl)

	lvl, ok = ParseLogLevel("nonsense")
	require.False(t, ok)
	require.Equal(t, zapcore.InfoLevel, lvl)
}

// TestContextRoundtrip ensures a logger stored in a context is returned by FromContext.
func TestContextRoundtrip(t *testing.T) {
	t.Parallel()

	l := New(zap.NewAtomicLevelAt(zap.ErrorLevel))
	ctx := ToContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	// Fallback to the global logger when nothing is stored.
	require.NotNil(t, FromContext(context.Background()))
}
