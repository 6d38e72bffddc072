package slogx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDoesNotReplaceDefaultLogger(t *testing.T) {
	before := slog.Default()

	logger := New(Config{Service: "shist", Version: "test", Env: "dev"})
	require.NotNil(t, logger)
	require.Same(t, before, slog.Default())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("info"))
	require.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Same(t, slog.Default(), FromContext(ctx))

	custom := New(Config{Service: "shist", Version: "test"})
	require.Same(t, custom, FromContext(WithContext(ctx, custom)))
}
