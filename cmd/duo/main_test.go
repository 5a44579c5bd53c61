package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseArgs runs the flag grammar against a fresh struct so tests never
// mutate the package-level one.
func parseArgs(t *testing.T, args ...string) cliFlags {
	t.Helper()
	var fresh cliFlags
	parser, err := kong.New(&fresh, kong.Name("duo"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return fresh
}

func TestFlagGrammar(t *testing.T) {
	got := parseArgs(t, "-d", "-o", "dist", "-u", "markdown", "-u", "text", "index.js", "lib/app.css")

	assert.True(t, got.Development)
	assert.Equal(t, "dist", got.Output)
	assert.Equal(t, []string{"markdown", "text"}, got.Use)
	assert.Equal(t, []string{"index.js", "lib/app.css"}, got.Entries)
}

func TestShortFlagCaseIsSignificant(t *testing.T) {
	got := parseArgs(t, "-s", "widgets", "-S", "index.js")

	assert.Equal(t, "widgets", got.Standalone)
	assert.True(t, got.Stdout)
	assert.Equal(t, []string{"index.js"}, got.Entries)

	got = parseArgs(t, "-C", "-c", "index.js")
	assert.True(t, got.NoCache)
	assert.True(t, got.Copy)
}

func TestNoArgumentsParse(t *testing.T) {
	got := parseArgs(t)
	assert.Empty(t, got.Entries)
	assert.False(t, got.Watch)
}

func TestNewLoggerLevels(t *testing.T) {
	ctx := context.Background()

	verbose := newLogger(true, false, "")
	assert.True(t, verbose.Enabled(ctx, slog.LevelDebug))

	quiet := newLogger(false, true, "")
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	normal := newLogger(false, false, "")
	assert.False(t, normal.Enabled(ctx, slog.LevelDebug))
	assert.True(t, normal.Enabled(ctx, slog.LevelInfo))
}

func TestNewLoggerMirrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duo.log")
	logger := newLogger(false, false, path)

	logger.Info("mirror check")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mirror check")
}
