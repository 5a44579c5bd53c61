package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCount polls until the counter reaches want or the deadline
// passes. Filesystem notification latency varies wildly across CI hosts,
// so the deadline is generous.
func waitForCount(t *testing.T, counter *atomic.Int64, want int64, deadline time.Duration) bool {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if counter.Load() >= want {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return counter.Load() >= want
}

func startSupervisor(t *testing.T, root string, opts ...Option) (*Supervisor, *atomic.Int64) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var rebuilds atomic.Int64
	s := NewSupervisor(root, opts...)
	require.NoError(t, s.Start(ctx, func(context.Context) {
		rebuilds.Add(1)
	}))
	return s, &rebuilds
}

func TestStartIsIdempotent(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := NewSupervisor(root)
	require.NoError(t, s.Start(ctx, func(context.Context) {}))
	assert.True(t, s.Active())

	require.NoError(t, s.Start(ctx, func(context.Context) {}))
	assert.True(t, s.Active())
}

func TestRebuildOnChange(t *testing.T) {
	root := t.TempDir()
	_, rebuilds := startSupervisor(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "index.js"), []byte("var a = 1;\n"), 0o644))

	assert.True(t, waitForCount(t, rebuilds, 1, 5*time.Second), "expected a rebuild after a file change")
}

func TestBurstCoalesces(t *testing.T) {
	root := t.TempDir()
	_, rebuilds := startSupervisor(t, root)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "index.js"), []byte("var a = 1;\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, waitForCount(t, rebuilds, 1, 5*time.Second))
	time.Sleep(2 * debounceWindow)
	assert.LessOrEqual(t, rebuilds.Load(), int64(2), "a burst should coalesce into at most a couple of rebuilds")
}

func TestNewDirectoriesAreWatched(t *testing.T) {
	root := t.TempDir()
	_, rebuilds := startSupervisor(t, root)

	sub := filepath.Join(root, "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.True(t, waitForCount(t, rebuilds, 1, 5*time.Second))

	before := rebuilds.Load()
	// Give the watcher a moment to register the new directory.
	time.Sleep(500 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "util.js"), []byte("var u = 1;\n"), 0o644))

	assert.True(t, waitForCount(t, rebuilds, before+1, 5*time.Second), "changes inside new directories should rebuild")
}

func TestIgnoredOutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(out, 0o755))

	_, rebuilds := startSupervisor(t, root, WithIgnoredDirs(out))

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.js"), []byte("artifact\n"), 0o644))
	time.Sleep(3 * debounceWindow)
	assert.Zero(t, rebuilds.Load(), "artifact writes must not retrigger builds")
}

func TestShouldIgnore(t *testing.T) {
	s := NewSupervisor("/proj", WithIgnoredDirs("/proj/build", "/proj/components"))

	tests := []struct {
		path string
		want bool
	}{
		{"/proj/index.js", false},
		{"/proj/lib/util.js", false},
		{"/proj/.git/HEAD", true},
		{"/proj/index.js~", true},
		{"/proj/.index.js.swp", true},
		{"/proj/#index.js#", true},
		{"/proj/Thumbs.db", true},
		{"/proj/build/index.js", true},
		{"/proj/components/duo-cache.db", true},
		{"/proj/builder.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, s.shouldIgnore(tt.path))
		})
	}
}
