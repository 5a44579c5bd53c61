// Package config holds the resolved settings for one duo invocation:
// command-line flags merged with the optional duo.yml manifest, on top of
// environment files. Flags always win over the manifest.
package config

import (
	"path/filepath"
	"time"

	"github.com/RobLoach/duo/internal/cache"
	"github.com/RobLoach/duo/internal/sourcemap"
)

// DefaultOutput is the artifact directory used when neither a flag nor
// the manifest names one.
const DefaultOutput = "build"

// DefaultNotifySubject is the broker subject build events publish to.
const DefaultNotifySubject = "duo.builds"

// RunConfig is the complete, immutable input of a run. The CLI assembles
// it once before anything executes; nothing mutates it afterwards.
type RunConfig struct {
	// Root is the resolved project root directory, always absolute.
	Root string

	// Entries are the entry files to build, as given on the command line.
	Entries []string

	// Type is the declared content type for piped input.
	Type string

	// Output is the artifact directory, relative to Root unless absolute.
	Output string

	// Development enables development output and inline source maps.
	Development bool

	// SourceMaps requests external sidecar source maps.
	SourceMaps bool

	// Standalone names a self-contained bundle export.
	Standalone string

	// Global exposes the bundle under a window property.
	Global string

	// Copy materializes untransformed artifacts by copying instead of
	// symlinking.
	Copy bool

	// UseCache enables the build cache.
	UseCache bool

	// CacheDir overrides the cache database location.
	CacheDir string

	// Plugins are transform plugin names, in pipeline order.
	Plugins []string

	// Quiet silences all progress output.
	Quiet bool

	// Verbose enables resolution-level progress and debug logs.
	Verbose bool

	// Stdout streams the bundle to standard output.
	Stdout bool

	// Watch keeps the process resident and rebuilds on change.
	Watch bool

	// RebuildEvery forces periodic rebuilds while watching, zero disables.
	RebuildEvery time.Duration

	// Token authenticates remote fetches.
	Token string

	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string

	// LogFile mirrors logs to a rotating file when non-empty.
	LogFile string

	// NotifyURL publishes build events to a broker when non-empty.
	NotifyURL string

	// NotifySubject is the broker subject for build events.
	NotifySubject string
}

// MapMode derives the source-map mode from the development and external
// flags. An explicit external request wins over development inlining.
func (c *RunConfig) MapMode() sourcemap.Mode {
	return sourcemap.ModeFor(c.Development, c.SourceMaps)
}

// OutputDir returns the absolute artifact directory.
func (c *RunConfig) OutputDir() string {
	out := c.Output
	if out == "" {
		out = DefaultOutput
	}
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(c.Root, out)
}

// CachePath returns the cache database location, defaulting to the
// conventional spot under the project root.
func (c *RunConfig) CachePath() string {
	if c.CacheDir != "" {
		return filepath.Join(c.CacheDir, cache.FileName)
	}
	return cache.DefaultPath(c.Root)
}

// Subject returns the notify subject with its default applied.
func (c *RunConfig) Subject() string {
	if c.NotifySubject != "" {
		return c.NotifySubject
	}
	return DefaultNotifySubject
}
