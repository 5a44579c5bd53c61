// Package engine defines the contract between the CLI and a bundling
// engine. All execution paths (one-shot builds, stdout streaming, watch
// re-runs) drive sessions through this interface; the default
// implementation lives in internal/bundler and tests substitute their own.
package engine

import (
	"context"
	"time"

	"github.com/RobLoach/duo/internal/plugin"
	"github.com/RobLoach/duo/internal/sourcemap"
)

// New constructs a session rooted at a project directory.
type New func(root string) Session

// Session is a chainable build configuration with two terminal operations.
// Setters may be applied in any order; only plugin attachment order is
// significant, because it is the transform pipeline order.
type Session interface {
	// Entry sets what to build.
	Entry(e Entry) Session

	// Development toggles development-mode output.
	Development(on bool) Session

	// SourceMap selects how a source map accompanies the artifact.
	SourceMap(mode sourcemap.Mode) Session

	// Copy materializes assets by copying instead of linking.
	Copy(on bool) Session

	// Token attaches a credential for authenticated fetches.
	Token(tok string) Session

	// Cache toggles the build cache for this session.
	Cache(enabled bool) Session

	// Standalone names a self-contained bundle export.
	Standalone(name string) Session

	// Global exposes the bundle under a global name.
	Global(name string) Session

	// BuildTo sets the artifact directory for Write.
	BuildTo(dir string) Session

	// Use appends a plugin to the transform pipeline.
	Use(p plugin.Plugin) Session

	// On subscribes a listener to a progress event.
	On(event EventName, l Listener) Session

	// Run executes the build and returns the generated code.
	Run(ctx context.Context) (*BuildResult, error)

	// Write executes the build and materializes artifacts under the
	// build directory.
	Write(ctx context.Context) (*BuildResult, error)
}

// BuildResult contains the outcome of a session run.
type BuildResult struct {
	// Entry is the resolved entry this result belongs to.
	Entry Entry

	// Code is the generated output.
	Code string

	// Map is the generated source map, nil when disabled.
	Map *sourcemap.Map

	// OutPath is the artifact location after Write, empty after Run.
	OutPath string

	// MapPath is the sidecar location when the map mode is external.
	MapPath string

	// Cached reports whether the result came from the build cache.
	Cached bool

	// Duration is the total session execution time.
	Duration time.Duration

	// StartTime is when the run started.
	StartTime time.Time

	// EndTime is when the run completed.
	EndTime time.Time
}
