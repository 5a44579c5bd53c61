// Package bundler is the default engine implementation: a single-entry
// transform pipeline with no dependency resolution. It reads one entry,
// runs the attached plugins in order, wraps exports, and produces code
// plus an optional source map. The CLI talks to it only through the
// engine contract, so tests and future engines can slot in unchanged.
package bundler

import (
	"context"
	"log/slog"

	"github.com/RobLoach/duo/internal/cache"
	"github.com/RobLoach/duo/internal/engine"
	"github.com/RobLoach/duo/internal/plugin"
	"github.com/RobLoach/duo/internal/sourcemap"
)

// defaultOutDir is where Write materializes artifacts unless BuildTo says
// otherwise.
const defaultOutDir = "build"

// Session implements engine.Session.
type Session struct {
	root       string
	entry      engine.Entry
	dev        bool
	mapMode    sourcemap.Mode
	copyAssets bool
	token      string
	cacheOn    bool
	standalone string
	global     string
	outDir     string
	plugins    []plugin.Plugin
	emitter    *engine.Emitter
	store      *cache.Store
	log        *slog.Logger
}

// Option configures dependencies shared by every session a factory makes.
type Option func(*Session)

// WithStore attaches a build cache. Sessions with caching disabled ignore
// it.
func WithStore(store *cache.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger attaches a structured logger for debug traces.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New creates a session rooted at a project directory.
func New(root string, opts ...Option) *Session {
	s := &Session{
		root:    root,
		mapMode: sourcemap.ModeNone,
		cacheOn: true,
		outDir:  defaultOutDir,
		emitter: engine.NewEmitter(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Factory adapts New to the engine constructor contract, binding shared
// dependencies once.
func Factory(opts ...Option) engine.New {
	return func(root string) engine.Session {
		return New(root, opts...)
	}
}

func (s *Session) Entry(e engine.Entry) engine.Session {
	s.entry = e
	return s
}

func (s *Session) Development(on bool) engine.Session {
	s.dev = on
	return s
}

func (s *Session) SourceMap(mode sourcemap.Mode) engine.Session {
	s.mapMode = mode
	return s
}

func (s *Session) Copy(on bool) engine.Session {
	s.copyAssets = on
	return s
}

func (s *Session) Token(tok string) engine.Session {
	s.token = tok
	return s
}

func (s *Session) Cache(enabled bool) engine.Session {
	s.cacheOn = enabled
	return s
}

func (s *Session) Standalone(name string) engine.Session {
	s.standalone = name
	return s
}

func (s *Session) Global(name string) engine.Session {
	s.global = name
	return s
}

func (s *Session) BuildTo(dir string) engine.Session {
	if dir != "" {
		s.outDir = dir
	}
	return s
}

func (s *Session) Use(p plugin.Plugin) engine.Session {
	s.plugins = append(s.plugins, p)
	return s
}

func (s *Session) On(event engine.EventName, l engine.Listener) engine.Session {
	s.emitter.On(event, l)
	return s
}

// Run executes the build and returns the generated code.
func (s *Session) Run(ctx context.Context) (*engine.BuildResult, error) {
	return s.run(ctx)
}

// pluginNames is the cache key contribution of the pipeline.
func (s *Session) pluginNames() []string {
	names := make([]string, 0, len(s.plugins))
	for _, p := range s.plugins {
		names = append(names, p.Metadata().Name)
	}
	return names
}

var _ engine.Session = (*Session)(nil)
