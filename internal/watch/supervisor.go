// Package watch keeps a build resident: it watches the project tree,
// coalesces bursts of filesystem events, and re-runs a build action until
// the context ends. A supervisor engages at most once per process; later
// requests to watch the same run are no-ops.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/RobLoach/duo/internal/cache"
	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/logfields"
)

// debounceWindow batches rapid event bursts into one rebuild.
const debounceWindow = 300 * time.Millisecond

// sweepInterval and sweepAge drive the periodic cache cleanup while a
// watch is resident.
const (
	sweepInterval = 24 * time.Hour
	sweepAge      = 7 * 24 * time.Hour
)

// Supervisor watches a project root and re-runs a build action on change.
type Supervisor struct {
	root    string
	ignored []string
	every   time.Duration
	store   *cache.Store
	log     *slog.Logger
	active  atomic.Bool
}

// Option configures a supervisor.
type Option func(*Supervisor)

// WithIgnoredDirs excludes directory trees from change detection. The
// output directory belongs here so artifact writes cannot retrigger the
// build that produced them.
func WithIgnoredDirs(dirs ...string) Option {
	return func(s *Supervisor) {
		for _, dir := range dirs {
			if dir != "" {
				s.ignored = append(s.ignored, filepath.Clean(dir))
			}
		}
	}
}

// WithRebuildEvery forces a rebuild on a fixed interval alongside
// change-driven ones. Zero disables forced rebuilds.
func WithRebuildEvery(every time.Duration) Option {
	return func(s *Supervisor) { s.every = every }
}

// WithSweep schedules periodic cleanup of stale cache entries while the
// watch is resident.
func WithSweep(store *cache.Store) Option {
	return func(s *Supervisor) { s.store = store }
}

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Supervisor) { s.log = log }
}

// NewSupervisor creates a supervisor for a project root.
func NewSupervisor(root string, opts ...Option) *Supervisor {
	s := &Supervisor{
		root: root,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Active reports whether the supervisor has engaged.
func (s *Supervisor) Active() bool {
	return s.active.Load()
}

// Start engages the watch and returns once it is running. Starting an
// already active supervisor is a no-op, so every build path can request
// watching without coordinating. The watch runs until ctx ends.
func (s *Supervisor) Start(ctx context.Context, rebuild func(context.Context)) error {
	if !s.active.CompareAndSwap(false, true) {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WatchError(err)
	}
	if err := s.addDirsRecursive(watcher, s.root); err != nil {
		_ = watcher.Close()
		return errors.WatchError(err)
	}

	requests, trigger := debouncer()
	go s.worker(ctx, rebuild, requests)
	go s.loop(ctx, watcher, trigger)
	s.schedule(ctx, trigger)

	s.log.Debug("watching for changes", logfields.Root(s.root))
	return nil
}

// debouncer returns the rebuild request channel and a trigger that arms a
// short timer, so storms of events collapse into one request.
func debouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	requests := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}

	return requests, trigger
}

// worker serializes rebuilds. Requests arriving mid-build set a pending
// flag and run once the current build finishes.
func (s *Supervisor) worker(ctx context.Context, rebuild func(context.Context), requests chan struct{}) {
	var mu sync.Mutex
	running := false
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-requests:
			mu.Lock()
			if running {
				pending = true
				mu.Unlock()
				continue
			}
			running = true
			mu.Unlock()

			rebuild(ctx)

			mu.Lock()
			running = false
			if pending {
				pending = false
				mu.Unlock()
				select {
				case requests <- struct{}{}:
				default:
				}
			} else {
				mu.Unlock()
			}
		}
	}
}

// loop consumes filesystem events until the context ends.
func (s *Supervisor) loop(ctx context.Context, watcher *fsnotify.Watcher, trigger func()) {
	defer func() { _ = watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", logfields.Error(err))
		}
	}
}

// handleEvent filters noise, starts watching newly created directories,
// and arms the debouncer.
func (s *Supervisor) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if s.shouldIgnore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = s.addDirsRecursive(watcher, ev.Name)
		}
	}
	s.log.Debug("change detected", logfields.Path(ev.Name))
	trigger()
}

// schedule starts the periodic jobs: forced rebuilds and cache sweeps.
// Scheduling problems degrade the watch rather than failing it.
func (s *Supervisor) schedule(ctx context.Context, trigger func()) {
	if s.every <= 0 && s.store == nil {
		return
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		s.log.Warn("scheduler unavailable", logfields.Error(err))
		return
	}

	if s.every > 0 {
		if _, err := sched.NewJob(
			gocron.DurationJob(s.every),
			gocron.NewTask(trigger),
			gocron.WithName("forced-rebuild"),
		); err != nil {
			s.log.Warn("could not schedule forced rebuilds", logfields.Error(err))
		}
	}
	if s.store != nil {
		if _, err := sched.NewJob(
			gocron.DurationJob(sweepInterval),
			gocron.NewTask(s.sweepCache),
			gocron.WithName("cache-sweep"),
		); err != nil {
			s.log.Warn("could not schedule cache sweeps", logfields.Error(err))
		}
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		_ = sched.Shutdown()
	}()
}

func (s *Supervisor) sweepCache() {
	n, err := s.store.Sweep(context.Background(), sweepAge)
	if err != nil {
		s.log.Warn("cache sweep failed", logfields.Error(err))
		return
	}
	if n > 0 {
		s.log.Debug("swept stale cache entries", slog.Int64("entries", n))
	}
}

func (s *Supervisor) addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if s.ignoredDir(path) || hiddenDir(root, path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			s.log.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// ignoredDir reports whether path falls inside an ignored tree.
func (s *Supervisor) ignoredDir(path string) bool {
	clean := filepath.Clean(path)
	for _, dir := range s.ignored {
		if clean == dir || strings.HasPrefix(clean, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// hiddenDir reports whether path is a dot directory below the watch root.
// The root itself may be hidden; that is the caller's choice.
func hiddenDir(root, path string) bool {
	if path == root {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), ".")
}

// shouldIgnore filters events that must not trigger rebuilds: artifacts
// we wrote ourselves, hidden files, and editor droppings.
func (s *Supervisor) shouldIgnore(path string) bool {
	if s.ignoredDir(path) {
		return true
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}
