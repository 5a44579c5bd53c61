package cli

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/RobLoach/duo/internal/config"
	"github.com/RobLoach/duo/internal/console"
	"github.com/RobLoach/duo/internal/engine"
	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/foundation"
	"github.com/RobLoach/duo/internal/logfields"
	"github.com/RobLoach/duo/internal/metrics"
	"github.com/RobLoach/duo/internal/notify"
	"github.com/RobLoach/duo/internal/plugin"
	"github.com/RobLoach/duo/internal/sourcemap"
	"github.com/RobLoach/duo/internal/watch"
)

// Summary is what a completed invocation reports upward.
type Summary struct {
	// Mode is the run mode that executed.
	Mode RunMode

	// Entries is how many entries were built.
	Entries int

	// Watched reports whether the run stayed resident watching for
	// changes.
	Watched bool
}

// Runner drives one invocation through its selected mode. Every failure
// it encounters is reported through the console; the returned result
// carries the error upward purely for the exit-code decision.
type Runner struct {
	cfg      *config.RunConfig
	mode     RunMode
	factory  engine.New
	plugins  []plugin.Plugin
	reporter *console.Reporter
	adapter  *console.Adapter
	errs     *errors.CLIErrorAdapter
	watcher  *watch.Supervisor
	recorder metrics.Recorder
	notifier *notify.Publisher
	stdout   io.Writer
	stdin    io.Reader
	log      *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPlugins attaches the loaded transform pipeline.
func WithPlugins(plugins []plugin.Plugin) RunnerOption {
	return func(r *Runner) { r.plugins = plugins }
}

// WithReporter substitutes the progress reporter.
func WithReporter(rep *console.Reporter) RunnerOption {
	return func(r *Runner) { r.reporter = rep }
}

// WithWatcher attaches the watch supervisor.
func WithWatcher(w *watch.Supervisor) RunnerOption {
	return func(r *Runner) { r.watcher = w }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec metrics.Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithNotifier attaches a build event publisher.
func WithNotifier(p *notify.Publisher) RunnerOption {
	return func(r *Runner) { r.notifier = p }
}

// WithStdout redirects streamed output.
func WithStdout(w io.Writer) RunnerOption {
	return func(r *Runner) { r.stdout = w }
}

// WithStdin substitutes the input stream.
func WithStdin(rd io.Reader) RunnerOption {
	return func(r *Runner) { r.stdin = rd }
}

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// NewRunner assembles a runner for a resolved configuration and mode.
func NewRunner(cfg *config.RunConfig, mode RunMode, factory engine.New, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:      cfg,
		mode:     mode,
		factory:  factory,
		recorder: metrics.NoopRecorder{},
		stdout:   os.Stdout,
		stdin:    os.Stdin,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = console.NewReporter(os.Stderr, cfg.Quiet)
	}
	r.adapter = console.NewAdapter(r.reporter, cfg.Type)
	r.errs = errors.NewCLIErrorAdapter(cfg.Verbose, r.log)
	return r
}

// Execute runs the invocation to completion. Errors come back in the
// result after being reported; callers only translate them to an exit
// code.
func (r *Runner) Execute(ctx context.Context) foundation.Result[Summary, *errors.DuoError] {
	var (
		summary Summary
		derr    *errors.DuoError
	)

	switch r.mode {
	case ModeStdin:
		summary, derr = r.runStdin(ctx)
	case ModeSingleStdout:
		summary, derr = r.runSingleStdout(ctx)
	case ModeWriteFiles:
		summary, derr = r.runWriteFiles(ctx)
	default:
		derr = errors.Internal("no executable run mode selected", nil)
	}

	if derr != nil {
		r.report(derr)
		r.recorder.IncBuildOutcome(outcomeFor(derr))
		return foundation.Err[Summary](derr)
	}
	r.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	return foundation.Ok[Summary, *errors.DuoError](summary)
}

// newSession configures one engine session. Setter order does not matter;
// plugin order does, since it is the transform pipeline.
func (r *Runner) newSession(entry engine.Entry, mapMode sourcemap.Mode) engine.Session {
	s := r.factory(r.cfg.Root).
		Entry(entry).
		Development(r.cfg.Development).
		SourceMap(mapMode).
		Copy(r.cfg.Copy).
		Cache(r.cfg.UseCache).
		BuildTo(r.cfg.Output)
	if r.cfg.Token != "" {
		s = s.Token(r.cfg.Token)
	}
	if r.cfg.Standalone != "" {
		s = s.Standalone(r.cfg.Standalone)
	}
	if r.cfg.Global != "" {
		s = s.Global(r.cfg.Global)
	}
	for _, p := range r.plugins {
		s = s.Use(p)
	}
	r.attachListeners(s)
	return s
}

// attachListeners subscribes the console adapter to session progress.
// Quiet runs attach nothing at all; verbose runs additionally surface the
// resolution phase.
func (r *Runner) attachListeners(s engine.Session) {
	if r.cfg.Quiet {
		return
	}

	s.On(engine.EventInstall, r.adapter.Listener(console.LevelInstalled)).
		On(engine.EventUsing, r.adapter.Listener(console.LevelUsing)).
		On(engine.EventRunning, r.adapter.Listener(console.LevelBuilding)).
		On(engine.EventRun, r.adapter.Listener(console.LevelBuilt)).
		On(engine.EventWrite, r.adapter.Listener(console.LevelWrote))

	if r.cfg.Verbose {
		s.On(engine.EventResolving, r.adapter.Listener(console.LevelFinding)).
			On(engine.EventResolve, r.adapter.Listener(console.LevelFound)).
			On(engine.EventInstalling, r.adapter.Listener(console.LevelInstalling))
	}
}

// report renders one failure through the console error level. This is the
// only place build errors become user-visible.
func (r *Runner) report(derr *errors.DuoError) {
	r.reporter.Log(console.LevelError, r.errs.FormatError(derr))
	r.log.Debug("run failed", logfields.Mode(r.mode.String()), logfields.Error(derr))
}

// asDuo normalizes any failure into the structured form the reporter and
// exit path understand.
func asDuo(err error) *errors.DuoError {
	var derr *errors.DuoError
	if stderrors.As(err, &derr) {
		return derr
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.CategoryBuild, errors.SeverityFatal, "build interrupted")
	}
	return errors.Wrap(err, errors.CategoryBuild, errors.SeverityFatal, "build failed")
}

func outcomeFor(derr *errors.DuoError) metrics.OutcomeLabel {
	if stderrors.Is(derr, context.Canceled) || stderrors.Is(derr, context.DeadlineExceeded) {
		return metrics.OutcomeCanceled
	}
	return metrics.OutcomeFailed
}

// publish sends one build event to the notifier, if any. Publish problems
// degrade to a warning; notifications never fail a build.
func (r *Runner) publish(buildID, entryPath string, durationMS int64, buildErr error) {
	event := &notify.BuildEvent{
		BuildID:    buildID,
		Entry:      entryPath,
		Status:     notify.StatusSuccess,
		DurationMS: durationMS,
	}
	if buildErr != nil {
		event.Status = notify.StatusFailed
		event.Error = buildErr.Error()
	}
	if err := r.notifier.Publish(event); err != nil {
		r.log.Warn("notify publish failed", logfields.BuildID(buildID), logfields.Error(err))
	}
}

func newBuildID() string {
	return uuid.NewString()
}
