package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/RobLoach/duo/internal/auth"
	"github.com/RobLoach/duo/internal/bundler"
	"github.com/RobLoach/duo/internal/cache"
	"github.com/RobLoach/duo/internal/cli"
	"github.com/RobLoach/duo/internal/config"
	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/logfields"
	"github.com/RobLoach/duo/internal/metrics"
	"github.com/RobLoach/duo/internal/notify"
	"github.com/RobLoach/duo/internal/plugin"
	"github.com/RobLoach/duo/internal/version"
	"github.com/RobLoach/duo/internal/watch"
)

type cliFlags struct {
	Entries []string `arg:"" optional:"" help:"Entry files to build."`

	Copy               bool     `short:"c" help:"Copy untransformed files instead of symlinking."`
	NoCache            bool     `short:"C" help:"Disable the build cache."`
	Development        bool     `short:"d" help:"Build for development with inline source maps."`
	ExternalSourceMaps bool     `short:"e" name:"external-source-maps" help:"Write source maps as sidecar files."`
	Global             string   `short:"g" help:"Expose the bundle as a window property." placeholder:"NAME"`
	Output             string   `short:"o" help:"Artifact output directory." placeholder:"DIR"`
	Quiet              bool     `short:"q" help:"Only output errors."`
	Root               string   `short:"r" help:"Project root directory." placeholder:"DIR"`
	Standalone         string   `short:"s" help:"Build a standalone bundle under the given name." placeholder:"NAME"`
	Stdout             bool     `short:"S" help:"Stream the bundle to stdout instead of writing files."`
	Type               string   `short:"t" help:"Content type of piped input." placeholder:"TYPE"`
	Use                []string `short:"u" help:"Transform plugins to apply, in order." placeholder:"PLUGIN"`
	Verbose            bool     `short:"v" help:"Show resolution progress and debug logs."`
	Watch              bool     `short:"w" help:"Stay resident and rebuild on change."`

	MetricsAddr string           `name:"metrics-addr" help:"Serve Prometheus metrics on this address." placeholder:"ADDR"`
	LogFile     string           `name:"log-file" help:"Mirror logs to a rotating file." placeholder:"FILE"`
	Version     kong.VersionFlag `short:"V" help:"Print version and exit."`
}

var CLI cliFlags

func main() {
	os.Exit(run())
}

// run carries one invocation from flag parsing to an exit code. It is the
// only function allowed to decide the process outcome; everything below
// it returns errors.
func run() int {
	kctx := kong.Parse(&CLI,
		kong.Name("duo"),
		kong.Description("Bundle component-based JavaScript, CSS, and HTML from a project root."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	logger := newLogger(CLI.Verbose, CLI.Quiet, CLI.LogFile)
	slog.SetDefault(logger)
	errs := errors.NewCLIErrorAdapter(CLI.Verbose, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := config.ResolveRoot(CLI.Root)
	if err != nil {
		return errs.HandleError(err)
	}
	if loaded := config.LoadEnv(root); len(loaded) > 0 {
		logger.Debug("environment files loaded", logfields.Root(root), slog.Any("files", loaded))
	}

	cfg := &config.RunConfig{
		Root:        root,
		Entries:     CLI.Entries,
		Type:        CLI.Type,
		Output:      CLI.Output,
		Development: CLI.Development,
		SourceMaps:  CLI.ExternalSourceMaps,
		Standalone:  CLI.Standalone,
		Global:      CLI.Global,
		Copy:        CLI.Copy,
		UseCache:    !CLI.NoCache,
		Plugins:     CLI.Use,
		Quiet:       CLI.Quiet,
		Verbose:     CLI.Verbose,
		Stdout:      CLI.Stdout,
		Watch:       CLI.Watch,
		MetricsAddr: CLI.MetricsAddr,
		LogFile:     CLI.LogFile,
	}
	manifest, err := config.LoadDuofile(root)
	if err != nil {
		return errs.HandleError(err)
	}
	if err := manifest.Merge(cfg); err != nil {
		return errs.HandleError(err)
	}

	stdinTTY := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	mode, derr := cli.ResolveMode(cfg, stdinTTY)
	if derr != nil {
		return errs.HandleError(derr)
	}
	if mode == cli.ModeHelp {
		_ = kctx.PrintUsage(false)
		return 0
	}

	plugins, err := plugin.Load(cfg.Plugins)
	if err != nil {
		return errs.HandleError(err)
	}

	if tok := auth.Lookup(); tok.IsSome() {
		cfg.Token = tok.Unwrap().Value
		logger.Debug("access token found", slog.String("source", tok.Unwrap().Source))
	}

	// The cache is an optimization; an unopenable database degrades to
	// uncached builds rather than failing the run.
	var store *cache.Store
	if cfg.UseCache {
		store, err = cache.Open(cfg.CachePath())
		if err != nil {
			logger.Warn("cache unavailable, building without it", logfields.Error(err))
		} else {
			defer store.Close()
		}
	}

	runnerOpts := []cli.RunnerOption{
		cli.WithPlugins(plugins),
		cli.WithLogger(logger),
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		go metrics.Serve(ctx, cfg.MetricsAddr, reg, logger)
	}
	runnerOpts = append(runnerOpts, cli.WithRecorder(recorder))

	if cfg.NotifyURL != "" {
		publisher, err := notify.Connect(ctx, cfg.NotifyURL, cfg.Subject(), logger)
		if err != nil {
			return errs.HandleError(err)
		}
		defer publisher.Close()
		runnerOpts = append(runnerOpts, cli.WithNotifier(publisher))
	}

	if cfg.Watch {
		watchOpts := []watch.Option{
			watch.WithIgnoredDirs(cfg.OutputDir(), filepath.Dir(cfg.CachePath())),
			watch.WithLogger(logger),
		}
		if cfg.RebuildEvery > 0 {
			watchOpts = append(watchOpts, watch.WithRebuildEvery(cfg.RebuildEvery))
		}
		if store != nil {
			watchOpts = append(watchOpts, watch.WithSweep(store))
		}
		runnerOpts = append(runnerOpts, cli.WithWatcher(watch.NewSupervisor(root, watchOpts...)))
	}

	factory := bundler.Factory(bundler.WithStore(store), bundler.WithLogger(logger))
	runner := cli.NewRunner(cfg, mode, factory, runnerOpts...)

	res := runner.Execute(ctx)
	if res.IsErr() {
		// Already reported through the console; only the code is left.
		return errs.ExitCodeFor(res.UnwrapErr())
	}
	summary := res.Unwrap()
	logger.Debug("run complete",
		logfields.Mode(summary.Mode.String()),
		logfields.Entries(summary.Entries))
	return 0
}

// newLogger builds the structured logger: debug when verbose, warnings
// only when quiet, mirrored to a rotating file when one is named.
func newLogger(verbose, quiet bool, logFile string) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
