package cli

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/RobLoach/duo/internal/engine"
	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/lang"
	"github.com/RobLoach/duo/internal/logfields"
)

// runStdin drains standard input, settles the content type, and streams
// one build back out.
func (r *Runner) runStdin(ctx context.Context) (Summary, *errors.DuoError) {
	raw, err := io.ReadAll(r.stdin)
	if err != nil {
		return Summary{}, errors.Wrap(err, errors.CategoryBuild, errors.SeverityFatal, "cannot read stdin")
	}

	typ := lang.Canonical(r.cfg.Type)
	if typ == "" {
		typ, err = lang.Detect(raw)
		if err != nil {
			return Summary{}, asDuo(err)
		}
	}
	// Progress labels must match the effective type, not the declared
	// one, or the stdin rewrite misses.
	r.adapter = r.adapter.WithType(typ)

	entry := engine.StdinEntry(typ, string(raw))
	buildID := newBuildID()
	r.log.Debug("building piped input", logfields.BuildID(buildID), logfields.Type(typ))

	s := r.newSession(entry, r.cfg.MapMode().ForStream())
	result, err := s.Run(ctx)
	if err != nil {
		r.publish(buildID, entry.Path, 0, err)
		return Summary{}, asDuo(err)
	}
	r.publish(buildID, result.Entry.Path, result.Duration.Milliseconds(), nil)
	r.recorder.ObserveBuildDuration(result.Duration)
	r.recorder.IncCacheResult(result.Cached)

	if derr := r.writeStream(result); derr != nil {
		return Summary{}, derr
	}
	return Summary{Mode: ModeStdin, Entries: 1}, nil
}

// runSingleStdout streams one entry file, optionally staying resident to
// rebuild on change. An initial failure with watch requested is reported
// but still leaves the watch engaged; a broken state at startup should
// heal on the next edit like any other rebuild failure.
func (r *Runner) runSingleStdout(ctx context.Context) (Summary, *errors.DuoError) {
	entry := engine.FileEntry(r.cfg.Entries[0])
	mapMode := r.cfg.MapMode().ForStream()

	build := func(ctx context.Context) *errors.DuoError {
		buildID := newBuildID()
		s := r.newSession(entry, mapMode)
		result, err := s.Run(ctx)
		if err != nil {
			r.publish(buildID, entry.Path, 0, err)
			return asDuo(err)
		}
		r.publish(buildID, result.Entry.Path, result.Duration.Milliseconds(), nil)
		r.recorder.ObserveBuildDuration(result.Duration)
		r.recorder.IncCacheResult(result.Cached)

		if !r.cfg.Quiet {
			r.reporter.End()
		}
		return r.writeStream(result)
	}

	derr := build(ctx)
	if !r.cfg.Watch {
		if derr != nil {
			return Summary{}, derr
		}
		return Summary{Mode: ModeSingleStdout, Entries: 1}, nil
	}

	if derr != nil {
		r.report(derr)
	}
	if werr := r.startWatch(ctx, r.rebuildAction(build)); werr != nil {
		return Summary{}, werr
	}
	r.waitResident(ctx)
	return Summary{Mode: ModeSingleStdout, Entries: 1, Watched: true}, nil
}

// runWriteFiles fans all entries out concurrently and joins on one
// barrier. Watch engages only after a successful initial build.
func (r *Runner) runWriteFiles(ctx context.Context) (Summary, *errors.DuoError) {
	entries := r.cfg.Entries

	build := func(ctx context.Context) *errors.DuoError {
		tasks := make([]task, 0, len(entries))
		for _, path := range entries {
			entryPath := path
			tasks = append(tasks, func(ctx context.Context) error {
				buildID := newBuildID()
				s := r.newSession(engine.FileEntry(entryPath), r.cfg.MapMode())
				result, err := s.Write(ctx)
				if err != nil {
					r.publish(buildID, entryPath, 0, err)
					return err
				}
				r.publish(buildID, result.Entry.Path, result.Duration.Milliseconds(), nil)
				r.recorder.ObserveBuildDuration(result.Duration)
				r.recorder.IncCacheResult(result.Cached)
				return nil
			})
		}
		if err := runConcurrent(ctx, len(tasks), tasks); err != nil {
			return asDuo(err)
		}
		if !r.cfg.Quiet {
			r.reporter.End()
		}
		return nil
	}

	if derr := build(ctx); derr != nil {
		return Summary{}, derr
	}

	if r.cfg.Watch {
		if werr := r.startWatch(ctx, r.rebuildAction(build)); werr != nil {
			return Summary{}, werr
		}
		r.waitResident(ctx)
		return Summary{Mode: ModeWriteFiles, Entries: len(entries), Watched: true}, nil
	}
	return Summary{Mode: ModeWriteFiles, Entries: len(entries)}, nil
}

// writeStream emits generated code, then the source map as a trailing
// comment separated by a blank line.
func (r *Runner) writeStream(result *engine.BuildResult) *errors.DuoError {
	if _, err := io.WriteString(r.stdout, result.Code); err != nil {
		return errors.WriteFailed("stdout", err)
	}
	if result.Map == nil {
		return nil
	}
	comment, err := result.Map.Comment(result.Entry.Type)
	if err != nil {
		return errors.WriteFailed("stdout", err)
	}
	if _, err := io.WriteString(r.stdout, "\n\n"+comment+"\n"); err != nil {
		return errors.WriteFailed("stdout", err)
	}
	return nil
}

// rebuildAction wraps a build closure for the watch loop: failures are
// reported and swallowed so the watcher survives broken edits.
func (r *Runner) rebuildAction(build func(context.Context) *errors.DuoError) func(context.Context) {
	return func(ctx context.Context) {
		r.recorder.IncRebuild()
		if derr := build(ctx); derr != nil {
			r.report(derr)
		}
	}
}

func (r *Runner) startWatch(ctx context.Context, action func(context.Context)) *errors.DuoError {
	if r.watcher == nil {
		return errors.WatchError(stderrors.New("no watch supervisor configured"))
	}
	if err := r.watcher.Start(ctx, action); err != nil {
		return asDuo(err)
	}
	r.recorder.SetWatchActive(true)
	return nil
}

// waitResident parks the invocation until the process is told to stop.
func (r *Runner) waitResident(ctx context.Context) {
	<-ctx.Done()
}
