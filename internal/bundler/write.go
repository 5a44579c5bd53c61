package bundler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RobLoach/duo/internal/engine"
	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/logfields"
	"github.com/RobLoach/duo/internal/sourcemap"
)

// Write executes the build and materializes the artifact under the output
// directory, emitting install and write events along the way.
func (s *Session) Write(ctx context.Context) (*engine.BuildResult, error) {
	// The artifact directory does not depend on the final type, so it can
	// be prepared before the transform runs.
	prepare := func(res *resolved) error {
		s.emitter.Emit(engine.EventInstalling, engine.EntityPayload(res.entry))
		dir := filepath.Dir(s.artifactPath(res.entry))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WriteFailed(dir, err)
		}
		s.emitter.Emit(engine.EventInstall, engine.EntityPayload(res.entry))
		return nil
	}

	result, res, err := s.build(ctx, prepare)
	if err != nil {
		return nil, err
	}
	outPath := s.artifactPath(result.Entry)

	if s.passthrough(result, res) {
		if err := s.link(res.abs, outPath); err != nil {
			return nil, err
		}
	} else {
		if err := s.materialize(result, outPath); err != nil {
			return nil, err
		}
	}
	result.OutPath = outPath

	s.emitter.Emit(engine.EventWrite, engine.LabelPayload(s.displayPath(outPath)))
	return result, nil
}

// artifactPath maps an entry to its location under the output directory,
// swapping the extension to the final type.
func (s *Session) artifactPath(entry engine.Entry) string {
	out := s.outDir
	if !filepath.IsAbs(out) {
		out = filepath.Join(s.root, out)
	}
	name := entry.Path
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return filepath.Join(out, name+"."+entry.Type)
}

// passthrough reports whether the artifact is byte-identical to the entry
// on disk, in which case a symlink is enough.
func (s *Session) passthrough(result *engine.BuildResult, res *resolved) bool {
	return res.abs != "" && result.Map == nil && result.Code == res.source
}

// link points the artifact at the source file. The copy flag, and
// filesystems without symlink support, fall back to a real copy.
func (s *Session) link(src, dst string) error {
	if !s.copyAssets {
		_ = os.Remove(dst)
		if err := os.Symlink(src, dst); err == nil {
			return nil
		}
		s.log.Debug("symlink unavailable, copying", logfields.Path(dst))
	}
	return s.copyFile(src, dst)
}

func (s *Session) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WriteFailed(dst, err)
	}
	defer in.Close()

	_ = os.Remove(dst)
	out, err := os.Create(dst)
	if err != nil {
		return errors.WriteFailed(dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WriteFailed(dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.WriteFailed(dst, err)
	}
	return nil
}

// materialize writes generated code, attaching the source map per the
// session's map mode: inline as a trailing data URI, external as a
// sidecar next to the artifact.
func (s *Session) materialize(result *engine.BuildResult, outPath string) error {
	content := result.Code

	switch {
	case s.mapMode == sourcemap.ModeInline && result.Map != nil:
		comment, err := result.Map.Comment(result.Entry.Type)
		if err != nil {
			return errors.WriteFailed(outPath, err)
		}
		content += "\n\n" + comment + "\n"
	case s.mapMode == sourcemap.ModeExternal && result.Map != nil:
		sidecar := sourcemap.SidecarName(outPath)
		raw, err := result.Map.JSON()
		if err != nil {
			return errors.WriteFailed(sidecar, err)
		}
		if err := os.WriteFile(sidecar, raw, 0o644); err != nil {
			return errors.WriteFailed(sidecar, err)
		}
		result.MapPath = sidecar
		content += "\n\n" + sourcemap.SidecarRef(result.Entry.Type, filepath.Base(sidecar)) + "\n"
	}

	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return errors.WriteFailed(outPath, err)
	}
	return nil
}
