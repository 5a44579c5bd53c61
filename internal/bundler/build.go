package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RobLoach/duo/internal/cache"
	"github.com/RobLoach/duo/internal/engine"
	"github.com/RobLoach/duo/internal/errors"
	"github.com/RobLoach/duo/internal/logfields"
	"github.com/RobLoach/duo/internal/plugin"
	"github.com/RobLoach/duo/internal/sourcemap"
)

// resolved is an entry pinned to a file on disk. Virtual entries carry
// their source inline and leave abs empty.
type resolved struct {
	entry  engine.Entry
	abs    string
	source string
}

func (s *Session) run(ctx context.Context) (*engine.BuildResult, error) {
	result, _, err := s.build(ctx, nil)
	return result, err
}

// build is the shared pipeline behind Run and Write. The prepare hook runs
// between resolution and the transform; Write uses it for the install
// phase so events keep their causal order.
func (s *Session) build(ctx context.Context, prepare func(*resolved) error) (*engine.BuildResult, *resolved, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.emitter.Emit(engine.EventResolving, engine.EntityPayload(s.entry))
	res, err := s.resolve()
	if err != nil {
		return nil, nil, err
	}
	s.emitter.Emit(engine.EventResolve, engine.EntityPayload(res.entry))

	if prepare != nil {
		if err := prepare(res); err != nil {
			return nil, nil, err
		}
	}

	result := &engine.BuildResult{
		Entry:     res.entry,
		StartTime: start,
	}

	hash := cache.HashSource([]byte(res.source))
	key := cache.Key(res.entry.Path, hash, res.entry.Type, s.dev, s.pluginNames(), s.global, s.standalone)
	if hit := s.lookup(ctx, key); hit != nil {
		s.emitter.Emit(engine.EventRunning, engine.EntityPayload(res.entry))
		result.Code = hit.Code
		result.Entry.Type = hit.Type
		result.Cached = true
		if s.mapMode.Enabled() {
			result.Map = s.cachedMap(hit, res)
		}
		s.finish(result)
		s.emitter.Emit(engine.EventRun, engine.EntityPayload(res.entry))
		return result, res, nil
	}

	file := &plugin.File{
		Path:     res.entry.Path,
		Type:     res.entry.Type,
		Contents: res.source,
	}
	for _, p := range s.plugins {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if !p.Metadata().Accepts(file.Type) {
			continue
		}
		s.emitter.Emit(engine.EventUsing, engine.LabelPayload(p.Metadata().Name))
		if err := p.Transform(ctx, file); err != nil {
			return nil, nil, errors.BuildFailed(res.entry.Path, err)
		}
	}

	s.emitter.Emit(engine.EventRunning, engine.EntityPayload(res.entry))
	result.Code = s.compile(file)
	result.Entry.Type = file.Type
	if s.mapMode.Enabled() {
		result.Map = sourcemap.Identity(res.entry.Path, res.source)
	}
	s.finish(result)
	s.storeEntry(ctx, key, res, file.Type, result)
	s.emitter.Emit(engine.EventRun, engine.EntityPayload(result.Entry))
	return result, res, nil
}

// resolve locates the entry on disk and loads its source. Paths are tried
// against the project root first, then the working directory, so both
// `duo lib/index.js` from the root and `duo index.js` from inside lib/
// behave the same.
func (s *Session) resolve() (*resolved, error) {
	if s.entry.Virtual {
		return &resolved{entry: s.entry, source: s.entry.Source}, nil
	}

	abs, err := s.locate(s.entry.Path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.BuildFailed(s.entry.Path, err)
	}

	display := s.entry
	display.Path = s.displayPath(abs)
	return &resolved{entry: display, abs: abs, source: string(raw)}, nil
}

func (s *Session) locate(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", errors.BuildFailed(path, err)
		}
		return path, nil
	}

	rooted := filepath.Join(s.root, path)
	if _, err := os.Stat(rooted); err == nil {
		return rooted, nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		if _, statErr := os.Stat(abs); statErr == nil {
			return abs, nil
		}
	}
	return "", errors.BuildFailed(path, fmt.Errorf("cannot find entry in %s", s.root))
}

// displayPath shortens an absolute entry path to its root-relative form
// for events and cache keys.
func (s *Session) displayPath(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(abs)
	}
	return rel
}

func (s *Session) lookup(ctx context.Context, key string) *cache.Entry {
	if !s.cacheOn || s.store == nil {
		return nil
	}
	entry, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Debug("cache lookup failed", logfields.CacheKey(key), logfields.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	s.log.Debug("cache hit", logfields.CacheKey(key), logfields.Entry(entry.EntryPath))
	return entry
}

// cachedMap revives the stored source map, regenerating it when the entry
// was first built without maps enabled.
func (s *Session) cachedMap(hit *cache.Entry, res *resolved) *sourcemap.Map {
	if len(hit.Map) > 0 {
		var m sourcemap.Map
		if err := json.Unmarshal(hit.Map, &m); err == nil {
			return &m
		}
	}
	return sourcemap.Identity(res.entry.Path, res.source)
}

func (s *Session) storeEntry(ctx context.Context, key string, res *resolved, finalType string, result *engine.BuildResult) {
	if !s.cacheOn || s.store == nil {
		return
	}
	entry := &cache.Entry{
		Key:        key,
		EntryPath:  res.entry.Path,
		SourceHash: cache.HashSource([]byte(res.source)),
		Type:       finalType,
		Code:       result.Code,
	}
	if result.Map != nil {
		if raw, err := result.Map.JSON(); err == nil {
			entry.Map = raw
		}
	}
	if err := s.store.Put(ctx, entry); err != nil {
		s.log.Debug("cache store failed", logfields.CacheKey(key), logfields.Error(err))
	}
}

func (s *Session) finish(result *engine.BuildResult) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
}

// compile wraps JavaScript output for the requested export style. Other
// types pass through untouched.
func (s *Session) compile(file *plugin.File) string {
	if file.Type != "js" {
		return file.Contents
	}
	switch {
	case s.standalone != "":
		return umdWrap(s.standalone, file.Contents)
	case s.global != "":
		return globalWrap(s.global, file.Contents)
	default:
		return file.Contents
	}
}

// umdWrap produces a UMD bundle that registers under AMD, CommonJS, or a
// browser global, in that order.
func umdWrap(name, code string) string {
	var b strings.Builder
	b.WriteString("(function (root, factory) {\n")
	fmt.Fprintf(&b, "  if (typeof define === 'function' && define.amd) { define(%q, [], factory); }\n", name)
	b.WriteString("  else if (typeof module === 'object' && module.exports) { module.exports = factory(); }\n")
	fmt.Fprintf(&b, "  else { root[%q] = factory(); }\n", name)
	b.WriteString("})(this, function () {\n")
	b.WriteString("  var module = { exports: {} };\n")
	b.WriteString("  var exports = module.exports;\n")
	b.WriteString(indent(code))
	b.WriteString("\n  return module.exports;\n})\n")
	return b.String()
}

// globalWrap attaches the module exports to a window property.
func globalWrap(name, code string) string {
	var b strings.Builder
	b.WriteString(";(function (root) {\n")
	b.WriteString("  var module = { exports: {} };\n")
	b.WriteString("  var exports = module.exports;\n")
	b.WriteString(indent(code))
	fmt.Fprintf(&b, "\n  root[%q] = module.exports;\n", name)
	b.WriteString("})(typeof window !== 'undefined' ? window : globalThis);\n")
	return b.String()
}

func indent(code string) string {
	lines := strings.Split(strings.TrimRight(code, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
