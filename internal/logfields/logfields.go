package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyEntry      = "entry"
	KeyEntries    = "entries"
	KeyMode       = "mode"
	KeyType       = "type"
	KeyPlugin     = "plugin"
	KeyRoot       = "root"
	KeyOutput     = "output"
	KeyPath       = "path"
	KeyCacheKey   = "cache_key"
	KeySubject    = "subject"
	KeyAddr       = "addr"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Entry(e string) slog.Attr         { return slog.String(KeyEntry, e) }
func Entries(n int) slog.Attr          { return slog.Int(KeyEntries, n) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func Type(t string) slog.Attr          { return slog.String(KeyType, t) }
func Plugin(name string) slog.Attr     { return slog.String(KeyPlugin, name) }
func Root(dir string) slog.Attr        { return slog.String(KeyRoot, dir) }
func Output(dir string) slog.Attr      { return slog.String(KeyOutput, dir) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func CacheKey(k string) slog.Attr      { return slog.String(KeyCacheKey, k) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Addr(a string) slog.Attr          { return slog.String(KeyAddr, a) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
