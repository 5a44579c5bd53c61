package engine

import (
	"path/filepath"
	"strings"
)

// Entry identifies what a session builds: a file somewhere under the
// project root, or a virtual source captured from a stream.
type Entry struct {
	// Path is the root-relative file path, or the synthesized name of a
	// virtual entry.
	Path string

	// Type is the content type driving plugin selection and artifact
	// naming.
	Type string

	// Source holds the captured content of a virtual entry.
	Source string

	// Virtual marks entries with no backing file.
	Virtual bool
}

// FileEntry creates an entry for a file path. The type comes from the
// extension, defaulting to js.
func FileEntry(path string) Entry {
	typ := strings.TrimPrefix(filepath.Ext(path), ".")
	if typ == "" {
		typ = "js"
	}
	return Entry{Path: path, Type: typ}
}

// StdinEntry creates the virtual entry for piped source. The conventional
// name is "source." plus the effective type, defaulting to js.
func StdinEntry(typ, source string) Entry {
	if typ == "" {
		typ = "js"
	}
	return Entry{
		Path:    "source." + typ,
		Type:    typ,
		Source:  source,
		Virtual: true,
	}
}

// Slug returns the display identity used in progress output.
func (e Entry) Slug() string {
	return e.Path
}
