// Package sourcemap models source-map v3 documents and the three delivery
// modes the CLI derives from its flags. It is pure: callers decide where
// rendered maps go.
package sourcemap

// Mode selects how a generated source map accompanies its artifact.
type Mode int

const (
	// ModeNone disables map generation entirely.
	ModeNone Mode = iota
	// ModeInline embeds the map as a base64 data URI comment in the artifact.
	ModeInline
	// ModeExternal writes the map as a sidecar file next to the artifact.
	ModeExternal
)

// ModeFor derives the delivery mode from the two controlling flags.
// External wins over development; with neither set, maps are off.
func ModeFor(development, external bool) Mode {
	switch {
	case external:
		return ModeExternal
	case development:
		return ModeInline
	default:
		return ModeNone
	}
}

// ForStream downgrades External to Inline. A sidecar file cannot accompany
// code written to a stream.
func (m Mode) ForStream() Mode {
	if m == ModeExternal {
		return ModeInline
	}
	return m
}

// Enabled reports whether any map should be generated.
func (m Mode) Enabled() bool {
	return m != ModeNone
}

func (m Mode) String() string {
	switch m {
	case ModeInline:
		return "inline"
	case ModeExternal:
		return "external"
	default:
		return "none"
	}
}
