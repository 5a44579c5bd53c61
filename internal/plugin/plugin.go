// Package plugin provides the transform plugin system. Plugins rewrite an
// in-flight file's contents and may retype it; the engine runs a session's
// plugins in attachment order.
package plugin

import (
	"context"
	"fmt"
)

// Plugin is one transform step in a build pipeline.
type Plugin interface {
	// Metadata returns the plugin's identity and the types it accepts.
	Metadata() Metadata

	// Transform rewrites the file in place. Returning an error fails the
	// build; syntax problems should surface as *errors.SyntaxError so the
	// CLI can render the source location.
	Transform(ctx context.Context, file *File) error
}

// Metadata describes a plugin's identity and capabilities.
type Metadata struct {
	// Name is the unique plugin identifier used on the command line.
	Name string

	// Description provides a human-readable summary of the transform.
	Description string

	// Types lists the content types the plugin transforms. Empty means
	// the plugin sees every file.
	Types []string
}

// String returns a human-readable representation of the plugin metadata.
func (m Metadata) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Description)
}

// Validate checks if the plugin metadata is valid.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	return nil
}

// Accepts reports whether the plugin wants files of the given type.
func (m Metadata) Accepts(typ string) bool {
	if len(m.Types) == 0 {
		return true
	}
	for _, t := range m.Types {
		if t == typ {
			return true
		}
	}
	return false
}

// File is the unit a transform pipeline operates on. Plugins mutate
// Contents and may change Type when they compile one language to another.
type File struct {
	// Path identifies the file for diagnostics, root-relative.
	Path string

	// Type is the current content type.
	Type string

	// Contents is the current source text.
	Contents string
}
