package console

import (
	"github.com/RobLoach/duo/internal/engine"
)

// Adapter turns engine event payloads into reporter lines. It owns the one
// piece of display normalization in the program: entities render their
// slug, labels render as-is, and the synthetic stdin entry renders as
// "from stdin".
type Adapter struct {
	rep        *Reporter
	stdinLabel string
}

// NewAdapter creates an adapter. declaredType is the type flag value; it
// determines which synthetic entry name identifies piped input, defaulting
// to js.
func NewAdapter(rep *Reporter, declaredType string) *Adapter {
	return &Adapter{
		rep:        rep,
		stdinLabel: stdinLabel(declaredType),
	}
}

// WithType returns a copy matching a different effective stdin type. The
// stdin coordinator uses this after content sniffing resolves the type.
func (a *Adapter) WithType(typ string) *Adapter {
	return &Adapter{
		rep:        a.rep,
		stdinLabel: stdinLabel(typ),
	}
}

// Listener returns an engine listener that renders payloads at the given
// level.
func (a *Adapter) Listener(level Level) engine.Listener {
	return func(p engine.Payload) {
		a.rep.Log(level, a.Display(p))
	}
}

// Display normalizes a payload to its display string.
func (a *Adapter) Display(p engine.Payload) string {
	s := p.Label()
	if entity, ok := p.Entity(); ok {
		s = entity.Slug()
	}
	if s == a.stdinLabel {
		return "from stdin"
	}
	return s
}

func stdinLabel(typ string) string {
	if typ == "" {
		typ = "js"
	}
	return "source." + typ
}
