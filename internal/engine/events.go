package engine

import "sync"

// EventName identifies a progress event published during a session run.
type EventName string

// Event names in causal order within a run.
const (
	EventResolving  EventName = "resolving"
	EventResolve    EventName = "resolve"
	EventInstalling EventName = "installing"
	EventInstall    EventName = "install"
	EventUsing      EventName = "using"
	EventRunning    EventName = "running"
	EventRun        EventName = "run"
	EventWrite      EventName = "write"
)

// NamedEntity is anything that can identify itself in progress output.
type NamedEntity interface {
	Slug() string
}

// Payload is the argument delivered with an event: either an entity that
// knows its display identity, or a plain label. Exactly one side is set.
type Payload struct {
	entity NamedEntity
	label  string
}

// EntityPayload wraps a named entity.
func EntityPayload(e NamedEntity) Payload {
	return Payload{entity: e}
}

// LabelPayload wraps a plain string label.
func LabelPayload(label string) Payload {
	return Payload{label: label}
}

// Entity returns the entity side of the union.
func (p Payload) Entity() (NamedEntity, bool) {
	return p.entity, p.entity != nil
}

// Label returns the label side of the union.
func (p Payload) Label() string {
	return p.label
}

// Listener consumes one event payload. Listeners render progress; they
// cannot fail a build.
type Listener func(Payload)

// Emitter is a synchronous publisher keyed by event name. Sessions embed
// one; delivery order follows subscription order.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[EventName][]Listener
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: map[EventName][]Listener{}}
}

// On registers a listener for a given event name.
func (e *Emitter) On(event EventName, l Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	e.listeners[event] = append(e.listeners[event], l)
	e.mu.Unlock()
}

// Emit delivers an event to all listeners synchronously.
func (e *Emitter) Emit(event EventName, p Payload) {
	e.mu.RLock()
	ls := append([]Listener(nil), e.listeners[event]...)
	e.mu.RUnlock()
	for _, l := range ls {
		l(p)
	}
}
