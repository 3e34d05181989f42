package sdk

import (
	"strings"
	"sync"
)

// Attr is one named argument of an event.
type Attr struct {
	Key   string
	Value string
}

// Event is a named state transition with its argument tuple.
type Event struct {
	Name  string
	Attrs []Attr
}

// Get returns the value for key or "" when the event does not carry it.
func (e Event) Get(key string) string {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// String renders the terse pipe form watchers parse, e.g. DonationReceived|c:1|by:hive:alice|am:30.000
func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	for _, a := range e.Attrs {
		b.WriteByte('|')
		b.WriteString(a.Key)
		b.WriteByte(':')
		b.WriteString(a.Value)
	}
	return b.String()
}

// EventSink receives events once per committed state transition.
type EventSink interface {
	Emit(Event)
}

// EventRecorder keeps every event in memory, handy for tests and replays.
type EventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *EventRecorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *EventRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named filters the recorded events by name.
func (r *EventRecorder) Named(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// MultiSink fans out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// DiscardEvents drops everything.
type DiscardEvents struct{}

func (DiscardEvents) Emit(Event) {}

// -----------------------------------------------------------------------------
// Host
// -----------------------------------------------------------------------------

// Host bundles the collaborators the core talks to.
type Host struct {
	Ledger Ledger
	Auth   AuthorizationOracle
	Clock  Clock
	Events EventSink
}
