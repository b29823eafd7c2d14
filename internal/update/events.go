package update

import (
	"fmt"
	"sync"
	"time"
)

// EventKind identifies a step of an update pass.
type EventKind int

const (
	// EventPassStarted is emitted before the manifest is fetched.
	EventPassStarted EventKind = iota
	// EventManifestFailed means the manifest could not be obtained; the pass ends.
	EventManifestFailed
	// EventUpToDate means an add-on already matches the manifest.
	EventUpToDate
	// EventAddOnStarted is emitted before an add-on is downloaded.
	EventAddOnStarted
	// EventAddOnInstalled means an add-on was installed or updated.
	EventAddOnInstalled
	// EventAddOnFailed means downloading or installing an add-on failed.
	EventAddOnFailed
	// EventPassFinished carries the summary of a completed pass.
	EventPassFinished
)

var eventKindNames = map[EventKind]string{
	EventPassStarted:    "pass-started",
	EventManifestFailed: "manifest-failed",
	EventUpToDate:       "up-to-date",
	EventAddOnStarted:   "addon-started",
	EventAddOnInstalled: "addon-installed",
	EventAddOnFailed:    "addon-failed",
	EventPassFinished:   "pass-finished",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one progress record of an update pass.
type Event struct {
	Kind    EventKind
	Time    time.Time
	AddOn   string // empty for pass-level events
	Version string // remote version
	Verb    string // "install" or "update"
	Err     error

	// Failed is the failure count, set on EventPassFinished.
	Failed int
}

// String renders the event as a line for the install log.
func (e Event) String() string {
	id := e.AddOn + "-" + e.Version
	switch e.Kind {
	case EventPassStarted:
		return "Starting add-on update..."
	case EventManifestFailed:
		return fmt.Sprintf("Unable to get the add-on manifest: %v", e.Err)
	case EventUpToDate:
		return fmt.Sprintf("%s is up to date (%s)", e.AddOn, e.Version)
	case EventAddOnStarted:
		return fmt.Sprintf("Starting %s of %s", e.Verb, id)
	case EventAddOnInstalled:
		return fmt.Sprintf("%s %s successful", id, e.Verb)
	case EventAddOnFailed:
		return fmt.Sprintf("Failed to %s %s: %v", e.Verb, id, e.Err)
	case EventPassFinished:
		if e.Failed == 0 {
			return "Add-on update finished successfully"
		}
		return fmt.Sprintf("Add-on update finished with %d failure(s)", e.Failed)
	default:
		return e.Kind.String()
	}
}

// EventLog is an append-only record of update events that presentation
// code can snapshot or follow. It is safe for concurrent use.
type EventLog struct {
	mu          sync.Mutex
	events      []Event
	subscribers map[int]func(Event)
	nextID      int
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{subscribers: make(map[int]func(Event))}
}

// Append records e and delivers it to every subscriber. Subscribers run on
// the appending goroutine and must not call back into the log.
func (l *EventLog) Append(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	subs := make([]func(Event), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Events returns a copy of every recorded event in order.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Clear drops every recorded event, typically before a new pass.
func (l *EventLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// Subscribe registers fn for future events and returns a function that
// removes it.
func (l *EventLog) Subscribe(fn func(Event)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.subscribers[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}
