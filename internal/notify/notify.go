// Package notify carries engine events to the host (tray, logs, tones, settings store).
package notify

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind classifies an Event.
type Kind int

const (
	KindStateChanged Kind = iota + 1
	KindProfileSwitched
	KindProfilesReloaded
	KindBindingChanged
	KindWarning
	KindError
)

// String returns the snake_case name used in logs.
func (k Kind) String() string {
	switch k {
	case KindStateChanged:
		return "state_changed"
	case KindProfileSwitched:
		return "profile_switched"
	case KindProfilesReloaded:
		return "profiles_reloaded"
	case KindBindingChanged:
		return "binding_changed"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event describes something the host may want to show or persist.
type Event struct {
	Kind    Kind
	Action  string // logical action or subsystem that produced the event
	Old     string
	New     string
	Profile string
	Err     error
	Time    time.Time
}

// String is a one-line summary for logs and the tray tooltip.
func (e Event) String() string {
	switch e.Kind {
	case KindStateChanged, KindBindingChanged:
		return fmt.Sprintf("%s %s: %s -> %s", e.Kind, e.Action, e.Old, e.New)
	case KindProfileSwitched:
		return fmt.Sprintf("%s: %s", e.Kind, e.Profile)
	case KindWarning, KindError:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Action, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Action)
}

// Sink receives events. Notify must not block the caller for long.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Notify calls f(e).
func (f SinkFunc) Notify(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi delivers each event to every sink in order.
type Multi []Sink

func (m Multi) Notify(e Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(e)
		}
	}
}

// Send stamps e and hands it to s. A nil sink is allowed.
func Send(s Sink, e Event) {
	if s == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	s.Notify(e)
}

// Log writes every event to a zap logger.
type Log struct {
	Logger *zap.Logger
}

// Notify logs errors at error level, warnings at warn level and everything else at info.
func (l Log) Notify(e Event) {
	fields := []zap.Field{zap.Stringer("kind", e.Kind)}
	if e.Action != "" {
		fields = append(fields, zap.String("action", e.Action))
	}
	if e.Old != "" || e.New != "" {
		fields = append(fields, zap.String("old", e.Old), zap.String("new", e.New))
	}
	if e.Profile != "" {
		fields = append(fields, zap.String("profile", e.Profile))
	}
	switch e.Kind {
	case KindError:
		l.Logger.Error("engine event", append(fields, zap.Error(e.Err))...)
	case KindWarning:
		l.Logger.Warn("engine event", append(fields, zap.Error(e.Err))...)
	default:
		l.Logger.Info("engine event", fields...)
	}
}

// Queue decouples slow consumers (tray, disk) from the engine. Events beyond the
// buffer are counted and dropped.
type Queue struct {
	ch      chan Event
	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewQueue returns a Queue buffering up to size events.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Event, size)}
}

// Notify enqueues e without blocking. It is a no-op after Close.
func (q *Queue) Notify(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	select {
	case q.ch <- e:
	default:
		q.dropped++
	}
}

// Events returns the receive side; it is closed by Close.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

// Dropped returns how many events were discarded because the buffer was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Close closes the Events channel. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Recorder keeps every event; used by tests and diagnostics.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify appends e.
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of every recorded event in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfKind returns the recorded events of kind k.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
