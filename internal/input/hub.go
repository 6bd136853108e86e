package input

import (
	"sync"
	"sync/atomic"
	"time"
)

const eventBuffer = 256

// hub fans events from a single platform hook out to every subscribed capture.
// publish never blocks; a subscriber that falls behind loses events.
type hub struct {
	mu      sync.RWMutex
	subs    map[chan Event]struct{}
	dropped atomic.Uint64
}

func newHub() *hub {
	return &hub{subs: make(map[chan Event]struct{})}
}

func (h *hub) subscribe(ch chan Event) {
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) unsubscribe(ch chan Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return false
	}
	delete(h.subs, ch)
	return true
}

func (h *hub) publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// hubCapture is a Capture backed by a hub subscription.
type hubCapture struct {
	hub     *hub
	events  chan Event
	mu      sync.Mutex
	started bool
	stopped bool
}

func newHubCapture(h *hub) *hubCapture {
	return &hubCapture{hub: h, events: make(chan Event, eventBuffer)}
}

func (c *hubCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return nil
	}
	c.started = true
	c.hub.subscribe(c.events)
	return nil
}

// Stop unsubscribes and closes the event channel. It is safe to call more than once.
func (c *hubCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil
	}
	c.stopped = true
	c.hub.unsubscribe(c.events)
	close(c.events)
	return nil
}

func (c *hubCapture) Events() <-chan Event {
	return c.events
}

// buttonTracker records hardware-origin button state as reported by an event hook.
type buttonTracker struct {
	down [buttonCount]atomic.Bool
}

func (t *buttonTracker) set(b Button, pressed bool) {
	if b > ButtonNone && b < buttonCount {
		t.down[b].Store(pressed)
	}
}

func (t *buttonTracker) get(b Button) bool {
	if b <= ButtonNone || b >= buttonCount {
		return false
	}
	return t.down[b].Load()
}

// echoFilter recognises events caused by our own injections on hooks that cannot flag
// them. Every injection registers one expected echo that expires after echoWindow.
type echoFilter struct {
	mu      sync.Mutex
	pending map[echoKey][]time.Time
	now     func() time.Time
}

type echoKey struct {
	key     Key
	pressed bool
}

const echoWindow = 50 * time.Millisecond

func newEchoFilter() *echoFilter {
	return &echoFilter{pending: make(map[echoKey][]time.Time), now: time.Now}
}

func (f *echoFilter) expect(k Key, pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ek := echoKey{k, pressed}
	f.pending[ek] = append(f.pending[ek], f.now())
}

// consume reports whether an event matches an outstanding injection.
func (f *echoFilter) consume(k Key, pressed bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ek := echoKey{k, pressed}
	q := f.pending[ek]
	now := f.now()
	for len(q) > 0 && now.Sub(q[0]) > echoWindow {
		q = q[1:]
	}
	if len(q) == 0 {
		delete(f.pending, ek)
		return false
	}
	q = q[1:]
	if len(q) == 0 {
		delete(f.pending, ek)
	} else {
		f.pending[ek] = q
	}
	return true
}
