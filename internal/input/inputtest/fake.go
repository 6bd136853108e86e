// Package inputtest provides a recording input.Backend for tests.
package inputtest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"recoilctl/internal/input"
)

// Op names a recorded injection.
type Op string

const (
	OpPressKey      Op = "press_key"
	OpReleaseKey    Op = "release_key"
	OpPressButton   Op = "press_button"
	OpReleaseButton Op = "release_button"
	OpMove          Op = "move"
)

// Call is one recorded injection.
type Call struct {
	Op     Op
	Key    input.Key
	Button input.Button
	DX, DY int
	At     time.Time
}

// String formats the call as op(arg), e.g. "move(0,3)".
func (c Call) String() string {
	switch c.Op {
	case OpMove:
		return fmt.Sprintf("move(%d,%d)", c.DX, c.DY)
	case OpPressButton, OpReleaseButton:
		return fmt.Sprintf("%s(%s)", c.Op, c.Button)
	}
	return fmt.Sprintf("%s(%s)", c.Op, c.Key)
}

// ErrInjected is returned by a Backend configured to fail.
var ErrInjected = errors.New("inputtest: injected failure")

// Backend records every injection and reports button state set by the test.
type Backend struct {
	mu       sync.Mutex
	physical map[input.Button]bool
	calls    []Call
	heldKeys map[input.Key]bool
	heldBtns map[input.Button]bool
	fail     bool
	failOps  map[Op]bool
	closed   bool
	polls    int
}

// New returns a Backend with no buttons held.
func New() *Backend {
	return &Backend{
		physical: make(map[input.Button]bool),
		heldKeys: make(map[input.Key]bool),
		heldBtns: make(map[input.Button]bool),
		failOps:  make(map[Op]bool),
	}
}

// Hold sets the physical state of the given buttons.
func (b *Backend) Hold(pressed bool, buttons ...input.Button) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, btn := range buttons {
		b.physical[btn] = pressed
	}
}

// FailInjection makes every injection return ErrInjected while set.
func (b *Backend) FailInjection(fail bool) {
	b.mu.Lock()
	b.fail = fail
	b.mu.Unlock()
}

// FailOp makes injections of a single kind return ErrInjected while set.
func (b *Backend) FailOp(op Op, fail bool) {
	b.mu.Lock()
	b.failOps[op] = fail
	b.mu.Unlock()
}

// ButtonDown reports the state set by Hold and counts the poll.
func (b *Backend) ButtonDown(btn input.Button) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.polls++
	return b.physical[btn]
}

// PressKey records the press and marks k held.
func (b *Backend) PressKey(k input.Key) error {
	return b.record(Call{Op: OpPressKey, Key: k}, func() { b.heldKeys[k] = true })
}

// ReleaseKey records the release and clears k.
func (b *Backend) ReleaseKey(k input.Key) error {
	return b.record(Call{Op: OpReleaseKey, Key: k}, func() { delete(b.heldKeys, k) })
}

// PressButton records the press and marks btn held.
func (b *Backend) PressButton(btn input.Button) error {
	return b.record(Call{Op: OpPressButton, Button: btn}, func() { b.heldBtns[btn] = true })
}

// ReleaseButton records the release and clears btn.
func (b *Backend) ReleaseButton(btn input.Button) error {
	return b.record(Call{Op: OpReleaseButton, Button: btn}, func() { delete(b.heldBtns, btn) })
}

// Move records a relative move.
func (b *Backend) Move(dx, dy int) error {
	return b.record(Call{Op: OpMove, DX: dx, DY: dy}, func() {})
}

// Close marks the backend closed.
func (b *Backend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *Backend) record(c Call, apply func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail || b.failOps[c.Op] {
		return ErrInjected
	}
	c.At = time.Now()
	b.calls = append(b.calls, c)
	apply()
	return nil
}

// Calls returns a copy of the recorded injections.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsOf returns the recorded injections with the given op.
func (b *Backend) CallsOf(op Op) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps held state.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

// HeldKeys returns keys pressed and not yet released.
func (b *Backend) HeldKeys() []input.Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []input.Key
	for k := range b.heldKeys {
		out = append(out, k)
	}
	return out
}

// KeyHeld reports whether k is currently pressed by injection.
func (b *Backend) KeyHeld(k input.Key) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.heldKeys[k]
}

// HeldButtons returns buttons pressed by injection and not yet released.
func (b *Backend) HeldButtons() []input.Button {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []input.Button
	for btn := range b.heldBtns {
		out = append(out, btn)
	}
	return out
}

// Polls returns how many times ButtonDown was called.
func (b *Backend) Polls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.polls
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

var _ input.Backend = (*Backend)(nil)
