package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"recoilctl/internal/input"
	"recoilctl/internal/notify"
	"recoilctl/internal/state"
)

// ErrInjection wraps backend failures surfaced to the host.
var ErrInjection = errors.New("input injection failed")

// FailureThreshold is the number of consecutive injection failures after which a
// warning is raised. It is raised once per streak.
const FailureThreshold = 25

// Link mirrors injected events of one key onto another while linking is enabled.
type Link struct {
	From, To input.Key
}

// DefaultLink mirrors F onto I.
var DefaultLink = Link{From: "F", To: "I"}

// injector wraps a backend for a single loop. It remembers what it holds so the
// loop can release everything on exit, mirrors linked keys and counts failures.
// It is not safe for concurrent use.
type injector struct {
	backend input.Backend
	state   *state.State
	link    Link
	sink    notify.Sink
	logger  *zap.Logger
	name    string

	keys     map[input.Key]bool
	buttons  map[input.Button]bool
	mirrored map[input.Key]bool // link targets pressed on behalf of a source key

	failures map[opKind]int
}

// opKind groups backend calls for failure streaks. A key that keeps failing is still
// reported while moves succeed.
type opKind int

const (
	opKey opKind = iota
	opButton
	opMove
)

func newInjector(name string, b input.Backend, st *state.State, link Link, sink notify.Sink, logger *zap.Logger) *injector {
	return &injector{
		backend:  b,
		state:    st,
		link:     link,
		sink:     sink,
		logger:   logger,
		name:     name,
		keys:     make(map[input.Key]bool),
		buttons:  make(map[input.Button]bool),
		mirrored: make(map[input.Key]bool),
		failures: make(map[opKind]int),
	}
}

func (i *injector) pressKey(k input.Key) error {
	if err := i.check(opKey, "press "+string(k), i.backend.PressKey(k)); err != nil {
		return err
	}
	i.keys[k] = true
	if k == i.link.From && i.link.To != "" && i.state.LinkEnabled() && !i.mirrored[i.link.To] {
		if i.check(opKey, "press "+string(i.link.To), i.backend.PressKey(i.link.To)) == nil {
			i.mirrored[i.link.To] = true
		}
	}
	return nil
}

func (i *injector) releaseKey(k input.Key) error {
	err := i.check(opKey, "release "+string(k), i.backend.ReleaseKey(k))
	if err == nil {
		delete(i.keys, k)
	}
	// The mirror is released even if linking was switched off while held.
	if k == i.link.From && i.mirrored[i.link.To] {
		if i.check(opKey, "release "+string(i.link.To), i.backend.ReleaseKey(i.link.To)) == nil {
			delete(i.mirrored, i.link.To)
		}
	}
	return err
}

// click presses and releases b.
func (i *injector) click(b input.Button) error {
	if err := i.check(opButton, "press "+b.String(), i.backend.PressButton(b)); err != nil {
		return err
	}
	i.buttons[b] = true
	if err := i.check(opButton, "release "+b.String(), i.backend.ReleaseButton(b)); err != nil {
		return err
	}
	delete(i.buttons, b)
	return nil
}

func (i *injector) move(dx, dy int) error {
	return i.check(opMove, "move", i.backend.Move(dx, dy))
}

// releaseAll releases every key and button still held by this injector and returns
// how many are still held because a release failed.
func (i *injector) releaseAll() int {
	for k := range i.keys {
		i.releaseKey(k)
	}
	for k := range i.mirrored {
		if i.check(opKey, "release "+string(k), i.backend.ReleaseKey(k)) == nil {
			delete(i.mirrored, k)
		}
	}
	for b := range i.buttons {
		if i.check(opButton, "release "+b.String(), i.backend.ReleaseButton(b)) == nil {
			delete(i.buttons, b)
		}
	}
	return i.held()
}

func (i *injector) holding(k input.Key) bool {
	return i.keys[k]
}

// held counts keys and buttons this injector pressed and has not released.
func (i *injector) held() int {
	return len(i.keys) + len(i.mirrored) + len(i.buttons)
}

// check records the outcome of one backend call and wraps failures in ErrInjection.
// Streaks are counted per kind of call.
func (i *injector) check(kind opKind, op string, err error) error {
	if err == nil {
		i.failures[kind] = 0
		return nil
	}
	i.failures[kind]++
	n := i.failures[kind]
	werr := fmt.Errorf("%w: %s: %v", ErrInjection, op, err)
	switch {
	case n == 1:
		i.logger.Warn("injection failed", zap.String("op", op), zap.Error(err))
		notify.Send(i.sink, notify.Event{Kind: notify.KindError, Action: i.name, Err: werr})
	case n == FailureThreshold:
		i.logger.Error("injection keeps failing", zap.String("op", op), zap.Int("consecutive", n), zap.Error(err))
		notify.Send(i.sink, notify.Event{
			Kind:   notify.KindWarning,
			Action: i.name,
			Err:    fmt.Errorf("%w: %d consecutive failures, last: %s: %v", ErrInjection, n, op, err),
		})
	default:
		i.logger.Debug("injection failed", zap.String("op", op), zap.Int("consecutive", n), zap.Error(err))
	}
	return werr
}
