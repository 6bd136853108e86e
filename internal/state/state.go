// Package state holds the engine flags shared by the worker loops and the hotkey router.
package state

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"recoilctl/internal/input"
)

// Defaults applied by New and by resets of invalid input.
const (
	DefaultTriggerChar = 'P'
	DefaultClickDelay  = 20 * time.Millisecond
	DefaultClickJitter = 20 * time.Millisecond
	MinClickDelay      = time.Millisecond
)

// ErrInvalidTriggerChar is returned when a trigger character cannot be typed as a
// single key. The trigger character is reset to the default in that case.
var ErrInvalidTriggerChar = errors.New("invalid trigger character")

// State is safe for concurrent use. Readers see each field atomically; there is no
// cross-field snapshot guarantee beyond Snapshot.
type State struct {
	recoilArmed         atomic.Bool
	autoClickEnabled    atomic.Bool
	triggerKeyAutoPress atomic.Bool
	linkEnabled         atomic.Bool
	triggerChar         atomic.Int32
	clickDelay          atomic.Int64
	clickJitter         atomic.Int64
}

// New returns the startup state: recoil armed, trigger key auto-press on, linking and
// auto-click off.
func New() *State {
	s := &State{}
	s.recoilArmed.Store(true)
	s.triggerKeyAutoPress.Store(true)
	s.triggerChar.Store(DefaultTriggerChar)
	s.clickDelay.Store(int64(DefaultClickDelay))
	s.clickJitter.Store(int64(DefaultClickJitter))
	return s
}

// Flag getters; safe for concurrent use.
func (s *State) RecoilArmed() bool         { return s.recoilArmed.Load() }
func (s *State) AutoClickEnabled() bool    { return s.autoClickEnabled.Load() }
func (s *State) TriggerKeyAutoPress() bool { return s.triggerKeyAutoPress.Load() }
func (s *State) LinkEnabled() bool         { return s.linkEnabled.Load() }

// Set* store v and return the previous value.
func (s *State) SetRecoilArmed(v bool) bool         { return s.recoilArmed.Swap(v) }
func (s *State) SetAutoClickEnabled(v bool) bool    { return s.autoClickEnabled.Swap(v) }
func (s *State) SetTriggerKeyAutoPress(v bool) bool { return s.triggerKeyAutoPress.Swap(v) }
func (s *State) SetLinkEnabled(v bool) bool         { return s.linkEnabled.Swap(v) }

// Toggle* flip the flag and return the new value.
func (s *State) ToggleRecoilArmed() bool         { return toggle(&s.recoilArmed) }
func (s *State) ToggleAutoClickEnabled() bool    { return toggle(&s.autoClickEnabled) }
func (s *State) ToggleTriggerKeyAutoPress() bool { return toggle(&s.triggerKeyAutoPress) }
func (s *State) ToggleLinkEnabled() bool         { return toggle(&s.linkEnabled) }

func toggle(b *atomic.Bool) bool {
	for {
		old := b.Load()
		if b.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// TriggerChar is the upper-case character held down while recoil is active.
func (s *State) TriggerChar() rune {
	return rune(s.triggerChar.Load())
}

// TriggerKey is the key that types TriggerChar.
func (s *State) TriggerKey() input.Key {
	k, ok := input.KeyForChar(s.TriggerChar())
	if !ok {
		k, _ = input.KeyForChar(DefaultTriggerChar)
	}
	return k
}

// SetTriggerChar accepts a single printable character. An empty string restores the
// default; anything else that is not a single typeable character restores the default
// and returns ErrInvalidTriggerChar.
func (s *State) SetTriggerChar(text string) (rune, error) {
	if text == "" {
		s.triggerChar.Store(DefaultTriggerChar)
		return DefaultTriggerChar, nil
	}
	r, size := utf8.DecodeRuneInString(text)
	k, ok := input.KeyForChar(r)
	if size != len(text) || !ok {
		s.triggerChar.Store(DefaultTriggerChar)
		return DefaultTriggerChar, fmt.Errorf("%w: %q", ErrInvalidTriggerChar, text)
	}
	c := []rune(string(k))[0]
	s.triggerChar.Store(c)
	return c, nil
}

// ClickDelay and ClickJitter are the current auto-click timing.
func (s *State) ClickDelay() time.Duration  { return time.Duration(s.clickDelay.Load()) }
func (s *State) ClickJitter() time.Duration { return time.Duration(s.clickJitter.Load()) }

// SetClickTiming stores the auto-click base delay and jitter. The delay is clamped to
// MinClickDelay and the jitter to zero.
func (s *State) SetClickTiming(delay, jitter time.Duration) {
	s.clickDelay.Store(int64(max(delay, MinClickDelay)))
	s.clickJitter.Store(int64(max(jitter, 0)))
}

// Snapshot is a point-in-time copy of State.
type Snapshot struct {
	RecoilArmed         bool
	AutoClickEnabled    bool
	TriggerKeyAutoPress bool
	LinkEnabled         bool
	TriggerChar         rune
	ClickDelay          time.Duration
	ClickJitter         time.Duration
}

// Snapshot copies every field. Fields are read one at a time, so a concurrent
// writer may be seen half applied.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		RecoilArmed:         s.RecoilArmed(),
		AutoClickEnabled:    s.AutoClickEnabled(),
		TriggerKeyAutoPress: s.TriggerKeyAutoPress(),
		LinkEnabled:         s.LinkEnabled(),
		TriggerChar:         s.TriggerChar(),
		ClickDelay:          s.ClickDelay(),
		ClickJitter:         s.ClickJitter(),
	}
}
