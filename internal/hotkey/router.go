package hotkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"recoilctl/internal/input"
	"recoilctl/internal/notify"
	"recoilctl/internal/profile"
	"recoilctl/internal/state"
)

// Router resolves key events to actions and applies them to the shared state and the
// profile store. Every change is reported to the sink.
type Router struct {
	mu       sync.Mutex
	bindings map[Action]Binding
	pressed  map[input.Key]bool

	state    *state.State
	profiles *profile.Store
	sink     notify.Sink
	logger   *zap.Logger

	tapper   input.Backend
	linkFrom input.Key
	linkTo   input.Key
}

// Option configures a Router.
type Option func(*Router)

// WithLinkTap makes a physical press of from tap to through b while linking is on.
func WithLinkTap(b input.Backend, from, to input.Key) Option {
	return func(r *Router) {
		r.tapper, r.linkFrom, r.linkTo = b, from, to
	}
}

// NewRouter returns a Router with the default bindings.
func NewRouter(st *state.State, profiles *profile.Store, sink notify.Sink, logger *zap.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		bindings: make(map[Action]Binding, len(Actions)),
		pressed:  make(map[input.Key]bool),
		state:    st,
		profiles: profiles,
		sink:     sink,
		logger:   logger.Named("hotkey"),
	}
	for _, a := range Actions {
		r.bindings[a] = Default(a)
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Binding returns the current binding of a.
func (r *Router) Binding(a Action) Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindings[a]
}

// Bindings returns a copy of the binding table.
func (r *Router) Bindings() map[Action]Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Action]Binding, len(r.bindings))
	for a, b := range r.bindings {
		out[a] = b
	}
	return out
}

type rebound struct {
	action   Action
	old, new Binding
}

// Rebind assigns text to a. Empty or unparseable text restores the default and
// returns ErrInvalidBinding. A chord already bound to another action is refused with
// ErrBindingConflict and the old binding is kept.
func (r *Router) Rebind(a Action, text string) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	b, perr := ParseBinding(text)

	r.mu.Lock()
	var changes []rebound
	if perr != nil {
		changes = r.resetLocked(a, nil)
	} else {
		for o, ob := range r.bindings {
			if o != a && ob.Equal(b) {
				r.mu.Unlock()
				err := fmt.Errorf("%w: %s is bound to %s", ErrBindingConflict, b, o)
				notify.Send(r.sink, notify.Event{Kind: notify.KindError, Action: string(a), Err: err})
				return err
			}
		}
		if old := r.bindings[a]; !old.Equal(b) {
			r.bindings[a] = b
			changes = append(changes, rebound{a, old, b})
		}
	}
	r.mu.Unlock()

	r.announce(changes)
	if perr != nil {
		notify.Send(r.sink, notify.Event{Kind: notify.KindError, Action: string(a), Err: perr})
		return perr
	}
	return nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// resetLocked restores a's default and resets any action that held that chord.
func (r *Router) resetLocked(a Action, changes []rebound) []rebound {
	def := Default(a)
	if old := r.bindings[a]; !old.Equal(def) {
		r.bindings[a] = def
		changes = append(changes, rebound{a, old, def})
	}
	for _, o := range Actions {
		if o != a && r.bindings[o].Equal(def) {
			changes = r.resetLocked(o, changes)
		}
	}
	return changes
}

// SetBindings replaces the whole table, starting from the defaults. Invalid entries
// keep their default; conflicting entries fall back to the default one at a time.
// The returned error joins every problem found.
func (r *Router) SetBindings(texts map[Action]string) error {
	next := make(map[Action]Binding, len(Actions))
	var errs []error
	for _, a := range Actions {
		next[a] = Default(a)
	}
	for a, text := range texts {
		if !a.Valid() {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownAction, a))
			continue
		}
		if isBlank(text) {
			continue
		}
		b, err := ParseBinding(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a, err))
			continue
		}
		next[a] = b
	}
	for conflict := true; conflict; {
		conflict = false
		for i, a := range Actions {
			for _, o := range Actions[i+1:] {
				if !next[a].Equal(next[o]) {
					continue
				}
				loser := o
				if next[o].Equal(Default(o)) {
					loser = a
				}
				errs = append(errs, fmt.Errorf("%s: %w: %s is bound to %s", loser, ErrBindingConflict, next[loser], otherOf(loser, a, o)))
				next[loser] = Default(loser)
				conflict = true
			}
		}
	}

	r.mu.Lock()
	var changes []rebound
	for _, a := range Actions {
		if old := r.bindings[a]; !old.Equal(next[a]) {
			changes = append(changes, rebound{a, old, next[a]})
		}
	}
	r.bindings = next
	r.mu.Unlock()

	r.announce(changes)
	return errors.Join(errs...)
}

func otherOf(x, a, b Action) Action {
	if x == a {
		return b
	}
	return a
}

func (r *Router) announce(changes []rebound) {
	for _, c := range changes {
		r.logger.Info("hotkey bound", zap.String("action", string(c.action)), zap.Stringer("binding", c.new))
		notify.Send(r.sink, notify.Event{
			Kind:   notify.KindBindingChanged,
			Action: string(c.action),
			Old:    c.old.String(),
			New:    c.new.String(),
		})
	}
}

// Dispatch processes one key event. Injected events are ignored; key repeat does not
// re-trigger.
func (r *Router) Dispatch(ev input.Event) {
	if ev.Injected || ev.Key == "" {
		return
	}

	r.mu.Lock()
	if !ev.Pressed {
		delete(r.pressed, ev.Key)
		r.mu.Unlock()
		return
	}
	if r.pressed[ev.Key] {
		r.mu.Unlock()
		return
	}
	r.pressed[ev.Key] = true
	var matched []Action
	for _, a := range Actions {
		if r.bindings[a].matches(ev.Key, r.pressed) {
			matched = append(matched, a)
		}
	}
	r.mu.Unlock()

	if r.tapper != nil && ev.Key == r.linkFrom && r.state.LinkEnabled() {
		r.tap(r.linkTo)
	}
	for _, a := range matched {
		r.logger.Debug("hotkey triggered", zap.String("action", string(a)), zap.String("key", string(ev.Key)))
		r.Perform(a)
	}
}

func (r *Router) tap(k input.Key) {
	err := r.tapper.PressKey(k)
	if err == nil {
		err = r.tapper.ReleaseKey(k)
	}
	if err != nil {
		r.logger.Warn("link tap failed", zap.String("key", string(k)), zap.Error(err))
		notify.Send(r.sink, notify.Event{Kind: notify.KindError, Action: string(ActionLink), Err: err})
	}
}

// Perform runs an action as if its hotkey had been pressed.
func (r *Router) Perform(a Action) error {
	switch a {
	case ActionRecoil:
		r.toggled(a, r.state.ToggleRecoilArmed())
	case ActionTriggerKey:
		r.toggled(a, r.state.ToggleTriggerKeyAutoPress())
	case ActionLink:
		r.toggled(a, r.state.ToggleLinkEnabled())
	case ActionAutoClick:
		r.toggled(a, r.state.ToggleAutoClickEnabled())
	case ActionPrevProfile, ActionNextProfile:
		step := r.profiles.Next
		if a == ActionPrevProfile {
			step = r.profiles.Previous
		}
		if _, err := step(); err != nil {
			r.logger.Warn("profile switch failed", zap.Error(err))
			notify.Send(r.sink, notify.Event{Kind: notify.KindError, Action: string(a), Err: err})
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}

// SetEnabled sets a toggle action to on. It is a no-op when the flag already has that value.
func (r *Router) SetEnabled(a Action, on bool) error {
	var old bool
	switch a {
	case ActionRecoil:
		old = r.state.SetRecoilArmed(on)
	case ActionTriggerKey:
		old = r.state.SetTriggerKeyAutoPress(on)
	case ActionLink:
		old = r.state.SetLinkEnabled(on)
	case ActionAutoClick:
		old = r.state.SetAutoClickEnabled(on)
	default:
		return fmt.Errorf("%w: %q is not a toggle", ErrUnknownAction, a)
	}
	if old != on {
		r.toggled(a, on)
	}
	return nil
}

// Enabled reports the flag behind a toggle action.
func (r *Router) Enabled(a Action) bool {
	switch a {
	case ActionRecoil:
		return r.state.RecoilArmed()
	case ActionTriggerKey:
		return r.state.TriggerKeyAutoPress()
	case ActionLink:
		return r.state.LinkEnabled()
	case ActionAutoClick:
		return r.state.AutoClickEnabled()
	}
	return false
}

func (r *Router) toggled(a Action, on bool) {
	r.logger.Info("toggled", zap.String("action", string(a)), zap.Bool("on", on))
	notify.Send(r.sink, notify.Event{Kind: notify.KindStateChanged, Action: string(a), Old: onOff(!on), New: onOff(on)})
}

// SetTriggerChar changes the character held while recoil fires. See state.SetTriggerChar.
func (r *Router) SetTriggerChar(text string) error {
	old := r.state.TriggerChar()
	c, err := r.state.SetTriggerChar(text)
	if c != old {
		notify.Send(r.sink, notify.Event{Kind: notify.KindStateChanged, Action: "trigger_char", Old: string(old), New: string(c)})
	}
	if err != nil {
		notify.Send(r.sink, notify.Event{Kind: notify.KindError, Action: "trigger_char", Err: err})
	}
	return err
}

// Run dispatches events until ctx is done or the channel is closed.
func (r *Router) Run(ctx context.Context, events <-chan input.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.Dispatch(ev)
		}
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
