// Package hotkey maps global key and button chords to engine actions.
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"recoilctl/internal/input"
)

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrInvalidBinding  = errors.New("invalid binding")
	ErrBindingConflict = errors.New("binding already in use")
)

// Action is a logical operation a hotkey can trigger.
type Action string

const (
	ActionRecoil      Action = "recoil"
	ActionTriggerKey  Action = "trigger_key"
	ActionLink        Action = "link"
	ActionAutoClick   Action = "auto_click"
	ActionPrevProfile Action = "prev_profile"
	ActionNextProfile Action = "next_profile"
)

// Actions lists every action in display order.
var Actions = []Action{
	ActionRecoil, ActionTriggerKey, ActionLink, ActionAutoClick, ActionPrevProfile, ActionNextProfile,
}

var defaultBindings = map[Action]string{
	ActionRecoil:      "F8",
	ActionLink:        "F9",
	ActionAutoClick:   "=",
	ActionTriggerKey:  "F10",
	ActionPrevProfile: "Alt+Left",
	ActionNextProfile: "Alt+Right",
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	_, ok := defaultBindings[a]
	return ok
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// Default returns the hardwired binding of a.
func Default(a Action) Binding {
	return MustParse(defaultBindings[a])
}

// Binding is a chord of one or more keys or mouse buttons, e.g. "Alt+Left" or "Mouse4".
// Keys are kept in canonical order so equal chords compare equal.
type Binding struct {
	keys []input.Key
}

var modifierOrder = map[input.Key]int{"CTRL": 0, "ALT": 1, "SHIFT": 2, "CMD": 3}

// ParseBinding parses "+"-separated key names. At least one part must be a
// non-modifier key or button.
func ParseBinding(s string) (Binding, error) {
	if strings.TrimSpace(s) == "" {
		return Binding{}, fmt.Errorf("%w: empty", ErrInvalidBinding)
	}
	// "Ctrl++" yields an empty part and is rejected.
	seen := make(map[input.Key]bool)
	var keys []input.Key
	plain := false
	for _, part := range strings.Split(s, "+") {
		k, err := input.ParseKey(part)
		if err != nil {
			return Binding{}, fmt.Errorf("%w: %q: %v", ErrInvalidBinding, s, err)
		}
		if seen[k] {
			return Binding{}, fmt.Errorf("%w: %q repeats %s", ErrInvalidBinding, s, k)
		}
		seen[k] = true
		keys = append(keys, k)
		if !k.IsModifier() {
			plain = true
		}
	}
	if !plain {
		return Binding{}, fmt.Errorf("%w: %q has only modifiers", ErrInvalidBinding, s)
	}
	sort.Slice(keys, func(i, j int) bool {
		mi, iMod := modifierOrder[keys[i]]
		mj, jMod := modifierOrder[keys[j]]
		switch {
		case iMod && jMod:
			return mi < mj
		case iMod != jMod:
			return iMod
		}
		return keys[i] < keys[j]
	})
	return Binding{keys: keys}, nil
}

// MustParse is ParseBinding for constants.
func MustParse(s string) Binding {
	b, err := ParseBinding(s)
	if err != nil {
		panic(err)
	}
	return b
}

// String renders the binding in the form ParseBinding accepts, e.g. "Alt+Left".
func (b Binding) String() string {
	parts := make([]string, len(b.keys))
	for i, k := range b.keys {
		parts[i] = displayName(k)
	}
	return strings.Join(parts, "+")
}

func displayName(k input.Key) string {
	s := string(k)
	if len(s) <= 1 || (s[0] == 'F' && len(s) <= 3 && s[1] >= '0' && s[1] <= '9') {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}

// Keys returns a copy of the keys, modifiers first.
func (b Binding) Keys() []input.Key { return append([]input.Key(nil), b.keys...) }
// IsZero reports an unbound binding.
func (b Binding) IsZero() bool      { return len(b.keys) == 0 }

// Equal reports whether both bindings use the same keys in the same order.
func (b Binding) Equal(o Binding) bool {
	if len(b.keys) != len(o.keys) {
		return false
	}
	for i := range b.keys {
		if b.keys[i] != o.keys[i] {
			return false
		}
	}
	return true
}

// MarshalText lets bindings be stored in settings files.
func (b Binding) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText parses text with ParseBinding.
func (b *Binding) UnmarshalText(text []byte) error {
	p, err := ParseBinding(string(text))
	if err != nil {
		return err
	}
	*b = p
	return nil
}

// matches reports whether pressing k completes this chord given the held set. Extra
// held modifiers prevent a match so "F8" does not fire on Ctrl+F8.
func (b Binding) matches(k input.Key, held map[input.Key]bool) bool {
	found := false
	for _, part := range b.keys {
		if part == k {
			found = true
		}
		if !held[part] {
			return false
		}
	}
	if !found {
		return false
	}
	for h := range held {
		if h.IsModifier() && !b.has(h) {
			return false
		}
	}
	return true
}

func (b Binding) has(k input.Key) bool {
	for _, part := range b.keys {
		if part == k {
			return true
		}
	}
	return false
}
