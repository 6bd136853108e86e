package config

import (
	"errors"
	"fmt"
	"time"

	"recoilctl/internal/hotkey"
	"recoilctl/internal/profile"
	"recoilctl/internal/state"
)

// Capture reads the live engine state into a Settings value.
func Capture(st *state.State, router *hotkey.Router, store *profile.Store) *Settings {
	snap := st.Snapshot()
	s := &Settings{
		RecoilArmed:         snap.RecoilArmed,
		LinkEnabled:         snap.LinkEnabled,
		AutoClickEnabled:    snap.AutoClickEnabled,
		TriggerKeyAutoPress: snap.TriggerKeyAutoPress,
		TriggerChar:         string(snap.TriggerChar),
		ClickDelayMS:        int(snap.ClickDelay / time.Millisecond),
		ClickJitterMS:       int(snap.ClickJitter / time.Millisecond),
		KeyBindings:         make(map[string]string),
	}
	for a, b := range router.Bindings() {
		if !b.Equal(hotkey.Default(a)) {
			s.KeyBindings[string(a)] = b.String()
		}
	}
	if w, _, ok := store.Current(); ok {
		s.CurrentWeapon = w.Name()
	}
	return s
}

// Apply pushes persisted settings into the engine. Invalid values fall back to their
// defaults; the returned error lists what was rejected.
func Apply(s *Settings, st *state.State, router *hotkey.Router, store *profile.Store) error {
	var errs []error

	st.SetRecoilArmed(s.RecoilArmed)
	st.SetLinkEnabled(s.LinkEnabled)
	st.SetAutoClickEnabled(s.AutoClickEnabled)
	st.SetTriggerKeyAutoPress(s.TriggerKeyAutoPress)
	st.SetClickTiming(time.Duration(s.ClickDelayMS)*time.Millisecond, time.Duration(s.ClickJitterMS)*time.Millisecond)
	if _, err := st.SetTriggerChar(s.TriggerChar); err != nil {
		errs = append(errs, err)
	}

	texts := make(map[hotkey.Action]string, len(s.KeyBindings))
	for name, text := range s.KeyBindings {
		a, err := hotkey.ParseAction(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		texts[a] = text
	}
	if err := router.SetBindings(texts); err != nil {
		errs = append(errs, err)
	}

	if s.CurrentWeapon != "" {
		if _, err := store.SelectName(s.CurrentWeapon); err != nil {
			errs = append(errs, fmt.Errorf("current weapon: %w", err))
		}
	}
	return errors.Join(errs...)
}
