package main

import (
	"fmt"

	"go.uber.org/zap"

	"recoilctl/internal/config"
	"recoilctl/internal/hotkey"
	"recoilctl/internal/notify"
	"recoilctl/internal/profile"
	"recoilctl/internal/state"
	"recoilctl/internal/tray"
)

// host consumes engine notifications off the hot path: it saves settings, plays
// tones and keeps the tray in sync.
type host struct {
	logger   *zap.Logger
	settings *config.Manager
	state    *state.State
	router   *hotkey.Router
	store    *profile.Store
	tones    notify.Sink
	menu     *trayMenu
}

func (h *host) run(events <-chan notify.Event) {
	for e := range events {
		h.handle(e)
	}
}

func (h *host) handle(e notify.Event) {
	if h.tones != nil {
		h.tones.Notify(e)
	}
	switch e.Kind {
	case notify.KindStateChanged, notify.KindBindingChanged, notify.KindProfileSwitched, notify.KindProfilesReloaded:
		// The settings change callback refreshes the tray.
		h.persist()
	default:
		h.menu.refresh()
	}
}

// persist saves the live state, keeping fields the engine does not own.
func (h *host) persist() {
	s := config.Capture(h.state, h.router, h.store)
	s.Backend = h.settings.Get().Backend
	h.settings.Set(s)
	if err := h.settings.Save(); err != nil {
		h.logger.Warn("failed to save settings", zap.String("path", h.settings.Path()), zap.Error(err))
	}
}

var toggleLabels = []struct {
	action hotkey.Action
	label  string
}{
	{hotkey.ActionRecoil, "Recoil"},
	{hotkey.ActionAutoClick, "Auto-click"},
	{hotkey.ActionTriggerKey, "Hold trigger key"},
	{hotkey.ActionLink, "Link F to I"},
}

// trayMenu mirrors the toggles and the selected weapon in the tray.
type trayMenu struct {
	tray    *tray.Tray
	router  *hotkey.Router
	store   *profile.Store
	toggles map[hotkey.Action]int
	weapon  int
}

func newTrayMenu(router *hotkey.Router, store *profile.Store, quit func()) *trayMenu {
	m := &trayMenu{
		tray:    tray.New("recoilctl", "recoilctl"),
		router:  router,
		store:   store,
		toggles: make(map[hotkey.Action]int),
	}
	for _, t := range toggleLabels {
		a := t.action
		var id int
		id = m.tray.AddToggle(t.label, router.Enabled(a), func() { m.toggle(a, id) })
		m.toggles[a] = id
	}
	m.tray.AddSeparator()
	m.weapon = m.tray.AddMenuItem("Weapon: none", nil)
	m.tray.AddMenuItem("Previous weapon", func() { _ = router.Perform(hotkey.ActionPrevProfile) })
	m.tray.AddMenuItem("Next weapon", func() { _ = router.Perform(hotkey.ActionNextProfile) })
	m.tray.AddMenuItem("Reload profiles", func() { _, _ = store.Reload() })
	m.tray.AddSeparator()
	m.tray.AddMenuItem("Quit", quit)
	m.tray.OnReady(m.refresh)
	m.refresh()
	return m
}

// toggle sets the flag opposite to what the checkbox shows.
func (m *trayMenu) toggle(a hotkey.Action, id int) {
	shown, ok := m.tray.Item(id)
	if !ok {
		return
	}
	_ = m.router.SetEnabled(a, !shown.Checked)
	m.refresh()
}

func (m *trayMenu) refresh() {
	if m == nil {
		return
	}
	for a, id := range m.toggles {
		m.tray.SetItemChecked(id, m.router.Enabled(a))
	}
	weapon := "none"
	if w, _, ok := m.store.Current(); ok {
		weapon = w.Name()
	}
	m.tray.SetItemTitle(m.weapon, "Weapon: "+weapon)
	m.tray.SetTooltip(m.status(weapon))
}

func (m *trayMenu) status(weapon string) string {
	recoil := "off"
	if m.router.Enabled(hotkey.ActionRecoil) {
		recoil = "on"
	}
	return fmt.Sprintf("recoilctl: %s (recoil %s, %s)", weapon, recoil, m.router.Binding(hotkey.ActionRecoil))
}

func (m *trayMenu) run()  { m.tray.Run() }
func (m *trayMenu) stop() { m.tray.Stop() }
