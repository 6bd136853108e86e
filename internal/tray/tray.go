// Package tray provides the system tray status surface using getlantern/systray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// MenuItem is a tray menu entry. Checkable items render as checkboxes.
type MenuItem struct {
	ID        int
	Title     string
	Checkable bool
	Checked   bool
	Callback  func()
	item      *systray.MenuItem
}

// Tray manages the system tray icon and menu. Items are added before Run; state
// updates are safe from any goroutine before or after the menu is built.
type Tray struct {
	mu      sync.Mutex
	title   string
	tooltip string
	items   []*MenuItem
	ready   bool
	onReady func()
	quitCh  chan struct{}
}

// New creates a tray with the given title and tooltip.
func New(title, tooltip string) *Tray {
	return &Tray{title: title, tooltip: tooltip, quitCh: make(chan struct{})}
}

// AddMenuItem adds a plain menu item and returns its id.
func (t *Tray) AddMenuItem(title string, callback func()) int {
	return t.add(&MenuItem{Title: title, Callback: callback})
}

// AddToggle adds a checkbox item and returns its id.
func (t *Tray) AddToggle(title string, checked bool, callback func()) int {
	return t.add(&MenuItem{Title: title, Checkable: true, Checked: checked, Callback: callback})
}

func (t *Tray) add(mi *MenuItem) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi.ID = len(t.items)
	t.items = append(t.items, mi)
	return mi.ID
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	t.items = append(t.items, nil)
	t.mu.Unlock()
}

// SetItemChecked sets the checked state of a menu item
func (t *Tray) SetItemChecked(id int, checked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.itemLocked(id)
	if mi == nil {
		return
	}
	mi.Checked = checked
	if mi.item != nil {
		if checked {
			mi.item.Check()
		} else {
			mi.item.Uncheck()
		}
	}
}

// SetItemTitle changes the label of a menu item.
func (t *Tray) SetItemTitle(id int, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.itemLocked(id)
	if mi == nil {
		return
	}
	mi.Title = title
	if mi.item != nil {
		mi.item.SetTitle(title)
	}
}

// SetTooltip updates the hover text.
func (t *Tray) SetTooltip(tooltip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tooltip = tooltip
	if t.ready {
		systray.SetTooltip(tooltip)
	}
}

// Item returns a copy of the item state.
func (t *Tray) Item(id int) (MenuItem, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi := t.itemLocked(id)
	if mi == nil {
		return MenuItem{}, false
	}
	c := *mi
	c.item = nil
	return c, true
}

func (t *Tray) itemLocked(id int) *MenuItem {
	if id < 0 || id >= len(t.items) {
		return nil
	}
	return t.items[id]
}

// OnReady registers a function called once the menu is built.
func (t *Tray) OnReady(fn func()) {
	t.mu.Lock()
	t.onReady = fn
	t.mu.Unlock()
}

// Run starts the tray event loop (blocks). It must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// Done is closed when the tray exits.
func (t *Tray) Done() <-chan struct{} {
	return t.quitCh
}

func (t *Tray) setupMenu() {
	t.mu.Lock()
	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(icon())

	for _, mi := range t.items {
		if mi == nil {
			systray.AddSeparator()
			continue
		}
		if mi.Checkable {
			mi.item = systray.AddMenuItemCheckbox(mi.Title, "", mi.Checked)
		} else {
			mi.item = systray.AddMenuItem(mi.Title, "")
		}
		if mi.Callback != nil {
			go t.watch(mi.item.ClickedCh, mi.Callback)
		}
	}
	t.ready = true
	ready := t.onReady
	t.mu.Unlock()

	if ready != nil {
		ready()
	}
}

func (t *Tray) watch(clicked <-chan struct{}, fn func()) {
	for {
		select {
		case <-clicked:
			fn()
		case <-t.quitCh:
			return
		}
	}
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}
