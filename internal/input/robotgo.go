//go:build cgo

package input

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// robotgoBackend injects through robotgo. robotgo cannot poll buttons, so physical
// state comes from the gohook event stream with our own injections filtered out.
type robotgoBackend struct {
	logger  *zap.Logger
	hub     *hub
	buttons buttonTracker
	echoes  *echoFilter

	events    chan hook.Event
	done      chan struct{}
	closeOnce sync.Once
}

func openRobotgo(logger *zap.Logger) (Backend, Capture, error) {
	evs := hook.Start()
	if evs == nil {
		return nil, nil, fmt.Errorf("%w: gohook failed to start", ErrBackendUnavailable)
	}
	b := &robotgoBackend{
		logger: logger.Named("robotgo"),
		hub:    newHub(),
		echoes: newEchoFilter(),
		events: evs,
		done:   make(chan struct{}),
	}
	go b.pump()
	b.logger.Info("robotgo backend started")
	return b, newHubCapture(b.hub), nil
}

func (r *robotgoBackend) pump() {
	defer close(r.done)
	for ev := range r.events {
		var out Event
		switch ev.Kind {
		case hook.KeyDown, hook.KeyUp:
			k, err := ParseKey(hook.RawcodetoKeychar(ev.Rawcode))
			if err != nil {
				continue
			}
			out = Event{Key: k, Pressed: ev.Kind == hook.KeyDown}
		case hook.MouseHold, hook.MouseUp:
			b := Button(ev.Button)
			if b <= ButtonNone || b >= buttonCount {
				continue
			}
			out = Event{Key: b.Key(), Button: b, Pressed: ev.Kind == hook.MouseHold}
		default:
			continue
		}
		out.Timestamp = ev.When.UnixMilli()
		out.Injected = r.echoes.consume(out.Key, out.Pressed)
		if out.Button != ButtonNone && !out.Injected {
			r.buttons.set(out.Button, out.Pressed)
		}
		r.hub.publish(out)
	}
}

func (r *robotgoBackend) ButtonDown(b Button) bool {
	return r.buttons.get(b)
}

func (r *robotgoBackend) PressKey(k Key) error   { return r.key(k, true) }
func (r *robotgoBackend) ReleaseKey(k Key) error { return r.key(k, false) }

func (r *robotgoBackend) key(k Key, pressed bool) error {
	if _, isButton := k.Button(); isButton {
		return fmt.Errorf("%s is a mouse button", k)
	}
	name, ok := robotgoKeyName(k)
	if !ok {
		return fmt.Errorf("robotgo cannot type %q", k)
	}
	r.echoes.expect(k, pressed)
	if err := robotgo.KeyToggle(name, toggleArg(pressed)); err != nil {
		return fmt.Errorf("robotgo key %s: %w", name, err)
	}
	return nil
}

func (r *robotgoBackend) PressButton(b Button) error   { return r.button(b, true) }
func (r *robotgoBackend) ReleaseButton(b Button) error { return r.button(b, false) }

func (r *robotgoBackend) button(b Button, pressed bool) error {
	var name string
	switch b {
	case ButtonLeft:
		name = "left"
	case ButtonRight:
		name = "right"
	case ButtonMiddle:
		name = "center"
	default:
		return fmt.Errorf("robotgo cannot press %v", b)
	}
	r.echoes.expect(b.Key(), pressed)
	if err := robotgo.Toggle(name, toggleArg(pressed)); err != nil {
		return fmt.Errorf("robotgo button %s: %w", name, err)
	}
	return nil
}

func (r *robotgoBackend) Move(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

func (r *robotgoBackend) Close() error {
	r.closeOnce.Do(func() {
		hook.End()
		select {
		case <-r.done:
		case <-time.After(time.Second):
			r.logger.Warn("gohook did not stop in time")
		}
	})
	return nil
}

func toggleArg(pressed bool) string {
	if pressed {
		return "down"
	}
	return "up"
}

var robotgoNames = map[Key]string{
	"CTRL": "ctrl", "ALT": "alt", "SHIFT": "shift", "CMD": "cmd",
	"SPACE": "space", "ENTER": "enter", "ESC": "esc", "BACKSPACE": "backspace",
	"TAB": "tab", "CAPSLOCK": "capslock", "PAGEUP": "pageup", "PAGEDOWN": "pagedown",
	"END": "end", "HOME": "home", "LEFT": "left", "UP": "up", "RIGHT": "right",
	"DOWN": "down", "PRINTSCREEN": "printscreen", "INSERT": "insert", "DELETE": "delete",
}

func robotgoKeyName(k Key) (string, bool) {
	if n, ok := robotgoNames[k]; ok {
		return n, true
	}
	if _, ok := VirtualKey(k); !ok {
		return "", false
	}
	switch k {
	case "PAUSE", "SCROLLLOCK", "NUMLOCK":
		return "", false
	}
	return strings.ToLower(string(k)), true
}
