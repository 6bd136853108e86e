// Package input provides physical device polling and synthetic input injection.
package input

import "fmt"

// Button identifies a mouse button. 1=left, 2=right, 3=middle.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
	ButtonX1
	ButtonX2

	buttonCount
)

// Key returns the hotkey name of the button (MOUSE1..MOUSE5).
func (b Button) Key() Key {
	if b <= ButtonNone || b >= buttonCount {
		return ""
	}
	return Key(fmt.Sprintf("MOUSE%d", int(b)))
}

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	case ButtonX1:
		return "x1"
	case ButtonX2:
		return "x2"
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// ParseButton accepts a button name (left, right, middle, x1, x2) or its key name (MOUSE1..).
func ParseButton(s string) (Button, error) {
	switch s {
	case "left", "l":
		return ButtonLeft, nil
	case "right", "r":
		return ButtonRight, nil
	case "middle", "m":
		return ButtonMiddle, nil
	case "x1":
		return ButtonX1, nil
	case "x2":
		return ButtonX2, nil
	}
	k, err := ParseKey(s)
	if err == nil {
		if b, ok := k.Button(); ok {
			return b, nil
		}
	}
	return ButtonNone, fmt.Errorf("unknown mouse button %q", s)
}

// Event is a key or button transition delivered by a Capture.
type Event struct {
	Key       Key    // MOUSEn for button transitions
	Button    Button // ButtonNone for keyboard events
	Pressed   bool
	Injected  bool  // synthesized by software, including this process
	Timestamp int64 // Unix ms timestamp
}

// Backend polls physical button state and injects synthetic input.
// Polling never injects anything.
type Backend interface {
	ButtonDown(b Button) bool
	PressKey(k Key) error
	ReleaseKey(k Key) error
	PressButton(b Button) error
	ReleaseButton(b Button) error
	Move(dx, dy int) error
	Close() error
}

// Capture delivers global key and button transitions.
type Capture interface {
	Start() error
	Stop() error
	Events() <-chan Event
}
