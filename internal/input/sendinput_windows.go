//go:build windows

package input

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procSendInput        = user32.NewProc("SendInput")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
	procMapVirtualKey    = user32.NewProc("MapVirtualKeyW")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfMove       = 0x0001
	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040
	mouseeventfXDown      = 0x0080
	mouseeventfXUp        = 0x0100

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
	keyeventfScanCode    = 0x0008

	mapvkVKToVSC = 0
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// INPUT is a union; MOUSEINPUT is its largest member so the mouse layout sets the size.
type mouseINPUT struct {
	Type uint32
	Mi   mouseInput
}

type keybdINPUT struct {
	Type uint32
	Ki   keybdInput
	_    [unsafe.Sizeof(mouseInput{}) - unsafe.Sizeof(keybdInput{})]byte
}

// reconcileAfter is how long the hook and async key state may disagree, with no
// injection of our own in between, before the hook state is treated as a missed release.
const reconcileAfter = 100 * time.Millisecond

type sendInputBackend struct {
	hooks  *hookThread
	logger *zap.Logger

	mu           sync.Mutex
	lastInjected [buttonCount]time.Time
}

func openSendInput(logger *zap.Logger) (Backend, Capture, error) {
	for _, p := range []*windows.LazyProc{procSendInput, procGetAsyncKeyState, procMapVirtualKey} {
		if err := p.Find(); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	h, err := startHooks(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	b := &sendInputBackend{hooks: h, logger: logger.Named("sendinput")}
	return b, newHubCapture(h.hub), nil
}

func asyncKeyDown(vk uint16) bool {
	ret, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return ret&0x8000 != 0
}

// ButtonDown reports the hardware state of b. The hook tracks non-injected transitions;
// GetAsyncKeyState includes our own clicks, so it only corrects the hook when we have
// not injected that button recently.
func (s *sendInputBackend) ButtonDown(b Button) bool {
	vk, ok := VirtualKey(b.Key())
	if !ok {
		return false
	}
	physical := s.hooks.buttons.get(b)
	async := asyncKeyDown(vk)
	if physical == async {
		return physical
	}
	s.mu.Lock()
	quiet := time.Since(s.lastInjected[b]) > reconcileAfter
	s.mu.Unlock()
	if !quiet {
		return physical
	}
	if physical {
		s.logger.Debug("hook missed button release", zap.Stringer("button", b))
		s.hooks.buttons.set(b, false)
	}
	return async
}

func (s *sendInputBackend) PressKey(k Key) error   { return s.key(k, true) }
func (s *sendInputBackend) ReleaseKey(k Key) error { return s.key(k, false) }

func (s *sendInputBackend) key(k Key, pressed bool) error {
	if _, isButton := k.Button(); isButton {
		return fmt.Errorf("%s is a mouse button", k)
	}
	vk, ok := VirtualKey(k)
	if !ok {
		return fmt.Errorf("no virtual key for %q", k)
	}
	scan, _, _ := procMapVirtualKey.Call(uintptr(vk), mapvkVKToVSC)
	if scan == 0 {
		return fmt.Errorf("no scan code for %s", k)
	}
	flags := uint32(keyeventfScanCode)
	if isExtendedKey(vk) {
		flags |= keyeventfExtendedKey
	}
	if !pressed {
		flags |= keyeventfKeyUp
	}
	in := keybdINPUT{Type: inputKeyboard, Ki: keybdInput{WScan: uint16(scan), DwFlags: flags}}
	return sendInput(unsafe.Pointer(&in))
}

func (s *sendInputBackend) PressButton(b Button) error   { return s.button(b, true) }
func (s *sendInputBackend) ReleaseButton(b Button) error { return s.button(b, false) }

func (s *sendInputBackend) button(b Button, pressed bool) error {
	mi := mouseInput{}
	switch b {
	case ButtonLeft:
		mi.DwFlags = pick(pressed, mouseeventfLeftDown, mouseeventfLeftUp)
	case ButtonRight:
		mi.DwFlags = pick(pressed, mouseeventfRightDown, mouseeventfRightUp)
	case ButtonMiddle:
		mi.DwFlags = pick(pressed, mouseeventfMiddleDown, mouseeventfMiddleUp)
	case ButtonX1, ButtonX2:
		mi.DwFlags = pick(pressed, mouseeventfXDown, mouseeventfXUp)
		mi.MouseData = uint32(b - ButtonX1 + 1)
	default:
		return fmt.Errorf("unsupported button %v", b)
	}
	s.mu.Lock()
	s.lastInjected[b] = time.Now()
	s.mu.Unlock()
	in := mouseINPUT{Type: inputMouse, Mi: mi}
	return sendInput(unsafe.Pointer(&in))
}

func (s *sendInputBackend) Move(dx, dy int) error {
	in := mouseINPUT{Type: inputMouse, Mi: mouseInput{Dx: int32(dx), Dy: int32(dy), DwFlags: mouseeventfMove}}
	return sendInput(unsafe.Pointer(&in))
}

// Close leaves the hooks installed; they live for the process.
func (s *sendInputBackend) Close() error {
	return nil
}

func pick(cond bool, a, b uint32) uint32 {
	if cond {
		return a
	}
	return b
}

func sendInput(in unsafe.Pointer) error {
	n, _, err := procSendInput.Call(1, uintptr(in), unsafe.Sizeof(mouseINPUT{}))
	if n != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}
