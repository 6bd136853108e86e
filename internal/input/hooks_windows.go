//go:build windows

package input

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C

	llkhfInjected = 0x10
	llmhfInjected = 0x01
)

type kbdLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msLLHookStruct struct {
	Point       struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// hookThread owns the process-wide low-level keyboard and mouse hooks. Hook procedures
// are plain callbacks, so the running instance is package state.
type hookThread struct {
	logger  *zap.Logger
	hub     *hub
	buttons buttonTracker
}

var (
	activeHooks  *hookThread
	hooksOnce    sync.Once
	hooksErr     error
	keyboardHook uintptr
	mouseHook    uintptr
)

func startHooks(logger *zap.Logger) (*hookThread, error) {
	hooksOnce.Do(func() {
		h := &hookThread{logger: logger, hub: newHub()}
		activeHooks = h
		ready := make(chan error, 1)
		go h.loop(ready)
		if hooksErr = <-ready; hooksErr != nil {
			activeHooks = nil
		}
	})
	return activeHooks, hooksErr
}

// Hooks must be installed on the thread that pumps their message loop.
func (h *hookThread) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hMod, _, _ := procGetModuleHandle.Call(0)

	var err error
	keyboardHook, _, err = procSetWindowsHookEx.Call(whKeyboardLL, syscall.NewCallback(keyboardProc), hMod, 0)
	if keyboardHook == 0 {
		ready <- fmt.Errorf("install keyboard hook: %w", err)
		return
	}
	mouseHook, _, err = procSetWindowsHookEx.Call(whMouseLL, syscall.NewCallback(mouseProc), hMod, 0)
	if mouseHook == 0 {
		procUnhookWindowsHookEx.Call(keyboardHook)
		ready <- fmt.Errorf("install mouse hook: %w", err)
		return
	}
	h.logger.Info("global input hooks installed")
	ready <- nil

	var msg struct {
		Hwnd    syscall.Handle
		Message uint32
		Wparam  uintptr
		Lparam  uintptr
		Time    uint32
		Pt      struct{ X, Y int32 }
	}
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
	}

	procUnhookWindowsHookEx.Call(keyboardHook)
	procUnhookWindowsHookEx.Call(mouseHook)
	h.logger.Info("global input hooks removed")
}

func keyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 && activeHooks != nil {
		kbd := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
		if key := KeyForVirtualKey(kbd.VkCode); key != "" {
			activeHooks.hub.publish(Event{
				Key:       key,
				Pressed:   wParam == wmKeyDown || wParam == wmSysKeyDown,
				Injected:  kbd.Flags&llkhfInjected != 0,
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
	ret, _, _ := procCallNextHookEx.Call(keyboardHook, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 && activeHooks != nil {
		ms := (*msLLHookStruct)(unsafe.Pointer(lParam))
		var b Button
		var pressed bool
		switch wParam {
		case wmLButtonDown, wmLButtonUp:
			b, pressed = ButtonLeft, wParam == wmLButtonDown
		case wmRButtonDown, wmRButtonUp:
			b, pressed = ButtonRight, wParam == wmRButtonDown
		case wmMButtonDown, wmMButtonUp:
			b, pressed = ButtonMiddle, wParam == wmMButtonDown
		case wmXButtonDown, wmXButtonUp:
			b, pressed = ButtonX2, wParam == wmXButtonDown
			if ms.MouseData>>16 == 1 {
				b = ButtonX1
			}
		}
		if b != ButtonNone {
			injected := ms.Flags&llmhfInjected != 0
			if !injected {
				activeHooks.buttons.set(b, pressed)
			}
			activeHooks.hub.publish(Event{
				Key:       b.Key(),
				Button:    b,
				Pressed:   pressed,
				Injected:  injected,
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
	ret, _, _ := procCallNextHookEx.Call(mouseHook, uintptr(nCode), wParam, lParam)
	return ret
}
