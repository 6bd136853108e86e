//go:build windows

package tone

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	winmm              = windows.NewLazySystemDLL("winmm.dll")
	procMciSendStringW = winmm.NewProc("mciSendStringW")
)

// mciPlayer plays through the MCI string interface. Each cue gets its own alias so
// overlapping cues do not cut each other off.
type mciPlayer struct {
	mu  sync.Mutex
	seq atomic.Uint64
}

// NewPlayer returns the winmm MCI player.
func NewPlayer() (Player, error) {
	if err := procMciSendStringW.Find(); err != nil {
		return nil, err
	}
	return &mciPlayer{}, nil
}

func (p *mciPlayer) Play(path string) error {
	alias := fmt.Sprintf("cue%d", p.seq.Add(1)%8)
	p.mu.Lock()
	defer p.mu.Unlock()
	mci("close " + alias)
	if err := mci(fmt.Sprintf(`open "%s" type mpegvideo alias %s`, path, alias)); err != nil {
		return err
	}
	return mci("play " + alias)
}

func mci(cmd string) error {
	p, err := windows.UTF16PtrFromString(cmd)
	if err != nil {
		return err
	}
	ret, _, _ := procMciSendStringW.Call(uintptr(unsafe.Pointer(p)), 0, 0, 0)
	if ret != 0 {
		return fmt.Errorf("mciSendString %q: error %d", cmd, ret)
	}
	return nil
}
