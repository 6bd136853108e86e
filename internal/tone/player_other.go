//go:build !windows

package tone

import (
	"fmt"
	"runtime"
)

// NewPlayer is unavailable off Windows.
func NewPlayer() (Player, error) {
	return nil, fmt.Errorf("audio cues are not supported on %s", runtime.GOOS)
}
