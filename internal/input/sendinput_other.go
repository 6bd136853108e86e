//go:build !windows

package input

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

func openSendInput(_ *zap.Logger) (Backend, Capture, error) {
	return nil, nil, fmt.Errorf("%w: SendInput is not available on %s", ErrBackendUnavailable, runtime.GOOS)
}
