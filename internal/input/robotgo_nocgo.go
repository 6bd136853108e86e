//go:build !cgo

package input

import (
	"fmt"

	"go.uber.org/zap"
)

func openRobotgo(_ *zap.Logger) (Backend, Capture, error) {
	return nil, nil, fmt.Errorf("%w: robotgo requires cgo", ErrBackendUnavailable)
}
