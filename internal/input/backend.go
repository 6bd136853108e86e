package input

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrBackendUnavailable is returned when no injection backend can be opened on this
// platform or with the current privileges.
var ErrBackendUnavailable = errors.New("input backend unavailable")

// Kind selects a backend implementation.
type Kind string

const (
	KindAuto      Kind = "auto"
	KindSendInput Kind = "sendinput"
	KindRobotgo   Kind = "robotgo"
)

// ParseKind validates a backend name. The empty string selects KindAuto.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindSendInput, KindRobotgo:
		return k, nil
	}
	return "", fmt.Errorf("unknown input backend %q (want auto, sendinput or robotgo)", s)
}

// New opens a backend of the given kind together with its global event source.
// KindAuto tries sendinput first and falls back to robotgo.
func New(kind Kind, logger *zap.Logger) (Backend, Capture, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch kind {
	case KindSendInput:
		return openSendInput(logger)
	case KindRobotgo:
		return openRobotgo(logger)
	case KindAuto, "":
		b, c, err := openSendInput(logger)
		if err == nil {
			return b, c, nil
		}
		logger.Info("sendinput backend unavailable, trying robotgo", zap.Error(err))
		b, c, err2 := openRobotgo(logger)
		if err2 == nil {
			return b, c, nil
		}
		return nil, nil, fmt.Errorf("%w: sendinput: %v; robotgo: %v", ErrBackendUnavailable, err, err2)
	}
	return nil, nil, fmt.Errorf("%w: unknown kind %q", ErrBackendUnavailable, kind)
}
