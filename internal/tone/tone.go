// Package tone plays short audio cues when engine toggles change.
package tone

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"recoilctl/internal/notify"
)

// Player plays an audio file asynchronously.
type Player interface {
	Play(path string) error
}

// cue names per toggle action, matching assets/tone_<on|off>_<cue>.mp3.
var cues = map[string]string{
	"recoil":      "fire",
	"link":        "flash",
	"auto_click":  "ac",
	"trigger_key": "bx",
}

// Sink plays the on/off cue for state changes it receives.
type Sink struct {
	player Player
	dir    string
	logger *zap.Logger
}

// NewSink plays files from dir (usually <base>/assets).
func NewSink(p Player, dir string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{player: p, dir: dir, logger: logger.Named("tone")}
}

// Path returns the cue file for action switching to on, or "" if there is none.
func (s *Sink) Path(action string, on bool) string {
	cue, ok := cues[action]
	if !ok {
		return ""
	}
	state := "off"
	if on {
		state = "on"
	}
	return filepath.Join(s.dir, "tone_"+state+"_"+cue+".mp3")
}

// Notify plays the cue for state changes and ignores everything else.
func (s *Sink) Notify(e notify.Event) {
	if e.Kind != notify.KindStateChanged {
		return
	}
	path := s.Path(e.Action, e.New == "on")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		s.logger.Debug("tone file missing", zap.String("path", path))
		return
	}
	if err := s.player.Play(path); err != nil {
		s.logger.Debug("tone failed", zap.String("path", path), zap.Error(err))
	}
}
