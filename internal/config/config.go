// Package config persists user settings (toggles, bindings, timing, selected weapon).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileName is the settings file kept next to the executable.
const FileName = "user_settings.json"

// Settings is the persisted form of the engine state.
type Settings struct {
	RecoilArmed         bool              `json:"fire_enabled"`
	LinkEnabled         bool              `json:"flash_mode"`
	AutoClickEnabled    bool              `json:"auto_click_enabled"`
	TriggerKeyAutoPress bool              `json:"press_key_enabled"`
	TriggerChar         string            `json:"press_key_char"`
	ClickDelayMS        int               `json:"click_delay"`
	ClickJitterMS       int               `json:"click_rand"`
	KeyBindings         map[string]string `json:"key_bindings"`
	CurrentWeapon       string            `json:"current_weapon,omitempty"`
	Backend             string            `json:"backend,omitempty"`
}

// Default returns the settings of a fresh install.
func Default() *Settings {
	return &Settings{
		RecoilArmed:         true,
		TriggerKeyAutoPress: true,
		TriggerChar:         "p",
		ClickDelayMS:        20,
		ClickJitterMS:       20,
		KeyBindings:         map[string]string{},
	}
}

func (s *Settings) clone() *Settings {
	c := *s
	c.KeyBindings = make(map[string]string, len(s.KeyBindings))
	for k, v := range s.KeyBindings {
		c.KeyBindings[k] = v
	}
	return &c
}

// Manager handles loading and saving settings.
type Manager struct {
	mu        sync.Mutex
	path      string
	settings  *Settings
	onChanged func()
	logger    *zap.Logger
}

// NewManager returns a Manager for the settings file at path, holding defaults until Load.
func NewManager(path string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		path:     path,
		settings: Default(),
		logger:   logger.Named("settings"),
	}
}

// DefaultPath places the settings file in dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// Path is the settings file location.
func (m *Manager) Path() string { return m.path }

// Load reads the settings file. A missing file keeps the defaults. Fields absent from
// the file keep their default values.
func (m *Manager) Load() error {
	m.mu.Lock()
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.mu.Unlock()
		m.logger.Info("no settings file, using defaults", zap.String("path", m.path))
		return nil
	}
	if err != nil {
		m.mu.Unlock()
		return err
	}
	s := Default()
	if err := json.Unmarshal(data, s); err != nil {
		m.mu.Unlock()
		return err
	}
	if s.KeyBindings == nil {
		s.KeyBindings = map[string]string{}
	}
	m.settings = s
	cb := m.onChanged
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Save writes the settings atomically (temp file and rename).
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	m.logger.Debug("saving settings", zap.String("path", m.path), zap.Int("bytes", len(data)))
	return os.Rename(tmp, m.path)
}

// Get returns a copy of the current settings.
func (m *Manager) Get() *Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.clone()
}

// Set replaces the settings.
func (m *Manager) Set(s *Settings) {
	m.mu.Lock()
	m.settings = s.clone()
	cb := m.onChanged
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// RegisterChangeCallback registers a function called after Load or Set.
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}
