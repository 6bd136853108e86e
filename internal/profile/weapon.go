// Package profile loads weapon timing profiles and tracks the selected one.
package profile

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Defaults applied to fields a profile omits.
const (
	DefaultPull            = 2.0
	DefaultInitialDuration = 0.5
	DefaultSteadyPull      = 1.6
	DefaultSleepTime       = 8.0
	DefaultAcceleration    = 200.0
)

// Phase of an activation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInitial
	PhaseSteady
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseSteady:
		return "steady"
	}
	return "idle"
}

// Spec is the on-disk form of a weapon. Omitted fields take the package defaults.
type Spec struct {
	Name            string      `yaml:"name" toml:"name" json:"name"`
	DefaultPull     *float64    `yaml:"defaultPull,omitempty" toml:"defaultPull,omitempty" json:"defaultPull,omitempty"`
	InitialDuration *float64    `yaml:"initialDuration,omitempty" toml:"initialDuration,omitempty" json:"initialDuration,omitempty"`
	SteadyPull      *float64    `yaml:"steadyPull,omitempty" toml:"steadyPull,omitempty" json:"steadyPull,omitempty"`
	SleepTime       *float64    `yaml:"sleepTime,omitempty" toml:"sleepTime,omitempty" json:"sleepTime,omitempty"`
	Acceleration    *float64    `yaml:"acceleration,omitempty" toml:"acceleration,omitempty" json:"acceleration,omitempty"`
	Curve           string      `yaml:"curve,omitempty" toml:"curve,omitempty" json:"curve,omitempty"`
	Points          [][]float64 `yaml:"points,omitempty" toml:"points,omitempty" json:"points,omitempty"`
}

// Weapon is an immutable timing profile.
type Weapon struct {
	name            string
	defaultPull     float64
	initialDuration time.Duration
	steadyPull      float64
	sleepTime       time.Duration
	acceleration    float64
	kind            CurveKind
	custom          PullCurve
}

// New validates s and applies defaults.
func New(s Spec) (Weapon, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return Weapon{}, errors.New("weapon name is required")
	}
	w := Weapon{
		name:         name,
		defaultPull:  orDefault(s.DefaultPull, DefaultPull),
		steadyPull:   orDefault(s.SteadyPull, DefaultSteadyPull),
		acceleration: orDefault(s.Acceleration, DefaultAcceleration),
	}
	initial := orDefault(s.InitialDuration, DefaultInitialDuration)
	sleep := orDefault(s.SleepTime, DefaultSleepTime)

	for field, v := range map[string]float64{
		"defaultPull": w.defaultPull, "steadyPull": w.steadyPull, "acceleration": w.acceleration,
		"initialDuration": initial, "sleepTime": sleep,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Weapon{}, fmt.Errorf("weapon %q: %s is not a finite number", name, field)
		}
	}
	if initial < 0 {
		return Weapon{}, fmt.Errorf("weapon %q: initialDuration must be >= 0, got %v", name, initial)
	}
	if sleep < 0 {
		return Weapon{}, fmt.Errorf("weapon %q: sleepTime must be >= 0, got %v", name, sleep)
	}
	w.initialDuration = time.Duration(math.Round(initial * float64(time.Second)))
	w.sleepTime = time.Duration(math.Round(sleep * float64(time.Millisecond)))

	kind, err := ParseCurveKind(s.Curve)
	if err != nil {
		return Weapon{}, fmt.Errorf("weapon %q: %w", name, err)
	}
	w.kind = kind

	if len(s.Points) > 0 {
		pts := make(Points, len(s.Points))
		for i, pt := range s.Points {
			if len(pt) != 2 {
				return Weapon{}, fmt.Errorf("weapon %q: curve point %d must be [cycle, pull]", name, i)
			}
			pts[i] = [2]float64{pt[0], pt[1]}
		}
		if err := pts.validate(); err != nil {
			return Weapon{}, fmt.Errorf("weapon %q: %w", name, err)
		}
		w.custom = pts
	}
	return w, nil
}

func orDefault(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// WithCurve returns a copy of w that takes its pull from c.
func (w Weapon) WithCurve(c PullCurve) Weapon {
	w.custom = c
	return w
}

// Accessors for the parsed profile fields.
func (w Weapon) Name() string                   { return w.name }
func (w Weapon) DefaultPull() float64           { return w.defaultPull }
func (w Weapon) InitialDuration() time.Duration { return w.initialDuration }
func (w Weapon) SteadyPull() float64            { return w.steadyPull }
func (w Weapon) SleepTime() time.Duration       { return w.sleepTime }
func (w Weapon) Acceleration() float64          { return w.acceleration }
func (w Weapon) CurveKind() CurveKind           { return w.kind }
func (w Weapon) Custom() PullCurve              { return w.custom }

// PhaseAt returns the phase for a given time since activation.
func (w Weapon) PhaseAt(elapsed time.Duration) Phase {
	if elapsed < w.initialDuration {
		return PhaseInitial
	}
	return PhaseSteady
}

// Pull is the compensation for one cycle. phaseCycles counts cycles since the current
// phase began and cycles counts cycles since activation.
func (w Weapon) Pull(phase Phase, phaseCycles, cycles int) float64 {
	if w.custom != nil {
		return w.custom.Pull(cycles)
	}
	switch phase {
	case PhaseInitial:
		return w.defaultPull * Factor(w.kind, phaseCycles, w.acceleration)
	case PhaseSteady:
		return w.steadyPull * Factor(w.kind, phaseCycles, w.acceleration)
	}
	return 0
}

// Spec returns the on-disk form of w. Custom curves other than Points are not represented.
func (w Weapon) Spec() Spec {
	f := func(v float64) *float64 { return &v }
	s := Spec{
		Name:            w.name,
		DefaultPull:     f(w.defaultPull),
		InitialDuration: f(w.initialDuration.Seconds()),
		SteadyPull:      f(w.steadyPull),
		SleepTime:       f(float64(w.sleepTime) / float64(time.Millisecond)),
		Acceleration:    f(w.acceleration),
	}
	if w.kind != CurveLinear {
		s.Curve = string(w.kind)
	}
	if pts, ok := w.custom.(Points); ok {
		for _, pt := range pts {
			s.Points = append(s.Points, []float64{pt[0], pt[1]})
		}
	}
	return s
}

func (w Weapon) String() string {
	return fmt.Sprintf("%s (pull %.2f for %s, then %.2f every %s, accel %g %s)",
		w.name, w.defaultPull, w.initialDuration, w.steadyPull, w.sleepTime, w.acceleration, w.kind)
}
