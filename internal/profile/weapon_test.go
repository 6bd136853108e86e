package profile

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestNewAppliesDefaults(t *testing.T) {
	w, err := New(Spec{Name: " ak "})
	require.NoError(t, err)
	assert.Equal(t, "ak", w.Name())
	assert.Equal(t, DefaultPull, w.DefaultPull())
	assert.Equal(t, 500*time.Millisecond, w.InitialDuration())
	assert.Equal(t, DefaultSteadyPull, w.SteadyPull())
	assert.Equal(t, 8*time.Millisecond, w.SleepTime())
	assert.Equal(t, DefaultAcceleration, w.Acceleration())
	assert.Equal(t, CurveLinear, w.CurveKind())
}

func TestNewValidation(t *testing.T) {
	cases := map[string]Spec{
		"missing name":     {},
		"negative sleep":   {Name: "x", SleepTime: fp(-1)},
		"negative initial": {Name: "x", InitialDuration: fp(-0.1)},
		"nan pull":         {Name: "x", DefaultPull: fp(math.NaN())},
		"inf accel":        {Name: "x", Acceleration: fp(math.Inf(1))},
		"bad curve":        {Name: "x", Curve: "zigzag"},
		"short point":      {Name: "x", Points: [][]float64{{1}}},
		"unsorted points":  {Name: "x", Points: [][]float64{{5, 1}, {2, 1}}},
	}
	for name, spec := range cases {
		_, err := New(spec)
		assert.Error(t, err, name)
	}
}

func TestPullPhases(t *testing.T) {
	w, err := New(Spec{Name: "ar", DefaultPull: fp(4), InitialDuration: fp(0.2), SteadyPull: fp(2.2), SleepTime: fp(8), Acceleration: fp(200)})
	require.NoError(t, err)

	assert.Equal(t, PhaseInitial, w.PhaseAt(0))
	assert.Equal(t, PhaseInitial, w.PhaseAt(199*time.Millisecond))
	assert.Equal(t, PhaseSteady, w.PhaseAt(200*time.Millisecond))

	assert.Equal(t, 4.0, w.Pull(PhaseInitial, 0, 0))
	assert.InDelta(t, 4.0*(1+10.0/200), w.Pull(PhaseInitial, 10, 10), 1e-9)
	assert.Equal(t, 2.2, w.Pull(PhaseSteady, 0, 25))
	assert.Equal(t, 0.0, w.Pull(PhaseIdle, 0, 0))
}

func TestCustomCurveOverridesPhases(t *testing.T) {
	w, err := New(Spec{Name: "custom"})
	require.NoError(t, err)
	w = w.WithCurve(CurveFunc(func(n int) float64 { return float64(n) }))

	assert.Equal(t, 7.0, w.Pull(PhaseInitial, 0, 7))
	assert.Equal(t, 30.0, w.Pull(PhaseSteady, 2, 30))
}

func TestSpecRoundTrip(t *testing.T) {
	w, err := New(Spec{Name: "lmg", Curve: "exponential", Points: [][]float64{{0, 3}, {10, 2}}})
	require.NoError(t, err)
	again, err := New(w.Spec())
	require.NoError(t, err)
	assert.Equal(t, w, again)
}

func TestNewSetRejectsDuplicates(t *testing.T) {
	a, _ := New(Spec{Name: "a"})
	_, err := NewSet(a, a)
	assert.Error(t, err)
	_, err = NewSet()
	assert.Error(t, err)

	s, err := NewSet(a)
	require.NoError(t, err)
	i, ok := s.Index("a")
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, []string{"a"}, s.Names())
}
