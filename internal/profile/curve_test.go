package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactorMonotoneAndDeterministic(t *testing.T) {
	for _, kind := range []CurveKind{CurveLinear, CurveExponential} {
		for _, a := range []float64{-1, 0, 0.5, 1, 50, 200, 1e6} {
			prev := 0.0
			for n := 0; n < 2000; n++ {
				f := Factor(kind, n, a)
				assert.Equal(t, f, Factor(kind, n, a))
				if f < prev {
					t.Fatalf("%s a=%v: f(%d)=%v < f(%d)=%v", kind, a, n, f, n-1, prev)
				}
				assert.LessOrEqual(t, f, MaxFactor)
				prev = f
			}
		}
	}
}

func TestFactorValues(t *testing.T) {
	assert.Equal(t, 1.0, Factor(CurveLinear, 0, 200))
	assert.InDelta(t, 1.5, Factor(CurveLinear, 100, 200), 1e-9)
	assert.Equal(t, 1.0, Factor(CurveLinear, 100, 0), "a <= 0 disables acceleration")
	assert.InDelta(t, 1.21, Factor(CurveExponential, 2, 10), 1e-9)
	assert.Equal(t, MaxFactor, Factor(CurveExponential, 100000, 1))
}

func TestPointsCurve(t *testing.T) {
	p := Points{{0, 4}, {10, 2}, {20, 2}}
	assert.Equal(t, 4.0, p.Pull(-3))
	assert.Equal(t, 4.0, p.Pull(0))
	assert.InDelta(t, 3.0, p.Pull(5), 1e-9)
	assert.Equal(t, 2.0, p.Pull(15))
	assert.Equal(t, 2.0, p.Pull(500))
	assert.Equal(t, 0.0, Points{}.Pull(3))

	assert.Error(t, Points{{5, 1}, {1, 1}}.validate())
}

func TestParseCurveKind(t *testing.T) {
	k, err := ParseCurveKind("")
	assert.NoError(t, err)
	assert.Equal(t, CurveLinear, k)
	k, err = ParseCurveKind("Exponential")
	assert.NoError(t, err)
	assert.Equal(t, CurveExponential, k)
	_, err = ParseCurveKind("quadratic")
	assert.Error(t, err)
}
