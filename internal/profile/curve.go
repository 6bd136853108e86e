package profile

import (
	"fmt"
	"math"
	"strings"
)

// CurveKind names a built-in acceleration law.
type CurveKind string

const (
	CurveLinear      CurveKind = "linear"
	CurveExponential CurveKind = "exponential"
)

// MaxFactor caps the acceleration factor so long sprays cannot run away.
const MaxFactor = 16.0

// ParseCurveKind accepts "", "linear" or "exponential" (case-insensitive).
func ParseCurveKind(s string) (CurveKind, error) {
	switch k := CurveKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return CurveLinear, nil
	case CurveLinear, CurveExponential:
		return k, nil
	}
	return "", fmt.Errorf("unknown curve %q", s)
}

// Factor is the acceleration multiplier after n cycles of a phase with acceleration a.
//
//	linear:      1 + n/a
//	exponential: (1 + 1/a)^n
//
// a <= 0 disables acceleration. The result is deterministic and non-decreasing in n.
func Factor(kind CurveKind, n int, a float64) float64 {
	if a <= 0 || n <= 0 {
		return 1
	}
	var f float64
	switch kind {
	case CurveExponential:
		f = math.Pow(1+1/a, float64(n))
	default:
		f = 1 + float64(n)/a
	}
	if f > MaxFactor || math.IsNaN(f) {
		return MaxFactor
	}
	return f
}

// PullCurve maps the number of cycles since activation to a vertical pull in pixels.
// A weapon with a PullCurve ignores its phase parameters.
type PullCurve interface {
	Pull(cycles int) float64
}

// CurveFunc adapts a function to PullCurve.
type CurveFunc func(cycles int) float64

func (f CurveFunc) Pull(cycles int) float64 { return f(cycles) }

// Points is a piecewise-linear PullCurve through (cycle, pull) points sorted by cycle.
// Before the first point and after the last the curve is flat.
type Points [][2]float64

// Pull interpolates linearly between the points around cycles.
func (p Points) Pull(cycles int) float64 {
	if len(p) == 0 {
		return 0
	}
	x := float64(cycles)
	if x <= p[0][0] {
		return p[0][1]
	}
	for i := 1; i < len(p); i++ {
		if x <= p[i][0] {
			x0, y0 := p[i-1][0], p[i-1][1]
			x1, y1 := p[i][0], p[i][1]
			if x1 == x0 {
				return y1
			}
			return y0 + (y1-y0)*(x-x0)/(x1-x0)
		}
	}
	return p[len(p)-1][1]
}

func (p Points) validate() error {
	for i, pt := range p {
		if math.IsNaN(pt[0]) || math.IsInf(pt[0], 0) || math.IsNaN(pt[1]) || math.IsInf(pt[1], 0) {
			return fmt.Errorf("curve point %d is not finite", i)
		}
		if i > 0 && pt[0] < p[i-1][0] {
			return fmt.Errorf("curve points must be sorted by cycle (point %d)", i)
		}
	}
	return nil
}
