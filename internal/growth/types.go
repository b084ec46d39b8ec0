package growth

import (
	"fmt"
	"iter"
	"math"
)

// Params fixes one logistic family.
type Params struct {
	K float64 // carrying capacity
	A float64 // intrinsic growth rate
}

func (p Params) Validate() error {
	if !(p.K > 0) || math.IsInf(p.K, 1) {
		return fmt.Errorf("%w: K=%g", ErrNonPositiveCapacity, p.K)
	}
	if math.IsNaN(p.A) || math.IsInf(p.A, 0) {
		return fmt.Errorf("growth: growth rate must be finite, got %g", p.A)
	}
	return nil
}

// Curve is one solution of the family sampled at a fixed ordered set of
// times. Values are computed on every iteration; nothing is cached, so a
// Curve can be walked any number of times.
type Curve struct {
	Params Params
	X0     float64
	KPrime float64
	times  []float64
}

// NewCurve derives the integration constant for x0 and binds the curve to ts.
// ts is shared, not copied; callers must not mutate it afterwards.
func NewCurve(p Params, x0 float64, ts []float64) (Curve, error) {
	if err := p.Validate(); err != nil {
		return Curve{}, err
	}
	kp, err := IntegrationConstant(x0, p.K)
	if err != nil {
		return Curve{}, err
	}
	return Curve{Params: p, X0: x0, KPrime: kp, times: ts}, nil
}

func (c Curve) Len() int { return len(c.times) }

// At returns the i-th sample pair.
func (c Curve) At(i int) (float64, float64) {
	t := c.times[i]
	return t, Evaluate(t, c.Params.K, c.KPrime, c.Params.A)
}

// All yields (t, x(t)) in time order.
func (c Curve) All() iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		for _, t := range c.times {
			if !yield(t, Evaluate(t, c.Params.K, c.KPrime, c.Params.A)) {
				return
			}
		}
	}
}

// Prefix returns the curve restricted to its first n samples.
func (c Curve) Prefix(n int) Curve {
	if n < 0 {
		n = 0
	}
	if n > len(c.times) {
		n = len(c.times)
	}
	c.times = c.times[:n:n]
	return c
}

// Times returns a copy of the sample times.
func (c Curve) Times() []float64 {
	out := make([]float64, len(c.times))
	copy(out, c.times)
	return out
}

func (c Curve) Values() []float64 {
	return EvaluateSeries(c.times, c.Params.K, c.KPrime, c.Params.A)
}

// Point is a single sample.
type Point struct {
	T, X float64
}

func (c Curve) Points() []Point {
	pts := make([]Point, 0, len(c.times))
	for t, x := range c.All() {
		pts = append(pts, Point{T: t, X: x})
	}
	return pts
}

// Final returns the last sample value, or x0 for an empty curve.
func (c Curve) Final() float64 {
	if len(c.times) == 0 {
		return c.X0
	}
	_, x := c.At(len(c.times) - 1)
	return x
}
