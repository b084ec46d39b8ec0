// Package growth evaluates the closed-form solution of the logistic equation
//
//	dx/dt = a x (1 - x/K)
//
// for a given initial condition:
//
//	x(t) = K' K e^{at} / (1 + K' e^{at}),   K' = x0 / (K - x0)
//
// Every function here is pure and may be called from any goroutine.
package growth

import (
	"fmt"
	"math"
)

// Evaluate returns x(t) for the curve fixed by kPrime.
//
// When K' e^{at} leaves the float64 range the closed-form limit K is
// returned instead of Inf/Inf. The ratio is taken before scaling by K so a
// large finite K' e^{at} saturates to K rather than overflowing. Other IEEE
// results pass through untouched.
func Evaluate(t, k, kPrime, a float64) float64 {
	e := math.Exp(a * t)
	q := kPrime * e
	if math.IsInf(q, 0) {
		return k
	}
	return k * (q / (1 + q))
}

// EvaluateSeries evaluates every t in ts, preserving order and length.
func EvaluateSeries(ts []float64, k, kPrime, a float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = Evaluate(t, k, kPrime, a)
	}
	return out
}

// IntegrationConstant returns K' = x0/(K-x0). x0 == K has no solution in
// this parameterisation and yields a *DegenerateInputError.
func IntegrationConstant(x0, k float64) (float64, error) {
	if x0 == k {
		return 0, &DegenerateInputError{X0: x0, K: k}
	}
	return x0 / (k - x0), nil
}

// Linspace returns n evenly spaced samples over [start, stop], both ends
// included, matching numpy.linspace for ascending ranges.
func Linspace(start, stop float64, n int) ([]float64, error) {
	if n < 1 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil, fmt.Errorf("%w: n=%d start=%g stop=%g", ErrInvalidSamples, n, start, stop)
	}
	if n == 1 {
		return []float64{start}, nil
	}
	if !(stop > start) {
		return nil, fmt.Errorf("%w: stop %g must exceed start %g", ErrInvalidSamples, stop, start)
	}
	step := (stop - start) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out, nil
}
