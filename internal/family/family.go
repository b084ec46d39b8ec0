// Package family sweeps initial conditions into a set of coloured curves.
package family

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/logigrowth/internal/growth"
)

// Curve is one member of a family together with its display colour.
type Curve struct {
	growth.Curve
	Index int
	Color colorful.Color
}

// Family is the immutable result of a sweep. Curves follow the order of
// the initial conditions it was generated from.
type Family struct {
	Params  growth.Params
	Times   []float64
	Curves  []Curve
	Palette Palette
}

// Generate builds one curve per initial condition. A degenerate x0 aborts
// the sweep; callers that may hit K exactly filter with FilterDegenerate.
func Generate(p growth.Params, initial []float64, ts []float64, scheme PaletteScheme) (*Family, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: no time samples", growth.ErrInvalidSamples)
	}
	pal, err := NewPalette(scheme, len(initial))
	if err != nil {
		return nil, err
	}

	times := make([]float64, len(ts))
	copy(times, ts)

	f := &Family{
		Params:  p,
		Times:   times,
		Curves:  make([]Curve, 0, len(initial)),
		Palette: pal,
	}
	for i, x0 := range initial {
		c, err := growth.NewCurve(p, x0, times)
		if err != nil {
			return nil, fmt.Errorf("initial condition %d: %w", i, err)
		}
		f.Curves = append(f.Curves, Curve{Curve: c, Index: i, Color: pal[i]})
	}
	return f, nil
}

// FilterDegenerate returns initial without the values equal to k.
func FilterDegenerate(initial []float64, k float64) []float64 {
	out := make([]float64, 0, len(initial))
	for _, x0 := range initial {
		if x0 != k {
			out = append(out, x0)
		}
	}
	return out
}

// Len is the number of samples per curve.
func (f *Family) Len() int { return len(f.Times) }

// Frame returns every curve cut to its first i samples.
func (f *Family) Frame(i int) []Curve {
	out := make([]Curve, len(f.Curves))
	for j, c := range f.Curves {
		c.Curve = c.Curve.Prefix(i)
		out[j] = c
	}
	return out
}

// AllReached reports whether every curve sits within tol of K at sample i.
func (f *Family) AllReached(i int, tol float64) bool {
	if len(f.Curves) == 0 {
		return false
	}
	for _, c := range f.Curves {
		if !growth.Reached(c.Curve, i, tol) {
			return false
		}
	}
	return true
}

// Bounds returns the smallest and largest sampled value across the family.
func (f *Family) Bounds() (lo, hi float64) {
	first := true
	for _, c := range f.Curves {
		for _, x := range c.All() {
			if first {
				lo, hi = x, x
				first = false
				continue
			}
			lo = min(lo, x)
			hi = max(hi, x)
		}
	}
	return lo, hi
}
