package family

import (
	"fmt"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// PaletteScheme names a colour ramp.
type PaletteScheme string

const (
	SchemeRainbow PaletteScheme = "rainbow"
	SchemeHue     PaletteScheme = "hue"
)

var schemes = map[PaletteScheme]func(x float64) colorful.Color{
	SchemeRainbow: rainbow,
	SchemeHue: func(x float64) colorful.Color {
		return colorful.Hsv(300*x, 1, 1)
	},
}

// Schemes lists the supported palette names.
func Schemes() []string {
	names := make([]string, 0, len(schemes))
	for s := range schemes {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// rainbow mirrors matplotlib's "rainbow" colormap: purple at 0, red at 1.
func rainbow(x float64) colorful.Color {
	c := colorful.Color{
		R: math.Abs(2*x - 0.5),
		G: math.Sin(math.Pi * x),
		B: math.Cos(math.Pi * x / 2),
	}
	return c.Clamped()
}

// Palette holds one colour per curve, indexed like the curves themselves.
type Palette []colorful.Color

// NewPalette samples scheme at n evenly spaced points of [0, 1].
func NewPalette(scheme PaletteScheme, n int) (Palette, error) {
	fn, ok := schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("unknown palette: %s (available: %v)", scheme, Schemes())
	}
	if n < 0 {
		return nil, fmt.Errorf("palette size must be non-negative, got %d", n)
	}
	p := make(Palette, n)
	for i := range p {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		p[i] = fn(x)
	}
	return p, nil
}

// Hex returns the colours as #rrggbb strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}
