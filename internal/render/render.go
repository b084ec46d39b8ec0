// Package render defines the single capability every visual backend offers
// and the two drivers that feed curve families through it.
package render

import (
	"errors"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/logigrowth/internal/family"
)

var (
	// ErrEmptyFamily indicates a family without curves or samples.
	ErrEmptyFamily = errors.New("render: family has no curves to draw")

	// ErrUnknownRenderer indicates a renderer name the registry does not know.
	ErrUnknownRenderer = errors.New("render: unknown renderer")
)

// FrameError wraps a backend failure with the frame it happened on.
type FrameError struct {
	Frame   int
	Wrapped error
}

func (e *FrameError) Error() string {
	return e.Wrapped.Error()
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}

// CurveRenderer draws one curve onto whatever surface it manages.
type CurveRenderer interface {
	Draw(c family.Curve) error
}

// FrameRenderer is implemented by animated backends. Draw calls between
// BeginFrame and EndFrame compose a single frame.
type FrameRenderer interface {
	CurveRenderer
	BeginFrame(i int) error
	EndFrame() error
}

// Closer flushes and releases a backend's output.
type Closer interface {
	Close() error
}

// Layout describes axes and styling of a figure. It replaces global
// figure state; one Layout covers one run.
type Layout struct {
	Width, Height int

	XMin, XMax float64
	YMin, YMax float64
	XStep      float64
	YStep      float64

	K         float64
	ShowGuide bool
	Grid      bool

	Title  string
	XLabel string
	YLabel string

	Background colorful.Color
	Foreground colorful.Color
	Guide      colorful.Color
	LineWidth  float64
}

// DefaultLayout matches the scene preset's axes.
func DefaultLayout() Layout {
	return Layout{
		Width:      960,
		Height:     540,
		XMin:       0,
		XMax:       15,
		YMin:       0,
		YMax:       2.3,
		XStep:      1,
		YStep:      0.2,
		K:          1,
		ShowGuide:  true,
		XLabel:     "t",
		YLabel:     "x(t)",
		Background: colorful.Color{R: 0, G: 0, B: 0},
		Foreground: colorful.Color{R: 1, G: 1, B: 1},
		Guide:      colorful.Color{R: 1, G: 0, B: 0},
		LineWidth:  2,
	}
}

// Project maps data coordinates to pixel coordinates with y pointing down.
func (l Layout) Project(t, x float64, w, h float64) (float64, float64) {
	xr := l.XMax - l.XMin
	yr := l.YMax - l.YMin
	if xr == 0 {
		xr = 1
	}
	if yr == 0 {
		yr = 1
	}
	px := (t - l.XMin) / xr * w
	py := h - (x-l.YMin)/yr*h
	return px, py
}

// Ticks returns axis tick positions from min to max inclusive.
func Ticks(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	n := int((hi-lo)/step + 1e-9)
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, lo+float64(i)*step)
	}
	return out
}
