package viz

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/render"
)

// Terminal plots every drawn curve as an ASCII chart on Close.
type Terminal struct {
	w      io.Writer
	layout render.Layout
	cols   int
	rows   int
	color  bool
	curves []family.Curve
}

// NewTerminal plots into a cols x rows character area.
func NewTerminal(w io.Writer, l render.Layout, cols, rows int) *Terminal {
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 20
	}
	return &Terminal{w: w, layout: l, cols: cols, rows: rows, color: true}
}

// Monochrome disables ANSI series colours.
func (t *Terminal) Monochrome() *Terminal {
	t.color = false
	return t
}

func (t *Terminal) Draw(c family.Curve) error {
	t.curves = append(t.curves, c)
	return nil
}

func (t *Terminal) Close() error {
	if t.w == nil {
		return errors.New("term: nil writer")
	}
	plot := t.Plot()
	if plot == "" {
		return nil
	}
	_, err := fmt.Fprintln(t.w, plot)
	return err
}

// Plot renders the collected curves. Each curve is resampled onto the
// plot's columns; columns past a curve's last sample stay blank.
func (t *Terminal) Plot() string {
	l := t.layout
	var data [][]float64
	var colors []asciigraph.AnsiColor

	order := make([]family.Curve, len(t.curves))
	copy(order, t.curves)
	sort.SliceStable(order, func(i, j int) bool { return order[i].Index < order[j].Index })
	for _, c := range order {
		if c.Len() == 0 {
			continue
		}
		data = append(data, resample(c, l.XMin, l.XMax, t.cols))
		colors = append(colors, ANSIColor(c.Color))
	}
	if len(data) == 0 {
		return ""
	}
	if l.ShowGuide {
		guide := make([]float64, t.cols)
		for i := range guide {
			guide[i] = l.K
		}
		data = append(data, guide)
		colors = append(colors, ANSIColor(l.Guide))
	}

	opts := []asciigraph.Option{
		asciigraph.Height(t.rows),
		asciigraph.LowerBound(l.YMin),
		asciigraph.UpperBound(l.YMax),
		asciigraph.Precision(2),
	}
	caption := l.Title
	if caption == "" {
		caption = fmt.Sprintf("x(t), %d curves, K=%g", len(order), l.K)
	}
	opts = append(opts, asciigraph.Caption(caption))
	if t.color {
		opts = append(opts, asciigraph.SeriesColors(colors...))
	}
	return asciigraph.PlotMany(data, opts...)
}

// resample linearly interpolates c at cols evenly spaced times in [lo, hi].
func resample(c family.Curve, lo, hi float64, cols int) []float64 {
	out := make([]float64, cols)
	ts, xs := c.Times(), c.Values()
	j := 0
	for i := range out {
		t := lo
		if cols > 1 {
			t = lo + (hi-lo)*float64(i)/float64(cols-1)
		}
		if t < ts[0] || t > ts[len(ts)-1] {
			out[i] = math.NaN()
			continue
		}
		for j+1 < len(ts) && ts[j+1] < t {
			j++
		}
		if j+1 == len(ts) || ts[j+1] == ts[j] {
			out[i] = xs[j]
			continue
		}
		f := (t - ts[j]) / (ts[j+1] - ts[j])
		out[i] = xs[j] + f*(xs[j+1]-xs[j])
	}
	return out
}

// ANSIColor picks the nearest colour of the xterm 6x6x6 cube.
func ANSIColor(c colorful.Color) asciigraph.AnsiColor {
	r, g, b := c.Clamped().RGB255()
	level := func(v uint8) int { return int(math.Round(float64(v) / 255 * 5)) }
	return asciigraph.AnsiColor(16 + 36*level(r) + 6*level(g) + level(b))
}
