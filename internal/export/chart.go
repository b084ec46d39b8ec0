package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	colorful "github.com/lucasb-eyer/go-colorful"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/render"
)

func toDrawing(c colorful.Color) drawing.Color {
	r, g, b := c.Clamped().RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}

func ticks(lo, hi, step float64) []chart.Tick {
	var out []chart.Tick
	for _, v := range render.Ticks(lo, hi, step) {
		out = append(out, chart.Tick{Value: v, Label: fmt.Sprintf("%g", v)})
	}
	return out
}

func gridLines(ts []chart.Tick) []chart.GridLine {
	out := make([]chart.GridLine, len(ts))
	for i, t := range ts {
		out[i] = chart.GridLine{Value: t.Value}
	}
	return out
}

// figure turns a layout and the curves of one frame into a go-chart chart.
// Curves with fewer than two samples are skipped; the guide series is
// always present so the chart has something to range over.
func figure(l render.Layout, curves []family.Curve) chart.Chart {
	fg := toDrawing(l.Foreground)
	axisStyle := chart.Style{StrokeColor: fg, FontColor: fg, FontSize: 10}
	gridStyle := chart.Style{StrokeColor: drawing.ColorFromHex("808080"), StrokeWidth: 0.5, StrokeDashArray: []float64{4, 4}}

	xt := ticks(l.XMin, l.XMax, l.XStep)
	yt := ticks(l.YMin, l.YMax, l.YStep)

	xa := chart.XAxis{
		Name:      l.XLabel,
		NameStyle: axisStyle,
		Style:     axisStyle,
		Range:     &chart.ContinuousRange{Min: l.XMin, Max: l.XMax},
		Ticks:     xt,
	}
	ya := chart.YAxis{
		Name:      l.YLabel,
		NameStyle: axisStyle,
		Style:     axisStyle,
		Range:     &chart.ContinuousRange{Min: l.YMin, Max: l.YMax},
		Ticks:     yt,
	}
	if l.Grid {
		xa.GridMajorStyle, xa.GridLines = gridStyle, gridLines(xt)
		ya.GridMajorStyle, ya.GridLines = gridStyle, gridLines(yt)
	}

	guide := toDrawing(l.Guide)
	if !l.ShowGuide {
		guide = toDrawing(l.Background)
	}
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "K",
			XValues: []float64{l.XMin, l.XMax},
			YValues: []float64{l.K, l.K},
			Style:   chart.Style{StrokeColor: guide, StrokeWidth: 1.5, StrokeDashArray: []float64{6, 4}},
		},
	}
	for _, c := range curves {
		if c.Len() < 2 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("x0=%.3f", c.X0),
			XValues: c.Times(),
			YValues: c.Values(),
			Style:   chart.Style{StrokeColor: toDrawing(c.Color), StrokeWidth: l.LineWidth},
		})
	}

	bg := toDrawing(l.Background)
	return chart.Chart{
		Title:      l.Title,
		TitleStyle: chart.Style{FontColor: fg, FontSize: 12},
		Width:      l.Width,
		Height:     l.Height,
		Background: chart.Style{FillColor: bg, Padding: chart.Box{Top: 30, Left: 20, Right: 20, Bottom: 10}},
		Canvas:     chart.Style{FillColor: bg},
		XAxis:      xa,
		YAxis:      ya,
		Series:     series,
	}
}

func writePNG(w io.Writer, l render.Layout, curves []family.Curve) error {
	graph := figure(l, curves)
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// rasterize renders one frame to an in-memory image.
func rasterize(l render.Layout, curves []family.Curve) (image.Image, error) {
	var buf bytes.Buffer
	if err := writePNG(&buf, l, curves); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}
