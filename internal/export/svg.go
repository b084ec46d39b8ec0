package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/render"
)

const (
	marginLeft   = 60
	marginRight  = 30
	marginTop    = 40
	marginBottom = 50
)

// SVG collects curves and writes a vector figure on Close.
type SVG struct {
	w      io.Writer
	layout render.Layout
	curves []family.Curve
}

func NewSVG(w io.Writer, l render.Layout) *SVG {
	return &SVG{w: w, layout: l}
}

func (s *SVG) Draw(c family.Curve) error {
	s.curves = append(s.curves, c)
	return nil
}

func (s *SVG) Close() error {
	if s.w == nil {
		return fmt.Errorf("svg: nil writer")
	}
	ew := &errWriter{w: s.w}
	writeSVG(svg.New(ew), s.layout, s.curves)
	return ew.err
}

// plotBox is the pixel rectangle holding the data window.
type plotBox struct {
	x, y, w, h int
}

func (b plotBox) project(l render.Layout, t, x float64) (int, int) {
	px, py := l.Project(t, x, float64(b.w), float64(b.h))
	return b.x + int(math.Round(px)), b.y + int(math.Round(py))
}

func writeSVG(canvas *svg.SVG, l render.Layout, curves []family.Curve) {
	box := plotBox{
		x: marginLeft,
		y: marginTop,
		w: l.Width - marginLeft - marginRight,
		h: l.Height - marginTop - marginBottom,
	}
	fg := l.Foreground.Hex()

	canvas.Start(l.Width, l.Height)
	if l.Title != "" {
		canvas.Title(l.Title)
	}
	canvas.Rect(0, 0, l.Width, l.Height, "fill:"+l.Background.Hex())

	canvas.Def()
	canvas.ClipPath(`id="plot"`)
	canvas.Rect(box.x, box.y, box.w, box.h)
	canvas.ClipEnd()
	canvas.DefEnd()

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:1;fill:none", fg))
	canvas.Line(box.x, box.y+box.h, box.x+box.w, box.y+box.h)
	canvas.Line(box.x, box.y, box.x, box.y+box.h)
	canvas.Gend()

	canvas.Gstyle(fmt.Sprintf("fill:%s;font-family:sans-serif;font-size:11px", fg))
	for _, v := range render.Ticks(l.XMin, l.XMax, l.XStep) {
		px, py := box.project(l, v, l.YMin)
		canvas.Line(px, py, px, py+4, "stroke:"+fg)
		canvas.Text(px, py+16, fmt.Sprintf("%g", v), "text-anchor:middle")
	}
	for _, v := range render.Ticks(l.YMin, l.YMax, l.YStep) {
		px, py := box.project(l, l.XMin, v)
		canvas.Line(px-4, py, px, py, "stroke:"+fg)
		canvas.Text(px-7, py+4, fmt.Sprintf("%g", v), "text-anchor:end")
	}
	if l.XLabel != "" {
		canvas.Text(box.x+box.w/2, l.Height-12, l.XLabel, "text-anchor:middle")
	}
	if l.YLabel != "" {
		canvas.Text(16, box.y+box.h/2, l.YLabel, "text-anchor:middle;writing-mode:tb")
	}
	if l.Title != "" {
		canvas.Text(l.Width/2, 24, l.Title, "text-anchor:middle;font-size:14px")
	}
	canvas.Gend()

	canvas.Group(`clip-path="url(#plot)"`)
	if l.Grid {
		canvas.Gstyle("stroke:#808080;stroke-width:0.5;stroke-dasharray:4,4")
		for _, v := range render.Ticks(l.XMin, l.XMax, l.XStep) {
			px, _ := box.project(l, v, 0)
			canvas.Line(px, box.y, px, box.y+box.h)
		}
		for _, v := range render.Ticks(l.YMin, l.YMax, l.YStep) {
			_, py := box.project(l, 0, v)
			canvas.Line(box.x, py, box.x+box.w, py)
		}
		canvas.Gend()
	}

	width := l.LineWidth
	if width <= 0 {
		width = 1
	}
	for _, c := range curves {
		if c.Len() < 2 {
			continue
		}
		xs := make([]int, 0, c.Len())
		ys := make([]int, 0, c.Len())
		for t, x := range c.All() {
			px, py := box.project(l, t, x)
			xs = append(xs, px)
			ys = append(ys, py)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", c.Color.Hex(), width))
	}

	if l.ShowGuide {
		x1, y1 := box.project(l, l.XMin, l.K)
		x2, y2 := box.project(l, l.XMax, l.K)
		canvas.Line(x1, y1, x2, y2, fmt.Sprintf("stroke:%s;stroke-width:1.5;stroke-dasharray:6,4", l.Guide.Hex()))
	}
	canvas.Gend()
	canvas.End()
}

// errWriter remembers the first write error; svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
