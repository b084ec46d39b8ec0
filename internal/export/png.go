package export

import (
	"io"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/render"
)

// PNG collects curves and writes a single chart image on Close.
type PNG struct {
	w      io.Writer
	layout render.Layout
	curves []family.Curve
}

func NewPNG(w io.Writer, l render.Layout) *PNG {
	return &PNG{w: w, layout: l}
}

func (p *PNG) Draw(c family.Curve) error {
	p.curves = append(p.curves, c)
	return nil
}

func (p *PNG) Close() error {
	return writePNG(p.w, p.layout, p.curves)
}
