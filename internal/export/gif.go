package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/render"
)

// GIF is an animated backend: every frame becomes a chart rasterised onto
// the Plan9 palette. The file is encoded on Close.
type GIF struct {
	w      io.Writer
	layout render.Layout
	delay  int
	curves []family.Curve
	anim   gif.GIF
}

// NewGIF writes frames at roughly fps frames per second. GIF delays are
// whole centiseconds, so very high rates are rounded.
func NewGIF(w io.Writer, l render.Layout, fps int) *GIF {
	delay := 2
	if fps > 0 {
		delay = max(1, 100/fps)
	}
	return &GIF{w: w, layout: l, delay: delay, anim: gif.GIF{LoopCount: 0}}
}

func (g *GIF) BeginFrame(int) error {
	g.curves = g.curves[:0]
	return nil
}

func (g *GIF) Draw(c family.Curve) error {
	g.curves = append(g.curves, c)
	return nil
}

func (g *GIF) EndFrame() error {
	img, err := rasterize(g.layout, g.curves)
	if err != nil {
		return err
	}
	b := img.Bounds()
	frame := image.NewPaletted(b, palette.Plan9)
	draw.Draw(frame, b, img, b.Min, draw.Src)
	g.anim.Image = append(g.anim.Image, frame)
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

// Frames is the number of frames recorded so far.
func (g *GIF) Frames() int { return len(g.anim.Image) }

func (g *GIF) Close() error {
	if len(g.anim.Image) == 0 {
		// a static draw without frames still yields one image
		if err := g.EndFrame(); err != nil {
			return err
		}
	}
	if err := gif.EncodeAll(g.w, &g.anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
