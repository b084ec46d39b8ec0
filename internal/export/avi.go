package export

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/render"
)

// AVI streams frames into a Motion-JPEG video as they complete.
type AVI struct {
	aw      mjpeg.AviWriter
	layout  render.Layout
	quality int
	curves  []family.Curve
	buf     bytes.Buffer
	frames  int
}

func NewAVI(path string, l render.Layout, fps int) (*AVI, error) {
	if fps <= 0 {
		fps = 30
	}
	aw, err := mjpeg.New(path, int32(l.Width), int32(l.Height), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("open avi: %w", err)
	}
	return &AVI{aw: aw, layout: l, quality: 90}, nil
}

func (a *AVI) BeginFrame(int) error {
	a.curves = a.curves[:0]
	return nil
}

func (a *AVI) Draw(c family.Curve) error {
	a.curves = append(a.curves, c)
	return nil
}

func (a *AVI) EndFrame() error {
	img, err := rasterize(a.layout, a.curves)
	if err != nil {
		return err
	}
	a.buf.Reset()
	if err := jpeg.Encode(&a.buf, img, &jpeg.Options{Quality: a.quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := a.aw.AddFrame(a.buf.Bytes()); err != nil {
		return fmt.Errorf("add frame: %w", err)
	}
	a.frames++
	return nil
}

func (a *AVI) Frames() int { return a.frames }

func (a *AVI) Close() error {
	if a.frames == 0 {
		if err := a.EndFrame(); err != nil {
			a.aw.Close()
			return err
		}
	}
	return a.aw.Close()
}
