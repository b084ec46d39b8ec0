package render

import (
	"context"
	"math"

	"github.com/go-logr/logr"
	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/logging"
)

// Stats summarises one driver pass.
type Stats struct {
	Frames   int
	Draws    int
	Restarts int
}

// SceneOptions controls the declarative scene driver. Durations are in
// seconds and become frame counts at FPS.
type SceneOptions struct {
	FPS     int
	Intro   float64 // axes and guide only
	RunTime float64 // per curve creation
	Hold    float64 // all curves, after the last creation
}

func DefaultSceneOptions() SceneOptions {
	return SceneOptions{FPS: 30, Intro: 1, RunTime: 0.6, Hold: 2}
}

func (o SceneOptions) frames(seconds float64) int {
	if o.FPS <= 0 || seconds <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(o.FPS)))
}

type driver struct {
	ctx   context.Context
	log   logr.Logger
	r     CurveRenderer
	fr    FrameRenderer
	stats Stats
}

func newDriver(ctx context.Context, r CurveRenderer) *driver {
	d := &driver{ctx: ctx, log: logging.FromContext(ctx), r: r}
	d.fr, _ = r.(FrameRenderer)
	return d
}

func (d *driver) draw(c family.Curve) error {
	d.stats.Draws++
	return d.r.Draw(c)
}

// frame renders curves as one frame. Context cancellation is checked
// between frames only.
func (d *driver) frame(curves []family.Curve) error {
	if err := d.ctx.Err(); err != nil {
		return err
	}
	i := d.stats.Frames
	if err := d.fr.BeginFrame(i); err != nil {
		return &FrameError{Frame: i, Wrapped: err}
	}
	for _, c := range curves {
		if err := d.draw(c); err != nil {
			return &FrameError{Frame: i, Wrapped: err}
		}
	}
	if err := d.fr.EndFrame(); err != nil {
		return &FrameError{Frame: i, Wrapped: err}
	}
	d.stats.Frames++
	return nil
}

// Scene plays the family the way a scene toolkit would: guide first, then
// each curve created in order while earlier ones stay on screen.
func Scene(ctx context.Context, fam *family.Family, r CurveRenderer, opts SceneOptions) (Stats, error) {
	if fam == nil || len(fam.Curves) == 0 || fam.Len() == 0 {
		return Stats{}, ErrEmptyFamily
	}
	d := newDriver(ctx, r)

	if d.fr == nil {
		for _, c := range fam.Curves {
			if err := ctx.Err(); err != nil {
				return d.stats, err
			}
			if err := d.draw(c); err != nil {
				return d.stats, err
			}
		}
		d.log.V(logging.DEBUG).Info("scene drawn", "curves", len(fam.Curves))
		return d.stats, nil
	}

	for i := 0; i < opts.frames(opts.Intro); i++ {
		if err := d.frame(nil); err != nil {
			return d.stats, err
		}
	}

	steps := max(1, opts.frames(opts.RunTime))
	n := fam.Len()
	shown := make([]family.Curve, 0, len(fam.Curves))
	for _, c := range fam.Curves {
		for s := 1; s <= steps; s++ {
			k := int(math.Ceil(float64(s) * float64(n) / float64(steps)))
			partial := c
			partial.Curve = c.Prefix(k)
			if err := d.frame(append(shown, partial)); err != nil {
				return d.stats, err
			}
		}
		shown = append(shown, c)
	}

	for i := 0; i < opts.frames(opts.Hold); i++ {
		if err := d.frame(shown); err != nil {
			return d.stats, err
		}
	}
	d.log.V(logging.DEBUG).Info("scene played", "curves", len(fam.Curves), "frames", d.stats.Frames)
	return d.stats, nil
}

// FramesOptions controls the frame-update driver.
type FramesOptions struct {
	// Stride advances this many samples per frame.
	Stride int
	// Loops bounds the number of passes so offline output terminates.
	Loops int
	// Tolerance triggers a restart once every curve is this close to K.
	// Zero disables early restarts.
	Tolerance float64
}

func DefaultFramesOptions() FramesOptions {
	return FramesOptions{Stride: 1, Loops: 1, Tolerance: 1e-3}
}

// Frames recomputes every curve's visible prefix on each frame. A pass
// restarts early once all curves have numerically reached K; that policy
// belongs to presentation and never alters the curves themselves.
func Frames(ctx context.Context, fam *family.Family, r CurveRenderer, opts FramesOptions) (Stats, error) {
	if fam == nil || len(fam.Curves) == 0 || fam.Len() == 0 {
		return Stats{}, ErrEmptyFamily
	}
	d := newDriver(ctx, r)
	n := fam.Len()

	if d.fr == nil {
		for _, c := range fam.Frame(n) {
			if err := ctx.Err(); err != nil {
				return d.stats, err
			}
			if err := d.draw(c); err != nil {
				return d.stats, err
			}
		}
		return d.stats, nil
	}

	stride := max(1, opts.Stride)
	loops := max(1, opts.Loops)
	for loop := 0; loop < loops; loop++ {
		for i := 1; i <= n; i += stride {
			if err := d.frame(fam.Frame(i)); err != nil {
				return d.stats, err
			}
			if opts.Tolerance > 0 && i < n && fam.AllReached(i-1, opts.Tolerance) {
				d.stats.Restarts++
				d.log.V(logging.TRACE).Info("all curves at capacity, restarting", "frame", d.stats.Frames, "sample", i)
				break
			}
		}
	}
	d.log.V(logging.DEBUG).Info("frames played", "frames", d.stats.Frames, "restarts", d.stats.Restarts)
	return d.stats, nil
}
