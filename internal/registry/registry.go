// Package registry maps renderer names onto their constructors.
package registry

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/san-kum/logigrowth/internal/export"
	"github.com/san-kum/logigrowth/internal/render"
	"github.com/san-kum/logigrowth/internal/viz"
)

// Options carries everything a back-end may need. File back-ends write to
// Out; the AVI encoder owns its file and needs Path.
type Options struct {
	Layout     render.Layout
	Out        io.Writer
	Path       string
	FPS        int
	Cols, Rows int
}

type Factory func(Options) (render.CurveRenderer, error)

type Registry struct {
	renderers map[string]Factory
	exts      map[string]string
}

func New() *Registry {
	r := &Registry{
		renderers: make(map[string]Factory),
		exts:      make(map[string]string),
	}

	r.Register("svg", ".svg", func(o Options) (render.CurveRenderer, error) {
		if o.Out == nil {
			return nil, errors.New("svg: no output writer")
		}
		return export.NewSVG(o.Out, o.Layout), nil
	})
	r.Register("png", ".png", func(o Options) (render.CurveRenderer, error) {
		if o.Out == nil {
			return nil, errors.New("png: no output writer")
		}
		return export.NewPNG(o.Out, o.Layout), nil
	})
	r.Register("gif", ".gif", func(o Options) (render.CurveRenderer, error) {
		if o.Out == nil {
			return nil, errors.New("gif: no output writer")
		}
		return export.NewGIF(o.Out, o.Layout, o.FPS), nil
	})
	r.Register("avi", ".avi", func(o Options) (render.CurveRenderer, error) {
		if o.Path == "" {
			return nil, errors.New("avi: output path required")
		}
		return export.NewAVI(o.Path, o.Layout, o.FPS)
	})
	r.Register("term", "", func(o Options) (render.CurveRenderer, error) {
		if o.Out == nil {
			return nil, errors.New("term: no output writer")
		}
		return viz.NewTerminal(o.Out, o.Layout, o.Cols, o.Rows), nil
	})

	return r
}

// Register adds or replaces a renderer. ext may be empty.
func (r *Registry) Register(name, ext string, f Factory) {
	r.renderers[name] = f
	if ext != "" {
		r.exts[strings.ToLower(ext)] = name
	}
}

func (r *Registry) Get(name string, o Options) (render.CurveRenderer, error) {
	fn, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", render.ErrUnknownRenderer, name)
	}
	return fn(o)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForPath infers the renderer from an output file extension.
func (r *Registry) ForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name, ok := r.exts[ext]
	if !ok {
		return "", fmt.Errorf("%w: no renderer for %q", render.ErrUnknownRenderer, ext)
	}
	return name, nil
}

// Animated reports whether the renderer composes frames.
func Animated(cr render.CurveRenderer) bool {
	_, ok := cr.(render.FrameRenderer)
	return ok
}
