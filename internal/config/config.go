package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/growth"
	"github.com/san-kum/logigrowth/internal/render"
)

const (
	DefaultK         = 1.0
	DefaultA         = 0.5
	DefaultX0Start   = 0.1
	DefaultX0Stop    = 2.0
	DefaultX0Count   = 35
	DefaultTStop     = 15.0
	DefaultSamples   = 300
	DefaultFPS       = 30
	DefaultRunTime   = 0.6
	DefaultHold      = 2.0
	DefaultTolerance = 1e-3
)

type Config struct {
	Preset    string       `yaml:"preset" env:"PRESET"`
	K         float64      `yaml:"k" env:"K"`
	A         float64      `yaml:"a" env:"A"`
	Initial   SweepConfig  `yaml:"initial" envPrefix:"X0_"`
	Time      SweepConfig  `yaml:"time" envPrefix:"T_"`
	Palette   string       `yaml:"palette" env:"PALETTE"`
	Renderer  string       `yaml:"renderer" env:"RENDERER"`
	Output    string       `yaml:"output" env:"OUTPUT"`
	Mode      string       `yaml:"mode" env:"MODE"`
	FPS       int          `yaml:"fps" env:"FPS"`
	Intro     float64      `yaml:"intro" env:"INTRO"`
	RunTime   float64      `yaml:"run_time" env:"RUN_TIME"`
	Hold      float64      `yaml:"hold" env:"HOLD"`
	Loops     int          `yaml:"loops" env:"LOOPS"`
	Stride    int          `yaml:"stride" env:"STRIDE"`
	Tolerance float64      `yaml:"tolerance" env:"TOLERANCE"`
	Theme     string       `yaml:"theme" env:"THEME"`
	Figure    FigureConfig `yaml:"figure" envPrefix:"FIG_"`
	Log       LogConfig    `yaml:"log" envPrefix:"LOG_"`
}

// SweepConfig is an evenly spaced range: Count samples over [Start, Stop].
type SweepConfig struct {
	Start float64 `yaml:"start" env:"START"`
	Stop  float64 `yaml:"stop" env:"STOP"`
	Count int     `yaml:"count" env:"COUNT"`
}

type FigureConfig struct {
	Width      int     `yaml:"width" env:"WIDTH"`
	Height     int     `yaml:"height" env:"HEIGHT"`
	YMin       float64 `yaml:"y_min" env:"Y_MIN"`
	YMax       float64 `yaml:"y_max" env:"Y_MAX"`
	XStep      float64 `yaml:"x_step" env:"X_STEP"`
	YStep      float64 `yaml:"y_step" env:"Y_STEP"`
	Title      string  `yaml:"title" env:"TITLE"`
	XLabel     string  `yaml:"x_label" env:"X_LABEL"`
	YLabel     string  `yaml:"y_label" env:"Y_LABEL"`
	Background string  `yaml:"background" env:"BACKGROUND"`
	Foreground string  `yaml:"foreground" env:"FOREGROUND"`
	Guide      string  `yaml:"guide" env:"GUIDE"`
	Grid       bool    `yaml:"grid" env:"GRID"`
	LineWidth  float64 `yaml:"line_width" env:"LINE_WIDTH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	Dev   bool   `yaml:"dev" env:"DEV"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:    "scene",
		K:         DefaultK,
		A:         DefaultA,
		Initial:   SweepConfig{Start: DefaultX0Start, Stop: DefaultX0Stop, Count: DefaultX0Count},
		Time:      SweepConfig{Start: 0, Stop: DefaultTStop, Count: DefaultSamples},
		Palette:   string(family.SchemeRainbow),
		Mode:      "scene",
		FPS:       DefaultFPS,
		Intro:     1.0,
		RunTime:   DefaultRunTime,
		Hold:      DefaultHold,
		Loops:     1,
		Stride:    1,
		Tolerance: DefaultTolerance,
		Theme:     "cyberpunk",
		Figure: FigureConfig{
			Width:      960,
			Height:     540,
			YMin:       0,
			YMax:       2.3,
			XStep:      1,
			YStep:      0.2,
			XLabel:     "t",
			YLabel:     "x(t)",
			Background: "#000000",
			Foreground: "#ffffff",
			Guide:      "#ff0000",
			LineWidth:  2,
		},
		Log: LogConfig{Level: "info"},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := Overlay(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay reads a YAML file onto cfg. Keys missing from the file keep
// their current values.
func Overlay(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnvPrefix namespaces every environment override.
const EnvPrefix = "LOGIGROWTH_"

// ApplyEnv overlays LOGIGROWTH_* variables onto cfg. Unset variables keep
// the existing values.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !(c.K > 0) {
		errs = append(errs, fmt.Errorf("k must be positive, got %g", c.K))
	}
	if c.Initial.Count < 1 {
		errs = append(errs, fmt.Errorf("initial.count must be at least 1, got %d", c.Initial.Count))
	}
	if c.Initial.Count > 1 && !(c.Initial.Stop > c.Initial.Start) {
		errs = append(errs, fmt.Errorf("initial.stop %g must exceed initial.start %g", c.Initial.Stop, c.Initial.Start))
	}
	if c.Time.Count < 2 {
		errs = append(errs, fmt.Errorf("time.count must be at least 2, got %d", c.Time.Count))
	}
	if !(c.Time.Stop > c.Time.Start) {
		errs = append(errs, fmt.Errorf("time.stop %g must exceed time.start %g", c.Time.Stop, c.Time.Start))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("tolerance must be non-negative, got %g", c.Tolerance))
	}
	if c.Mode != "scene" && c.Mode != "frames" {
		errs = append(errs, fmt.Errorf("mode must be scene or frames, got %q", c.Mode))
	}
	for name, hex := range map[string]string{
		"figure.background": c.Figure.Background,
		"figure.foreground": c.Figure.Foreground,
		"figure.guide":      c.Figure.Guide,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid colour %q", name, hex))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) Params() growth.Params {
	return growth.Params{K: c.K, A: c.A}
}

// InitialConditions expands the initial sweep.
func (c *Config) InitialConditions() ([]float64, error) {
	return growth.Linspace(c.Initial.Start, c.Initial.Stop, c.Initial.Count)
}

func (c *Config) Times() ([]float64, error) {
	return growth.Linspace(c.Time.Start, c.Time.Stop, c.Time.Count)
}

// Family generates the configured sweep.
func (c *Config) Family() (*family.Family, error) {
	initial, err := c.InitialConditions()
	if err != nil {
		return nil, fmt.Errorf("initial conditions: %w", err)
	}
	ts, err := c.Times()
	if err != nil {
		return nil, fmt.Errorf("time samples: %w", err)
	}
	return family.Generate(c.Params(), initial, ts, family.PaletteScheme(c.Palette))
}

func (c *Config) Layout() render.Layout {
	l := render.DefaultLayout()
	l.Width, l.Height = c.Figure.Width, c.Figure.Height
	l.XMin, l.XMax = c.Time.Start, c.Time.Stop
	l.YMin, l.YMax = c.Figure.YMin, c.Figure.YMax
	l.XStep, l.YStep = c.Figure.XStep, c.Figure.YStep
	l.K = c.K
	l.Grid = c.Figure.Grid
	l.Title = c.Figure.Title
	l.XLabel, l.YLabel = c.Figure.XLabel, c.Figure.YLabel
	l.LineWidth = c.Figure.LineWidth
	if col, err := colorful.Hex(c.Figure.Background); err == nil {
		l.Background = col
	}
	if col, err := colorful.Hex(c.Figure.Foreground); err == nil {
		l.Foreground = col
	}
	if col, err := colorful.Hex(c.Figure.Guide); err == nil {
		l.Guide = col
	}
	return l
}

func (c *Config) SceneOptions() render.SceneOptions {
	return render.SceneOptions{FPS: c.FPS, Intro: c.Intro, RunTime: c.RunTime, Hold: c.Hold}
}

func (c *Config) FramesOptions() render.FramesOptions {
	return render.FramesOptions{Stride: c.Stride, Loops: c.Loops, Tolerance: c.Tolerance}
}
