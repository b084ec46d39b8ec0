package config

import "sort"

var Presets = map[string]*Config{
	"scene": DefaultConfig(),
	"frames": func() *Config {
		c := DefaultConfig()
		c.Preset = "frames"
		c.A = 0.1
		c.Time = SweepConfig{Start: 0, Stop: 100, Count: 500}
		c.Mode = "frames"
		c.FPS = 50
		c.Tolerance = 1e-3
		c.Loops = 1
		c.Figure.YMax = 2
		c.Figure.XStep = 10
		c.Figure.YStep = 0.25
		c.Figure.Grid = true
		c.Figure.Guide = "#ffa500"
		c.Figure.Title = "Logistic Growth Model for Different Initial Tumor Cell Populations"
		c.Figure.XLabel = "Time (t)"
		c.Figure.YLabel = "Population x(t)"
		c.Figure.Width = 1000
		c.Figure.Height = 600
		return c
	}(),
	"fast": func() *Config {
		c := DefaultConfig()
		c.Preset = "fast"
		c.A = 2.0
		c.Time = SweepConfig{Start: 0, Stop: 5, Count: 200}
		c.Initial = SweepConfig{Start: 0.05, Stop: 1.95, Count: 12}
		c.Figure.XStep = 0.5
		return c
	}(),
	"decline": func() *Config {
		c := DefaultConfig()
		c.Preset = "decline"
		c.A = 0.3
		c.Initial = SweepConfig{Start: 1.1, Stop: 3.0, Count: 20}
		c.Time = SweepConfig{Start: 0, Stop: 30, Count: 300}
		c.Figure.YMax = 3.2
		c.Figure.XStep = 5
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
