package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/logigrowth/internal/growth"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.K != 1.0 {
		t.Errorf("expected K 1.0, got %f", cfg.K)
	}
	if cfg.A != 0.5 {
		t.Errorf("expected a 0.5, got %f", cfg.A)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	initial, err := cfg.InitialConditions()
	if err != nil {
		t.Fatal(err)
	}
	if len(initial) != 35 || initial[0] != 0.1 || initial[34] != 2.0 {
		t.Errorf("unexpected default sweep: len=%d first=%g last=%g", len(initial), initial[0], initial[len(initial)-1])
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("frames")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.A != 0.1 {
		t.Errorf("expected a 0.1, got %f", cfg.A)
	}
	if cfg.Time.Stop != 100 || cfg.Time.Count != 500 {
		t.Errorf("expected t in [0,100] with 500 samples, got %+v", cfg.Time)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("frames preset should validate: %v", err)
	}

	cfg.A = 9
	if Presets["frames"].A != 0.1 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"decline", "fast", "frames", "scene"}
	if diff := cmp.Diff(want, ListPresets()); diff != "" {
		t.Errorf("unexpected presets:\n%s", diff)
	}
	for _, name := range want {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if _, err := GetPreset(name).Family(); err != nil {
			t.Errorf("preset %s family: %v", name, err)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("frames")
	cfg.Palette = "hue"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip differs (-saved +loaded):\n%s", diff)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LOGIGROWTH_K", "2.5")
	t.Setenv("LOGIGROWTH_X0_COUNT", "7")
	t.Setenv("LOGIGROWTH_FIG_TITLE", "from env")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.K != 2.5 {
		t.Errorf("expected K 2.5, got %f", cfg.K)
	}
	if cfg.Initial.Count != 7 {
		t.Errorf("expected 7 initial conditions, got %d", cfg.Initial.Count)
	}
	if cfg.Figure.Title != "from env" {
		t.Errorf("expected title from env, got %q", cfg.Figure.Title)
	}
	if cfg.A != DefaultA {
		t.Errorf("unset variable should keep default, got a=%f", cfg.A)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("LOGIGROWTH_FPS", "lots")
	if err := ApplyEnv(DefaultConfig()); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.K = 0
	cfg.Time.Count = 1
	cfg.FPS = 0
	cfg.Mode = "reel"
	cfg.Figure.Guide = "red"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, frag := range []string{"k must be positive", "time.count", "fps", "mode", "figure.guide"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("expected %q in %v", frag, err)
		}
	}
}

func TestFamilyDegenerate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Initial = SweepConfig{Start: 0.5, Stop: 1.5, Count: 3}

	_, err := cfg.Family()
	if !errors.Is(err, growth.ErrDegenerateInput) {
		t.Errorf("expected degenerate input error, got %v", err)
	}
}

func TestLayout(t *testing.T) {
	l := GetPreset("frames").Layout()
	if l.XMax != 100 || l.YMax != 2 {
		t.Errorf("unexpected axes: x<=%g y<=%g", l.XMax, l.YMax)
	}
	if l.Guide.Hex() != "#ffa500" {
		t.Errorf("expected orange guide, got %s", l.Guide.Hex())
	}
	if !strings.HasPrefix(l.Title, "Logistic Growth Model") {
		t.Errorf("unexpected title %q", l.Title)
	}
}

func TestOverlayKeepsPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(path, []byte("k: 3\nfigure:\n  title: overlay\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := GetPreset("frames")
	if err := Overlay(path, cfg); err != nil {
		t.Fatalf("overlay failed: %v", err)
	}
	if cfg.K != 3 || cfg.Figure.Title != "overlay" {
		t.Errorf("expected overridden k and title, got k=%g title=%q", cfg.K, cfg.Figure.Title)
	}
	if cfg.A != 0.1 || cfg.Time.Stop != 100 || !cfg.Figure.Grid {
		t.Errorf("expected frames preset values to survive, got a=%g stop=%g", cfg.A, cfg.Time.Stop)
	}

	if err := os.WriteFile(path, []byte("k: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Overlay(path, cfg); err == nil {
		t.Error("expected parse error")
	}
}
