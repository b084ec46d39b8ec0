package main

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/logigrowth/internal/growth"
	"github.com/san-kum/logigrowth/internal/viz"
)

func newTestCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	t.Cleanup(func() {
		preset, configFile, skipDegenerate = "", "", false
	})
	return cmd
}

func TestLoadConfigLayering(t *testing.T) {
	t.Setenv("LOGIGROWTH_FIG_TITLE", "from env")
	t.Setenv("LOGIGROWTH_A", "0.2")
	cmd := newTestCommand(t, map[string]string{"preset": "frames", "a": "0.7"})

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.A != 0.7 {
		t.Errorf("expected flag to win, got a=%g", cfg.A)
	}
	if cfg.Time.Stop != 100 || cfg.Mode != "frames" {
		t.Errorf("expected frames preset, got stop=%g mode=%s", cfg.Time.Stop, cfg.Mode)
	}
	if cfg.Figure.Title != "from env" {
		t.Errorf("expected env title, got %q", cfg.Figure.Title)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(newTestCommand(t, map[string]string{"preset": "nope"})); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, err := loadConfig(newTestCommand(t, map[string]string{"k": "-1"})); err == nil {
		t.Error("expected validation error")
	}
}

func TestBuildFamilyDegenerate(t *testing.T) {
	flags := map[string]string{"x0-start": "0.5", "x0-stop": "1.5", "x0-count": "3"}
	cfg, err := loadConfig(newTestCommand(t, flags))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := buildFamily(context.Background(), cfg); !errors.Is(err, growth.ErrDegenerateInput) {
		t.Fatalf("expected degenerate input error, got %v", err)
	}

	flags["skip-degenerate"] = "true"
	cfg, err = loadConfig(newTestCommand(t, flags))
	if err != nil {
		t.Fatal(err)
	}
	fam, err := buildFamily(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected skip, got %v", err)
	}
	if len(fam.Curves) != 2 {
		t.Errorf("expected 2 curves, got %d", len(fam.Curves))
	}
}

func newLiveCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "live"}
	addConfigFlags(cmd)
	addLiveFlags(cmd)
	for name, value := range flags {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}
	t.Cleanup(func() {
		preset, configFile, skipDegenerate = "", "", false
		mode, fps, theme, outPath = "", 0, "", ""
	})
	return cmd
}

func TestLiveModeDefault(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
		want  string
	}{
		{"no flags", nil, viz.ModeFrames},
		{"preset", map[string]string{"preset": "scene"}, viz.ModeScene},
		{"flag", map[string]string{"mode": "scene"}, viz.ModeScene},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(newLiveCommand(t, tt.flags), liveDefaults)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Mode != tt.want {
				t.Errorf("expected mode %s, got %s", tt.want, cfg.Mode)
			}
		})
	}
}

func TestLiveModeFromEnv(t *testing.T) {
	t.Setenv("LOGIGROWTH_MODE", "scene")
	cfg, err := loadConfig(newLiveCommand(t, nil), liveDefaults)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != viz.ModeScene {
		t.Errorf("expected env to override the live default, got %s", cfg.Mode)
	}
}

func TestRecordPath(t *testing.T) {
	tests := []struct {
		flags map[string]string
		want  string
	}{
		{nil, defaultRecording},
		{map[string]string{"out": "run/growth.GIF"}, "run/growth.GIF"},
		{map[string]string{"out": "growth.svg"}, defaultRecording},
	}
	for _, tt := range tests {
		cfg, err := loadConfig(newLiveCommand(t, tt.flags), liveDefaults)
		if err != nil {
			t.Fatal(err)
		}
		if got := recordPath(cfg); got != tt.want {
			t.Errorf("out=%q: expected %q, got %q", tt.flags["out"], tt.want, got)
		}
	}

	t.Setenv("LOGIGROWTH_OUTPUT", "env.gif")
	cfg, err := loadConfig(newLiveCommand(t, nil), liveDefaults)
	if err != nil {
		t.Fatal(err)
	}
	if got := recordPath(cfg); got != "env.gif" {
		t.Errorf("expected env output, got %q", got)
	}
}
