package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/logigrowth/internal/config"
	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/growth"
	"github.com/san-kum/logigrowth/internal/logging"
	"github.com/san-kum/logigrowth/internal/registry"
	"github.com/san-kum/logigrowth/internal/render"
	"github.com/san-kum/logigrowth/internal/storage"
	"github.com/san-kum/logigrowth/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	logDev     bool
	configFile string
	preset     string
	// Model and sweep overrides
	k       float64
	a       float64
	x0Start float64
	x0Stop  float64
	x0Count int
	tStop   float64
	samples int
	palette string
	// Output
	outPath  string
	renderer string
	mode     string
	fps      int
	theme    string
	// Skip initial conditions equal to K instead of failing
	skipDegenerate bool
	// eval
	evalX0 float64
	evalAt []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "logigrowth",
		Short:         "logistic growth curve families",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(os.Stderr, logLevel, logDev)
			if err != nil {
				return err
			}
			cmd.SetContext(logging.IntoContext(cmd.Context(), log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".logigrowth", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (error, warn, info, verbose, debug, trace)")
	rootCmd.PersistentFlags().BoolVar(&logDev, "log-dev", false, "human readable log output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "sample a curve family and store it",
		Args:  cobra.NoArgs,
		RunE:  runFamily,
	}
	addConfigFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a curve family with the scene or frames driver",
		Args:  cobra.NoArgs,
		RunE:  renderFamily,
	}
	addConfigFlags(renderCmd)
	renderCmd.Flags().StringVar(&outPath, "out", "", "output file; the extension selects the renderer")
	renderCmd.Flags().StringVar(&renderer, "renderer", "", "renderer name (svg, png, gif, avi, term)")
	renderCmd.Flags().StringVar(&mode, "mode", "scene", "driver (scene or frames)")
	renderCmd.Flags().IntVar(&fps, "fps", 30, "frame rate")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate a curve family in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	addLiveFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("presets:")
				for _, p := range config.ListPresets() {
					fmt.Printf("  %s\n", p)
				}
				return nil
			}
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run curves to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate one curve at given times",
		Args:  cobra.NoArgs,
		RunE:  evalCurve,
	}
	addConfigFlags(evalCmd)
	evalCmd.Flags().Float64Var(&evalX0, "x0", 0.1, "initial condition")
	evalCmd.Flags().Float64SliceVar(&evalAt, "at", nil, "times to evaluate (default: the configured samples)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, renderCmd, liveCmd, presetsCmd, exportCSVCmd, exportJSONCmd, evalCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&k, "k", config.DefaultK, "carrying capacity")
	cmd.Flags().Float64Var(&a, "a", config.DefaultA, "growth rate")
	cmd.Flags().Float64Var(&x0Start, "x0-start", config.DefaultX0Start, "first initial condition")
	cmd.Flags().Float64Var(&x0Stop, "x0-stop", config.DefaultX0Stop, "last initial condition")
	cmd.Flags().IntVar(&x0Count, "x0-count", config.DefaultX0Count, "number of initial conditions")
	cmd.Flags().Float64Var(&tStop, "t-stop", config.DefaultTStop, "end of the time window")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "time samples per curve")
	cmd.Flags().StringVar(&palette, "palette", string(family.SchemeRainbow), "palette ("+strings.Join(family.Schemes(), ", ")+")")
	cmd.Flags().BoolVar(&skipDegenerate, "skip-degenerate", false, "drop initial conditions equal to k")
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mode, "mode", viz.ModeFrames, "animation (scene or frames)")
	cmd.Flags().IntVar(&fps, "fps", 30, "frame rate")
	cmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().StringVar(&outPath, "out", defaultRecording, "recording path (.gif)")
}

const defaultRecording = "logigrowth.gif"

// liveDefaults changes the built-in defaults for the live view; a preset,
// config file, environment or flag still takes precedence.
func liveDefaults(cfg *config.Config) {
	cfg.Mode = viz.ModeFrames
}

// loadConfig layers defaults, preset, config file, LOGIGROWTH_* variables
// and explicitly set flags, in that order. base adjusts the defaults and
// is ignored when a preset is named.
func loadConfig(cmd *cobra.Command, base ...func(*config.Config)) (*config.Config, error) {
	cfg := config.DefaultConfig()
	for _, fn := range base {
		fn(cfg)
	}
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.Overlay(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("k") {
		cfg.K = k
	}
	if flags.Changed("a") {
		cfg.A = a
	}
	if flags.Changed("x0-start") {
		cfg.Initial.Start = x0Start
	}
	if flags.Changed("x0-stop") {
		cfg.Initial.Stop = x0Stop
	}
	if flags.Changed("x0-count") {
		cfg.Initial.Count = x0Count
	}
	if flags.Changed("t-stop") {
		cfg.Time.Stop = tStop
	}
	if flags.Changed("samples") {
		cfg.Time.Count = samples
	}
	if flags.Changed("palette") {
		cfg.Palette = palette
	}
	if flags.Lookup("mode") != nil && flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Lookup("theme") != nil && flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Lookup("renderer") != nil && flags.Changed("renderer") {
		cfg.Renderer = renderer
	}
	if flags.Lookup("out") != nil && flags.Changed("out") {
		cfg.Output = outPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildFamily(ctx context.Context, cfg *config.Config) (*family.Family, error) {
	log := logging.FromContext(ctx)
	initial, err := cfg.InitialConditions()
	if err != nil {
		return nil, fmt.Errorf("initial conditions: %w", err)
	}
	if skipDegenerate {
		kept := family.FilterDegenerate(initial, cfg.K)
		if dropped := len(initial) - len(kept); dropped > 0 {
			log.Info("skipped degenerate initial conditions", "dropped", dropped, "k", cfg.K)
		}
		initial = kept
	}
	ts, err := cfg.Times()
	if err != nil {
		return nil, fmt.Errorf("time samples: %w", err)
	}

	fam, err := family.Generate(cfg.Params(), initial, ts, family.PaletteScheme(cfg.Palette))
	if errors.Is(err, growth.ErrDegenerateInput) {
		return nil, fmt.Errorf("%w (use --skip-degenerate to drop it)", err)
	}
	if err != nil {
		return nil, err
	}
	log.V(logging.VERBOSE).Info("family generated", "curves", len(fam.Curves), "samples", fam.Len(), "k", cfg.K, "a", cfg.A)
	return fam, nil
}

func runFamily(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	start := time.Now()
	fam, err := buildFamily(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Preset:    cfg.Preset,
		K:         cfg.K,
		A:         cfg.A,
		Initial:   storage.Sweep(cfg.Initial),
		Time:      storage.Sweep(cfg.Time),
		Palette:   cfg.Palette,
		Tolerance: cfg.Tolerance,
	}
	runID, err := st.Save(meta, fam)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logging.FromContext(cmd.Context()).Info("run saved", "id", runID, "dir", dataDir, "curves", len(fam.Curves))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("curves: %d, samples: %d\n\n", len(fam.Curves), fam.Len())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "X0\tFINAL\tSETTLED\tINFLECTION")
	for _, s := range storage.Summarize(fam, cfg.Tolerance) {
		fmt.Fprintf(w, "%.4f\t%.6f\t%s\t%s\n", s.X0, s.Final, optTime(s.SettlingTime), optTime(s.InflectionTime))
	}
	return w.Flush()
}

func optTime(t *float64) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *t)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tK\tA\tCURVES\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.K,
			run.A,
			len(run.Curves),
			run.Time.Count,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := st.LoadCurves(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 || len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("k: %g, a: %g\n", meta.K, meta.A)
	fmt.Printf("samples: %d\n\n", len(times))

	data := make([][]float64, 0, len(series))
	colors := make([]asciigraph.AnsiColor, 0, len(series))
	for i, s := range series {
		data = append(data, s.Values)
		col := colorful.Color{R: 1, G: 1, B: 1}
		if i < len(meta.Curves) {
			if c, err := colorful.Hex(meta.Curves[i].Color); err == nil {
				col = c
			}
		}
		colors = append(colors, viz.ANSIColor(col))
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("x(t) for t in [%g, %g]", times[0], times[len(times)-1])),
	)
	fmt.Println(graph)
	return nil
}

func renderFamily(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	fam, err := buildFamily(ctx, cfg)
	if err != nil {
		return err
	}

	reg := registry.New()
	name := cfg.Renderer
	if name == "" {
		name = "term"
		if cfg.Output != "" {
			if name, err = reg.ForPath(cfg.Output); err != nil {
				return err
			}
		}
	}

	opts := registry.Options{Layout: cfg.Layout(), Path: cfg.Output, FPS: cfg.FPS, Out: os.Stdout}
	if name != "avi" && name != "term" {
		if cfg.Output == "" {
			return fmt.Errorf("%s renderer needs --out", name)
		}
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		opts.Out = f
	}

	cr, err := reg.Get(name, opts)
	if err != nil {
		return err
	}
	log.V(logging.VERBOSE).Info("renderer opened", "renderer", name, "out", cfg.Output, "animated", registry.Animated(cr))

	start := time.Now()
	stats, err := drive(ctx, cfg, fam, cr)
	if c, ok := cr.(render.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	if err != nil {
		var fe *render.FrameError
		if errors.As(err, &fe) {
			log.Error(fe.Wrapped, "render failed", "frame", fe.Frame, "renderer", name)
		}
		return err
	}

	log.Info("rendered",
		"renderer", name,
		"mode", cfg.Mode,
		"frames", stats.Frames,
		"draws", stats.Draws,
		"restarts", stats.Restarts,
		"elapsed", time.Since(start).String(),
	)
	if cfg.Output != "" {
		fmt.Printf("wrote %s\n", cfg.Output)
	}
	return nil
}

func drive(ctx context.Context, cfg *config.Config, fam *family.Family, cr render.CurveRenderer) (render.Stats, error) {
	if cfg.Mode == "frames" {
		return render.Frames(ctx, fam, cr, cfg.FramesOptions())
	}
	return render.Scene(ctx, fam, cr, cfg.SceneOptions())
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, liveDefaults)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	fam, err := buildFamily(ctx, cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(ctx, fam, cfg.Layout(), viz.LiveOptions{
		Mode:       cfg.Mode,
		FPS:        cfg.FPS,
		Stride:     cfg.Stride,
		Tolerance:  cfg.Tolerance,
		RunTime:    cfg.RunTime,
		Hold:       cfg.Hold,
		Theme:      cfg.Theme,
		RecordPath: recordPath(cfg),
	})

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// recordPath is the configured output when it names a GIF, else the
// default recording file.
func recordPath(cfg *config.Config) string {
	if strings.EqualFold(filepath.Ext(cfg.Output), ".gif") {
		return cfg.Output
	}
	return defaultRecording
}

func exportCSV(cmd *cobra.Command, args []string) error {
	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := storage.New(dataDir).ExportCSV(w, args[0]); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("exported to %s\n", outPath)
	}
	return nil
}

func evalCurve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ts := evalAt
	if len(ts) == 0 {
		if ts, err = cfg.Times(); err != nil {
			return err
		}
	}

	c, err := growth.NewCurve(cfg.Params(), evalX0, ts)
	if err != nil {
		return err
	}
	logging.FromContext(cmd.Context()).V(logging.DEBUG).Info("evaluating", "x0", evalX0, "k_prime", c.KPrime, "points", len(ts))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tX")
	for t, x := range c.All() {
		fmt.Fprintf(w, "%g\t%.10g\n", t, x)
	}
	return w.Flush()
}
