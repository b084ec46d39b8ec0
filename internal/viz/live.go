package viz

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"

	"github.com/san-kum/logigrowth/internal/family"
	"github.com/san-kum/logigrowth/internal/growth"
	"github.com/san-kum/logigrowth/internal/logging"
	"github.com/san-kum/logigrowth/internal/render"
)

const (
	ModeFrames = "frames"
	ModeScene  = "scene"

	defaultCols = 72
	defaultRows = 20
	charW       = 8
	charH       = 16
)

// LiveOptions configures the interactive view.
type LiveOptions struct {
	Mode       string
	FPS        int
	Stride     int
	Tolerance  float64
	RunTime    float64
	Hold       float64
	Theme      string
	Cols, Rows int
	RecordPath string
}

type TickMsg time.Time

// Model animates a curve family in the terminal. In frames mode every
// curve grows together; in scene mode curves are created one at a time.
type Model struct {
	fam    *family.Family
	layout render.Layout
	canvas *Canvas
	theme  Theme
	log    logr.Logger

	mode      string
	fps       int
	stride    int
	tolerance float64
	steps     int
	holdTicks int

	index int // frames mode: visible samples
	curve int // scene mode: curve being created
	step  int
	hold  int

	running    bool
	restarts   int
	recording  bool
	frames     []*image.Paletted
	recordPath string
	status     string
}

// NewModel prepares a live view of fam. The logger is taken from ctx.
func NewModel(ctx context.Context, fam *family.Family, l render.Layout, opts LiveOptions) Model {
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = defaultCols
	}
	if rows <= 0 {
		rows = defaultRows
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	mode := opts.Mode
	if mode != ModeScene {
		mode = ModeFrames
	}
	path := opts.RecordPath
	if path == "" {
		path = "logigrowth.gif"
	}
	m := Model{
		fam:        fam,
		layout:     l,
		canvas:     NewCanvas(cols, rows),
		theme:      GetTheme(opts.Theme),
		log:        logging.FromContext(ctx),
		mode:       mode,
		fps:        fps,
		stride:     max(1, opts.Stride),
		tolerance:  opts.Tolerance,
		steps:      max(1, int(math.Round(opts.RunTime*float64(fps)))),
		holdTicks:  max(1, int(math.Round(opts.Hold*float64(fps)))),
		running:    true,
		recordPath: path,
	}
	m.restart()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances the animation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.recording {
				m.stopRecording()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "t":
			m.theme = m.theme.Next()
		case "+", "=":
			m.stride = min(m.stride*2, max(1, m.fam.Len()))
		case "-", "_":
			m.stride = max(1, m.stride/2)
		case "m":
			if m.mode == ModeFrames {
				m.mode = ModeScene
			} else {
				m.mode = ModeFrames
			}
			m.restart()
		case "g":
			if m.recording {
				m.stopRecording()
			} else {
				m.recording = true
				m.frames = m.frames[:0]
				m.status = "recording"
			}
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, m.canvas.Image(charW, charH, m.layout.Background))
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) restart() {
	m.index = 1
	m.curve, m.step, m.hold = 0, 1, 0
}

// advance moves one tick forward and applies the reset policy: a frames
// pass restarts once every curve has reached K within tolerance or the
// samples run out; a scene restarts after its hold.
func (m *Model) advance() {
	n := m.fam.Len()
	if n == 0 {
		return
	}
	if m.mode == ModeFrames {
		if m.index >= n || (m.tolerance > 0 && m.fam.AllReached(m.index-1, m.tolerance)) {
			m.restarts++
			m.log.V(logging.TRACE).Info("live pass restarted", "sample", m.index, "restarts", m.restarts)
			m.restart()
			return
		}
		m.index = min(n, m.index+m.stride)
		return
	}

	if m.curve < len(m.fam.Curves) {
		m.step += m.stride
		if m.step > m.steps {
			m.curve++
			m.step = 1
		}
		return
	}
	m.hold++
	if m.hold >= m.holdTicks {
		m.restarts++
		m.restart()
	}
}

// visible returns the curves on screen at the current position.
func (m *Model) visible() []family.Curve {
	if m.mode == ModeFrames {
		return m.fam.Frame(m.index)
	}
	done := min(m.curve, len(m.fam.Curves))
	out := make([]family.Curve, 0, done+1)
	out = append(out, m.fam.Curves[:done]...)
	if done < len(m.fam.Curves) {
		c := m.fam.Curves[done]
		k := int(math.Ceil(float64(min(m.step, m.steps)) * float64(m.fam.Len()) / float64(m.steps)))
		c.Curve = c.Prefix(k)
		out = append(out, c)
	}
	return out
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.layout.ShowGuide {
		m.canvas.Guide(m.layout, m.theme.GuideColor())
	}
	for _, c := range m.visible() {
		m.canvas.Plot(m.layout, c)
	}
}

func (m *Model) stopRecording() {
	m.recording = false
	if err := m.saveGIF(); err != nil {
		m.status = "record failed: " + err.Error()
		m.log.Error(err, "save recording", "path", m.recordPath)
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.recordPath)
		m.log.V(logging.VERBOSE).Info("recording saved", "path", m.recordPath, "frames", len(m.frames))
	}
	m.frames = nil
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	delay := max(1, 100/m.fps)
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(m.recordPath)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	th := m.theme

	var s strings.Builder
	s.WriteString(th.header().Render("LOGISTIC GROWTH") + "\n")

	status := "RUNNING"
	switch {
	case m.recording:
		status = fmt.Sprintf("REC %d", len(m.frames))
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(th.status(!m.running, m.recording).Render(status) + "\n\n")

	row := func(label, value string) {
		s.WriteString(th.label().Render(label) + th.value().Render(value) + "\n")
	}
	n := m.fam.Len()
	row("Mode", m.mode)
	row("K / a", fmt.Sprintf("%g / %g", m.fam.Params.K, m.fam.Params.A))
	row("Curves", fmt.Sprintf("%d", len(m.fam.Curves)))
	if m.mode == ModeFrames && n > 0 {
		row("Time", fmt.Sprintf("%.2f", m.fam.Times[m.index-1]))
		row("Sample", fmt.Sprintf("%d/%d", m.index, n))
		row("At K", fmt.Sprintf("%d", m.reached()))
	} else {
		row("Curve", fmt.Sprintf("%d/%d", min(m.curve+1, len(m.fam.Curves)), len(m.fam.Curves)))
	}
	row("Stride", fmt.Sprintf("%d", m.stride))
	row("Restarts", fmt.Sprintf("%d", m.restarts))
	row("Theme", th.Name)
	if m.status != "" {
		s.WriteString("\n" + th.value().Render(m.status) + "\n")
	}
	s.WriteString(th.help().Render("SP:Pause R:Restart Q:Quit\nT:Theme  M:Mode   G:Record\n+/-:Speed"))

	canvasView := lipgloss.NewStyle().Padding(1, 2).Render(m.canvas.Render())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, th.panel().Render(s.String()))
}

func (m Model) reached() int {
	tol := m.tolerance
	if tol <= 0 {
		tol = 1e-3
	}
	count := 0
	for _, c := range m.fam.Curves {
		if growth.Reached(c.Curve, m.index-1, tol) {
			count++
		}
	}
	return count
}
