package viz

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chainsim/internal/control"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/metrics"
	"github.com/san-kum/chainsim/internal/sim"
)

const (
	defaultCols     = 60
	defaultRows     = 24
	panelWidth      = 46
	historyCapacity = 300
	bannerFrames    = 90

	maxFrameDelta = 50 // ms
	stepDelta     = 16 // ms, single step while paused

	particleRadius = 5
	pointerRadius  = 10
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Options configures the live view.
type Options struct {
	Name             string
	StretchTolerance float64
	Cols, Rows       int
}

// Model drives one simulator from wall-clock ticks and terminal mouse input.
type Model struct {
	sim           *sim.Simulator
	name          string
	tolerance     float64
	width, height float64
	scale         float64
	cols, rows    int
	canvas        *Canvas
	clock         sim.Clock
	pointer       control.Pointer
	pointerSeen   bool
	frame         sim.Frame
	running       bool
	stretch       []float64
	banner        int
	flings        int
	err           error
	showHelp      bool
}

// NewModel wraps s in a live view. The canvas keeps the chain viewport's
// aspect ratio inside opts.Cols x opts.Rows cells.
func NewModel(s *sim.Simulator, opts Options) Model {
	if opts.Cols <= 0 {
		opts.Cols = defaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = defaultRows
	}
	chain := s.Chain()
	m := Model{
		sim:       s,
		name:      opts.Name,
		tolerance: opts.StretchTolerance,
		width:     chain.Width,
		height:    chain.Height,
		clock:     sim.Clock{MaxDelta: maxFrameDelta},
		frame:     s.Snapshot(),
		running:   true,
		stretch:   make([]float64, 0, historyCapacity),
	}
	m.fit(opts.Cols, opts.Rows)
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.clock.Restart()
		case "s":
			if !m.running {
				m.advance(stepDelta)
			}
		case "r":
			m.reset()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		dt := m.clock.Tick(time.Time(msg))
		if m.running {
			m.advance(dt)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	m.pointer.Pos = m.toWorld(msg.X, msg.Y)
	m.pointerSeen = true
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.pointer.Down = true
		}
	case tea.MouseActionRelease:
		m.pointer.Down = false
	}
}

// advance runs one simulator step and folds the frame into the view state.
func (m *Model) advance(dt float64) {
	f, err := m.sim.Step(dt, m.pointer)
	if err != nil {
		m.err = err
		log.Printf("step rejected: %v", err)
		return
	}
	m.err = nil
	m.frame = f

	if f.Flung {
		m.flings++
		m.banner = bannerFrames
	} else if m.banner > 0 {
		m.banner--
	}

	m.stretch = append(m.stretch, metrics.FrameStretch(f))
	if len(m.stretch) > historyCapacity {
		m.stretch = m.stretch[1:]
	}
}

// reset restores the initial layout.
func (m *Model) reset() {
	m.sim.Reset()
	m.clock.Restart()
	m.frame = m.sim.Snapshot()
	m.stretch = m.stretch[:0]
	m.banner = 0
	m.flings = 0
	m.err = nil
	log.Printf("%s: reset", m.name)
}

func (m *Model) resize(termW, termH int) {
	cols := termW - panelWidth - 2*canvasPadX
	rows := termH - 2*canvasPadY
	if cols < 10 || rows < 5 {
		return
	}
	m.fit(cols, rows)
}

// fit picks the largest uniform scale that shows the whole viewport.
func (m *Model) fit(cols, rows int) {
	m.scale = math.Min(float64(cols*2)/m.width, float64(rows*4)/m.height)
	m.cols = max(1, int(math.Ceil(m.width*m.scale/2-1e-9)))
	m.rows = max(1, int(math.Ceil(m.height*m.scale/4-1e-9)))
	m.canvas = NewCanvas(m.cols, m.rows)
}

// toWorld maps a terminal cell to the world point at its centre.
func (m Model) toWorld(cellX, cellY int) dynamo.Vec2 {
	subX := (cellX-canvasPadX)*2 + 1
	subY := (cellY-canvasPadY)*4 + 2
	return dynamo.Vec2{X: float64(subX) / m.scale, Y: float64(subY) / m.scale}
}

// toCanvas maps a world point to canvas sub-pixels.
func (m Model) toCanvas(v dynamo.Vec2) (int, int) {
	return int(math.Floor(v.X * m.scale)), int(math.Floor(v.Y * m.scale))
}

func (m Model) radius(r float64) int {
	return max(1, int(r*m.scale))
}

func (m *Model) draw() {
	m.canvas.Clear()
	f := m.frame

	if m.pointerSeen {
		tx, _ := m.toCanvas(dynamo.Vec2{X: m.width / 2})
		px, py := m.toCanvas(m.pointer.Pos)
		m.canvas.DrawLine(tx, 0, px, py)
		m.canvas.DrawCircle(px, py, m.radius(pointerRadius))
	}

	for _, s := range f.Segments {
		ax, ay := m.toCanvas(s.A)
		bx, by := m.toCanvas(s.B)
		m.canvas.DrawLine(ax, ay, bx, by)
	}
	for i, p := range f.Particles {
		x, y := m.toCanvas(p)
		m.canvas.FillDot(x, y, 1)
		if i == f.Handle && f.NearHandle {
			m.canvas.DrawCircle(x, y, m.radius(2*particleRadius))
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(CurrentTheme.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle().Render(GradientText(strings.ToUpper(m.name), CurrentTheme.Primary, CurrentTheme.Secondary)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	state := m.frame.State.String()
	cursor := "-"
	if m.frame.NearHandle {
		cursor = "grab"
	}
	s.WriteString(labelStyle.Render("State") + stateStyle(state).Render(state) + "\n")
	s.WriteString(labelStyle.Render("Cursor") + valueStyle.Render(cursor) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.frame.Time/1000)) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d", m.frame.Index)) + "\n")
	s.WriteString(labelStyle.Render("Flings") + valueStyle.Render(fmt.Sprintf("%d", m.flings)) + "\n")

	cur := 0.0
	if len(m.stretch) > 0 {
		cur = m.stretch[len(m.stretch)-1]
	}
	s.WriteString(labelStyle.Render("Stretch") + StretchBar(cur, m.tolerance, 16) + valueStyle.Render(fmt.Sprintf(" %.1f%%", cur*100)) + "\n")

	if m.showHelp {
		s.WriteString(helpStyle.Render(helpText) + "\n")
	} else if len(m.stretch) > 1 {
		chart := asciigraph.Plot(m.stretch, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Stretch"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Secondary).Render(chart) + "\n")
	}

	if m.banner > 0 {
		s.WriteString("\n" + bannerStyle().Render("FLING") + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause S:Step R:Reset\nT:Theme  Q:Quit  ?:Help"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
}

const helpText = `Drag the last particle with the
left button. Pull it further than
the drag threshold to fling it.

Space  pause / resume
S      single step while paused
R      reset the chain
T      cycle themes`
