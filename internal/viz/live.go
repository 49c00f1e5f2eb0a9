package viz

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 400
	gifPath         = "billiard.gif"
	minSpeed        = 0.125
	maxSpeed        = 8
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

type trailPoint struct {
	x, y int
	ink  lipgloss.Color
}

// Model drives a table from wall-clock ticks and renders it.
type Model struct {
	cfg           *config.Config
	sim           *sim.Simulator
	clock         *sim.Clock
	canvas        *Canvas
	width, height int
	running       bool
	speed         float64
	frame         int
	initialEnergy float64
	energyHistory []float64
	contacts      int
	wallHits      int
	trails        bool
	trail         []trailPoint
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	status        string
	err           error
}

// NewModel builds a live view over a fresh table from cfg.
func NewModel(cfg *config.Config) (Model, error) {
	table, err := cfg.NewTable()
	if err != nil {
		return Model{}, err
	}

	return Model{
		cfg:           cfg,
		sim:           sim.New(table),
		clock:         sim.NewClock(cfg.Run.MaxFrameDt),
		canvas:        NewCanvas(width, height),
		width:         width,
		height:        height,
		running:       true,
		speed:         1,
		initialEnergy: table.KineticEnergy(),
		energyHistory: make([]float64, 0, historyCapacity),
		trail:         make([]trailPoint, 0, trailCapacity),
	}, nil
}

func (m Model) tick() tea.Cmd {
	fps := m.cfg.Run.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the table.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1.0 / float64(max(m.cfg.Run.FPS, 1)))
			}
		case "r":
			m.reset()
		case "+", "=":
			m.speed = math.Min(maxSpeed, m.speed*2)
		case "-", "_":
			m.speed = math.Max(minSpeed, m.speed/2)
		case "w":
			m.trails = !m.trails
			m.trail = m.trail[:0]
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		dt := m.clock.Tick(time.Time(msg))
		if m.running && dt > 0 {
			m.advance(dt * m.speed)
		}
		m.frame++
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance steps the table by dt, split so no sub-step exceeds the frame cap.
func (m *Model) advance(dt float64) {
	maxDt := m.cfg.Run.MaxFrameDt
	n := 1
	if maxDt > 0 && dt > maxDt {
		n = int(math.Ceil(dt / maxDt))
	}
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		f := m.sim.Tick(h, m.cfg.Run.HostDecay)
		m.contacts += len(f.Report.Contacts)
		m.wallHits += len(f.Report.Walls)
	}

	m.energyHistory = append(m.energyHistory, m.sim.Table().KineticEnergy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// reset rebuilds the table from the configuration.
func (m *Model) reset() {
	table, err := m.cfg.NewTable()
	if err != nil {
		m.err = err
		return
	}
	m.sim = sim.New(table)
	m.clock.Reset()
	m.contacts, m.wallHits = 0, 0
	m.energyHistory = m.energyHistory[:0]
	m.trail = m.trail[:0]
}

func (m *Model) resize(w, h int) {
	cw := w - 52
	ch := h - 4
	if cw < 20 || ch < 8 {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
	m.trail = m.trail[:0]
}

func (m *Model) toggleRecording() {
	if m.recording {
		if err := m.saveGIF(gifPath); err != nil {
			m.status = "gif: " + err.Error()
		} else {
			m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), gifPath)
		}
		m.recording = false
		m.frames = nil
		return
	}
	m.recording = true
	m.frames = make([]*image.Paletted, 0)
}

func (m *Model) draw() {
	m.canvas.Clear()
	t := m.sim.Table()
	discs := t.Snapshot()

	pr := DrawTable(m.canvas, t.Params(), discs, CurrentTheme.Rail)
	if !m.trails {
		return
	}

	for _, d := range discs {
		if d.Vel.IsZero() {
			continue
		}
		x, y := pr.Point(d.Pos)
		m.trail = append(m.trail, trailPoint{x: x, y: y, ink: DiscColor(d.Color)})
	}
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[len(m.trail)-trailCapacity:]
	}
	for _, pt := range m.trail {
		m.canvas.Pen(pt.ink)
		m.canvas.Set(pt.x, pt.y)
	}
	m.canvas.Pen("")
}

// View renders the TUI interface.
func (m Model) View() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n"
	}

	t := m.sim.Table()
	discs := t.Snapshot()
	theme := CurrentTheme

	var s strings.Builder
	name := m.cfg.Name
	if name == "" {
		name = "table"
	}
	s.WriteString(headerStyle.Render(GradientText("BILLIARD · "+strings.ToUpper(name), theme.Primary, theme.Secondary)) + "\n")

	if m.recording {
		s.WriteString(StatusRecording.Render("● REC") + " ")
	}
	if m.running {
		s.WriteString(StatusRunning.Render(AnimatedSpinner(m.frame) + " RUNNING"))
	} else {
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	if t.AtRest() {
		s.WriteString(Subtle.Render("  at rest"))
	}
	s.WriteString("\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	energy := t.KineticEnergy()
	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Steps", fmt.Sprintf("%d", m.sim.Steps()))
	row("Speed", fmt.Sprintf("%gx", m.speed))
	row("Energy", fmt.Sprintf("%.1f", energy))
	row("Contacts", fmt.Sprintf("%d", m.contacts))
	row("Wall hits", fmt.Sprintf("%d", m.wallHits))
	row("Rule", string(t.Params().Rule))

	if m.initialEnergy > 0 {
		s.WriteString(MetricLabel.Render("Retained") + ProgressBar(energy/m.initialEnergy, 20) + "\n")
	}

	speeds := make([]float64, len(discs))
	for i, d := range discs {
		speeds[i] = d.Speed()
	}
	s.WriteString(MetricLabel.Render("Speeds") + Sparkline(speeds) + "\n")

	s.WriteString("\n" + Separator(30) + "\n")
	for i, d := range discs {
		if i >= 8 {
			s.WriteString(Subtle.Render(fmt.Sprintf("  … %d more", len(discs)-i)) + "\n")
			break
		}
		label := d.Label
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		dot := lipgloss.NewStyle().Foreground(DiscColor(d.Color)).Render("●")
		s.WriteString(fmt.Sprintf("%s %-4s %6.1f\n", dot, label, d.Speed()))
	}

	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\n+/-:Speed W:Trails ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.Render())
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step when paused  ║
║  R        - Reset table              ║
║  + / -    - Faster / slower          ║
║  W        - Toggle trails            ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n" + mainView
	}
	return mainView
}

// Run starts a full-screen live view.
func Run(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Table exposes the simulated table, mostly for tests.
func (m Model) Table() *physics.Table { return m.sim.Table() }
