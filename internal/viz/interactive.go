package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/physics"
)

var presetInfo = map[string]string{
	"reference": "cue into three resting discs",
	"rack":      "fifteen-disc triangle break",
	"corner":    "shot into the corner rails",
	"crowd":     "overlapping discs pushed apart",
	"rest":      "nothing moves",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// option is one toggle on the config screen.
type option struct {
	name   string
	values []string
	get    func(*config.Config) string
	set    func(*config.Config, string)
}

var options = []option{
	{
		name:   "rule",
		values: []string{string(physics.RuleSpeedSwap), string(physics.RuleRotated)},
		get:    func(c *config.Config) string { return c.Physics.CollisionRule },
		set:    func(c *config.Config, v string) { c.Physics.CollisionRule = v },
	},
	{
		name:   "contact",
		values: []string{string(physics.ContactRadius), string(physics.ContactDiameter)},
		get:    func(c *config.Config) string { return c.Physics.Contact },
		set:    func(c *config.Config, v string) { c.Physics.Contact = v },
	},
	{
		name:   "host_decay",
		values: []string{"true", "false"},
		get:    func(c *config.Config) string { return fmt.Sprint(c.Run.HostDecay) },
		set:    func(c *config.Config, v string) { c.Run.HostDecay = v == "true" },
	},
	{
		name:   "theme",
		values: ThemeNames(),
		get:    func(*config.Config) string { return CurrentTheme.Name },
		set:    func(_ *config.Config, v string) { SetTheme(v) },
	},
}

// Picker lists the presets, lets the user flip a few switches and then
// hands over to a live Model.
type Picker struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	optCursor     int
	live          Model
	err           error
}

func NewPicker() Picker {
	return Picker{
		state:   stateMenu,
		presets: config.ListPresets(),
	}
}

func (m Picker) Init() tea.Cmd { return nil }

func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.live.Update(msg)
			m.live = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m Picker) handleKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.live.Update(msg)
		m.live = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m Picker) menuKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.optCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m Picker) configKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.optCursor > 0 {
			m.optCursor--
		}
	case "down", "j":
		if m.optCursor < len(options)-1 {
			m.optCursor++
		}
	case "enter", " ", "right", "l":
		m.cycle(1)
	case "left", "h":
		m.cycle(-1)
	case "s":
		live, err := NewModel(m.cfg)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.live, m.state = live, stateSim
		return m, m.live.Init()
	}
	return m, nil
}

func (m *Picker) cycle(dir int) {
	opt := options[m.optCursor]
	cur := opt.get(m.cfg)
	idx := 0
	for i, v := range opt.values {
		if v == cur {
			idx = i
			break
		}
	}
	n := len(opt.values)
	opt.set(m.cfg, opt.values[((idx+dir)%n+n)%n])
}

func (m Picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

var (
	pickHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickArrow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pickKey.Render(pairs[i]) + pickIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m Picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickHeader.Render("BILLIARD") + "\n    " + pickSub.Render("rigid disc table") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickArrow.Render("▸"), pickActive.Render(fmt.Sprintf("%-12s", name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", pickIdle.Render(fmt.Sprintf("  %-12s", name)), pickIdle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m Picker) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickHeader.Render(strings.ToUpper(m.cfg.Name)) + "\n    " + pickSub.Render(presetInfo[m.cfg.Name]) + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, opt := range options {
		val := opt.get(m.cfg)
		if i == m.optCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", pickArrow.Render("▸"), pickActive.Render(fmt.Sprintf("%-12s", opt.name)), pickDesc.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", pickIdle.Render(fmt.Sprintf("  %-12s", opt.name)), pickIdle.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusRecording.UnsetBlink().Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "change", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunPicker starts the preset menu full screen.
func RunPicker() error {
	_, err := tea.NewProgram(NewPicker(), tea.WithAltScreen()).Run()
	return err
}
