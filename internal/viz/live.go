package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/polycryst/internal/engine"
	"github.com/san-kum/polycryst/internal/orientation"
)

const (
	canvasWidth     = 30
	canvasHeight    = 15
	historyCapacity = 600
	maxStepsPerTick = 256
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps an engine on every tick and renders its aggregate state.
type Model struct {
	eng          *engine.Engine
	name         string
	canvas       *Canvas
	family       int
	running      bool
	done         bool
	err          error
	stepsPerTick int
	showHelp     bool

	snap    engine.Snapshot
	strain  []float64
	stress  []float64
	grains  []float64
	started time.Time
}

// NewModel wraps eng, which must not be stepped elsewhere while the model
// runs.
func NewModel(eng *engine.Engine, name string) Model {
	m := Model{
		eng:          eng,
		name:         name,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		running:      true,
		stepsPerTick: 1,
	}
	m.record()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "f":
			m.family = (m.family + 1) % len(orientation.Families)
		case "t":
			NextTheme()
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick steps, stopping at the configured end.
func (m *Model) advance() {
	if m.started.IsZero() {
		m.started = time.Now()
	}
	limit := m.eng.Params().Steps
	for i := 0; i < m.stepsPerTick; i++ {
		if m.eng.StepIndex() >= limit {
			m.done = true
			break
		}
		if _, err := m.eng.Step(context.Background()); err != nil {
			m.err = err
			m.done = true
			break
		}
	}
	m.record()
}

func (m *Model) record() {
	m.snap = m.eng.Snapshot()
	m.strain = appendCapped(m.strain, m.snap.StrainIntensity)
	m.stress = appendCapped(m.stress, m.snap.StressIntensity)
	m.grains = appendCapped(m.grains, float64(m.snap.Grains))
	DrawPoleFigure(m.canvas, orientation.PoleFigure(m.snap.Orientations, orientation.Families[m.family].Dir))
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) restart() {
	if err := m.eng.Init(); err != nil {
		m.err = err
		m.done = true
		return
	}
	m.err = nil
	m.done = false
	m.started = time.Time{}
	m.strain, m.stress, m.grains = nil, nil, nil
	m.record()
}

func (m Model) View() string {
	fam := orientation.Families[m.family]
	label, value := labelStyle(), valueStyle()

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = errorStyle().Render("FAILED")
	case m.done:
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	steps := m.eng.Params().Steps
	if steps > 0 {
		s.WriteString(ProgressBar(float64(m.snap.Step)/float64(steps), 30) + "\n")
	}

	if len(m.stress) > 1 {
		chart := asciigraph.Plot(m.stress,
			asciigraph.Height(8),
			asciigraph.Width(40),
			asciigraph.Caption("stress intensity, MPa"))
		s.WriteString(graphStyle().Render(chart) + "\n")
	}

	row := func(k, v string) {
		s.WriteString(label.Render(k) + value.Render(v) + "\n")
	}
	row("Step", fmt.Sprintf("%d / %d", m.snap.Step, steps))
	row("Time", fmt.Sprintf("%.4g s", m.snap.Time))
	row("Strain", fmt.Sprintf("%.4g", m.snap.StrainIntensity))
	row("Stress", fmt.Sprintf("%.4g MPa", m.snap.StressIntensity))
	row("Energy", fmt.Sprintf("%.4g", m.snap.MeanEnergy))
	row("Grain size", fmt.Sprintf("%.3g m", m.snap.MeanGrainSize))
	row("Grains", fmt.Sprintf("%d (%d new)", m.snap.Grains, m.snap.Recrystallized))
	row("", Sparkline(m.grains, 30))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick))
	if m.err != nil {
		s.WriteString(errorStyle().Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle().Render("SP:Pause R:Restart Q:Quit\nF:Poles T:Theme +/-:Speed ?:Help"))

	poles := canvasStyle().Render(fmt.Sprintf("{%s} pole figure\n\n%s", fam.Name, m.canvas.String()))
	main := lipgloss.JoinHorizontal(lipgloss.Top, poles, statsStyle().Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + main
	}
	return main
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Restart population       ║
║  Q        - Quit                     ║
║  F        - Cycle pole family        ║
║  T        - Cycle themes             ║
║  + / -    - Steps per frame          ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
