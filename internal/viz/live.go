package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/horizon/internal/config"
	"github.com/san-kum/horizon/internal/sim"
)

const (
	width           = 70
	height          = 28
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model drives the controller once per tick and renders a top-down view of
// the disk: particles as braille dots, the event horizon as a ring.
type Model struct {
	controller    *sim.Controller
	newController func() (*sim.Controller, error)
	cfg           *config.Config

	canvas     *Canvas
	viewRadius float64

	paused        bool
	speed         float64
	pendingSpawns []sim.SpawnRequest

	status        sim.Status
	activeHistory []float64
	stepErr       error
}

func NewModel(newController func() (*sim.Controller, error), cfg *config.Config) (Model, error) {
	controller, err := newController()
	if err != nil {
		return Model{}, err
	}

	rs := controller.BlackHole().SchwarzschildRadius()
	return Model{
		controller:    controller,
		newController: newController,
		cfg:           cfg,
		canvas:        NewCanvas(width, height),
		viewRadius:    2.0 * cfg.Run.SpawnRadiusFactor * rs,
		speed:         1.0,
		pendingSpawns: sim.SpawnDisk(controller.BlackHole(),
			cfg.Run.SpawnCount, cfg.Run.SpawnRadiusFactor, cfg.Run.Seed),
		activeHistory: make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.controller.Terminate()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.reset()
		case "+", "=":
			m.speed *= 2
		case "-", "_":
			if m.speed > 0.125 {
				m.speed /= 2
			}
		}
	case TickMsg:
		m.step()
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	status, err := m.controller.Step(m.cfg.Physics.TimeStep, sim.Params{
		Paused:          m.paused,
		SpeedMultiplier: m.speed,
		SpawnRequests:   m.pendingSpawns,
	})
	m.pendingSpawns = nil
	if err != nil {
		m.stepErr = err
		return
	}
	m.status = status

	if !m.paused {
		m.activeHistory = append(m.activeHistory, float64(status.ActiveParticles))
		if len(m.activeHistory) > historyCapacity {
			m.activeHistory = m.activeHistory[1:]
		}
	}
}

func (m *Model) reset() {
	controller, err := m.newController()
	if err != nil {
		m.stepErr = err
		return
	}
	m.controller.Terminate()
	m.controller = controller
	m.pendingSpawns = sim.SpawnDisk(controller.BlackHole(),
		m.cfg.Run.SpawnCount, m.cfg.Run.SpawnRadiusFactor, m.cfg.Run.Seed)
	m.activeHistory = m.activeHistory[:0]
	m.status = sim.Status{}
	m.stepErr = nil
}

func (m *Model) draw() {
	m.canvas.Clear()

	cw, ch := width*2, height*4
	cx, cy := cw/2, ch/2
	scale := float64(cy) / m.viewRadius

	bh := m.controller.BlackHole()
	center := bh.Position()

	m.canvas.DrawCircle(cx, cy, bh.SchwarzschildRadius()*scale)
	m.canvas.DrawCircle(cx, cy, bh.PhotonSphereRadius()*scale)

	for _, v := range m.controller.Snapshot() {
		if !v.Active {
			continue
		}
		rel := v.Position.Sub(center)
		m.canvas.Set(cx+int(rel.X*scale), cy-int(rel.Y*scale))
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("HORIZON") + "\n")

	state := "RUNNING"
	if m.paused {
		state = "PAUSED"
	}
	s.WriteString(state + "\n\n")

	if len(m.activeHistory) > 1 {
		chart := asciigraph.Plot(m.activeHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Active particles"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.status.Time)) + "\n")
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d", m.status.Frame)) + "\n")
	s.WriteString(labelStyle.Render("Active") + valueStyle.Render(fmt.Sprintf("%d", m.status.ActiveParticles)) + "\n")
	s.WriteString(labelStyle.Render("Mode") + valueStyle.Render(string(m.status.Mode)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%gx", m.speed)) + "\n")

	if m.status.Faulted {
		s.WriteString(labelStyle.Render("Device") + faultStyle.Render("FAULT: "+m.status.FaultReason) + "\n")
	}
	if m.stepErr != nil {
		s.WriteString(faultStyle.Render("error: "+m.stepErr.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Speed"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
