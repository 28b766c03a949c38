// Package tui is the terminal front end of the console: a Bubble Tea
// program that shows presented frames and turns keys into input pins,
// locally or over SSH via Wish.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FrameMsg carries a rendered frame from the display worker.
type FrameMsg string

// Model is the Bubble Tea model in front of a console. It shows the latest
// presented frame and feeds keys to the latch; the console itself runs on
// the frame loop.
type Model struct {
	latch *Latch
	keys  KeyMap
	help  help.Model

	title    string
	frame    string
	width    int
	height   int
	quitting bool

	shell  lipgloss.Style
	status lipgloss.Style
}

// NewModel creates a model. r styles the bezel; nil uses standard output.
func NewModel(latch *Latch, keys KeyMap, title string, r *lipgloss.Renderer) Model {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	h := help.New()
	h.Styles.ShortKey = r.NewStyle().Foreground(lipgloss.Color("245"))
	h.Styles.ShortDesc = r.NewStyle().Foreground(lipgloss.Color("240"))
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc

	return Model{
		latch: latch,
		keys:  keys,
		help:  h,
		title: title,
		shell: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		status: r.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
	}
}

// Init sets the window title. Frames arrive as FrameMsg.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle(m.title)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.BlurMsg:
		m.latch.ReleaseAll()
		return m, nil

	case FrameMsg:
		m.frame = string(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if pin, ok := m.keys.Pin(msg); ok {
		m.latch.Press(pin)
	}
	return m, nil
}

// View renders the console screen inside its bezel.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		m.shell.Render(m.frame),
		m.status.Render(m.title),
		m.help.View(m.keys),
	)
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}
