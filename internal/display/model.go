package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/input"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#27272a")).
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	barDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	barTodoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))
)

// Body rows, counted from the top of the screen.
const (
	bodyTop   = 3
	indent    = "  "
	barMaxLen = 40
)

// Messages.
type (
	phaseMsg string
	timeMsg  string
	stateMsg domain.CountdownState
)

type model struct {
	title    string
	phase    string
	clock    string
	state    domain.CountdownState
	hasState bool

	help     help.Model
	bindings []key.Binding

	keys    chan<- string
	intr    chan<- struct{}
	readyCh chan struct{}
	width   int
	height  int
}

func newModel(title string, km input.Keymap, keys chan<- string, intr chan<- struct{}, readyCh chan struct{}) model {
	return model{
		title:    title,
		help:     help.New(),
		bindings: km.Bindings(),
		keys:     keys,
		intr:     intr,
		readyCh:  readyCh,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		signalReady(m.readyCh),
		tea.SetWindowTitle(strings.TrimSpace(m.title)),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		k := normalizeKey(msg)
		if k == interruptKey {
			// One pending interrupt is enough; it is never queued behind keys.
			select {
			case m.intr <- struct{}{}:
			default:
			}
			return m, nil
		}
		// Never block the event loop; a full buffer drops the key.
		select {
		case m.keys <- k:
		default:
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case phaseMsg:
		m.phase = string(msg)
		return m, nil

	case timeMsg:
		m.clock = string(msg)
		return m, nil

	case stateMsg:
		m.state = domain.CountdownState(msg)
		m.hasState = true
		return m, tea.SetWindowTitle(m.windowTitle())
	}
	return m, nil
}

func (m model) windowTitle() string {
	if m.state.Paused {
		return fmt.Sprintf("Pomato: %s (paused)", m.state.PhaseName)
	}
	return fmt.Sprintf("Pomato: %s %02d:%02d", m.state.PhaseName, m.state.Remaining/60, m.state.Remaining%60)
}

func (m model) View() string {
	w := m.width
	if w <= 0 {
		w = 80
	}

	lines := []string{
		titleStyle.Width(w).Align(lipgloss.Center).Render(m.title),
	}
	for len(lines) < bodyTop {
		lines = append(lines, "")
	}

	lines = append(lines, indent+phaseStyle.Render(m.phase), "")

	clock := clockStyle
	if m.hasState && m.state.Paused {
		clock = pausedStyle
	}
	lines = append(lines, indent+clock.Render(m.clock))

	if m.hasState && m.state.Total > 0 {
		lines = append(lines, "", indent+renderBar(m.state, w-2*len(indent)))
	}

	footer := indent + m.help.ShortHelpView(m.bindings)
	for m.height > 0 && len(lines) < m.height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, footer)

	return strings.Join(lines, "\n")
}

// renderBar draws elapsed/total as a horizontal bar at most width cells wide.
func renderBar(state domain.CountdownState, width int) string {
	n := barMaxLen
	if width < n {
		n = width
	}
	if n <= 0 || state.Total <= 0 {
		return ""
	}
	done := state.Elapsed() * n / state.Total
	return barDoneStyle.Render(strings.Repeat("█", done)) +
		barTodoStyle.Render(strings.Repeat("░", n-done))
}
