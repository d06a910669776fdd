package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calder-games/assetforge/internal/pipeline"
	"github.com/calder-games/assetforge/internal/stage"
)

// Watch layout constants
const (
	slugColWidth   = 24
	kindColWidth   = 10
	stateColWidth  = 10
	detailColWidth = 36
)

// WatchKeyMap defines the key bindings for the watch screen.
type WatchKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k WatchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k WatchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Quit}}
}

// DefaultWatchKeyMap returns default key bindings.
func DefaultWatchKeyMap() WatchKeyMap {
	return WatchKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// WatchModel is the Bubble Tea model for a live pipeline run. Each
// timer tick runs one coordinator tick and re-renders the published
// snapshot; ticking stops once all assets settle.
type WatchModel struct {
	coord      *pipeline.Coordinator
	root       string
	intervalMS int
	maxTicks   int

	table    table.Model
	spinner  spinner.Model
	help     help.Model
	keys     WatchKeyMap
	width    int
	height   int
	ticks    int
	settled  bool
	quitting bool
}

// NewWatchModel creates a watch model over an admitted coordinator.
func NewWatchModel(coord *pipeline.Coordinator, root string, intervalMS, maxTicks int) WatchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	h := help.New()
	h.ShowAll = false

	m := WatchModel{
		coord:      coord,
		root:       root,
		intervalMS: intervalMS,
		maxTicks:   maxTicks,
		spinner:    sp,
		help:       h,
		keys:       DefaultWatchKeyMap(),
		width:      80,
		height:     24,
	}
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

// createTable creates the readiness table.
func (m *WatchModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Asset", Width: slugColWidth},
		{Title: "Kind", Width: kindColWidth},
		{Title: "State", Width: stateColWidth},
		{Title: "Detail", Width: detailColWidth},
	}

	height := m.height - 7 // Leave room for header, status line, and help
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows refreshes the table from the last published snapshot.
func (m *WatchModel) updateTableRows() {
	assets := m.coord.Assets()
	rows := make([]table.Row, 0, len(assets))
	for _, a := range assets {
		st := m.coord.Status(a.ID)
		detail := ""
		if st.State == stage.StateFailed {
			detail = st.Reason.String()
		}
		rows = append(rows, table.Row{
			a.Slug.String(),
			a.Kind.String(),
			st.State.String(),
			detail,
		})
	}
	m.table.SetRows(rows)
}

// Init starts the spinner and the tick loop.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd(m.intervalMS))
}

// Update handles messages and advances the pipeline on timer ticks.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.updateTableRows()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m.handleTick()
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleTick runs one coordinator tick and stops once settled or the
// tick bound is hit.
func (m WatchModel) handleTick() (tea.Model, tea.Cmd) {
	if m.settled {
		return m, nil
	}

	m.coord.Tick()
	m.ticks++
	m.updateTableRows()

	if m.coord.Settled() || (m.maxTicks > 0 && m.ticks >= m.maxTicks) {
		m.settled = true
		return m, nil
	}
	return m, tickCmd(m.intervalMS)
}

// View renders the watch screen.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(fmt.Sprintf("ASSET PIPELINE - %s", m.root)))
	b.WriteString("\n\n")

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if m.settled {
		done, failed := m.tally()
		b.WriteString(statusStyle.Render(
			fmt.Sprintf("settled after %d ticks: %d complete, %d failed", m.ticks, done, failed)))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(statusStyle.Render(fmt.Sprintf(" tick %d", m.ticks)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// tally counts terminal outcomes in the last snapshot.
func (m WatchModel) tally() (complete, failed int) {
	for _, a := range m.coord.Assets() {
		switch m.coord.Status(a.ID).State {
		case stage.StateComplete:
			complete++
		case stage.StateFailed:
			failed++
		}
	}
	return complete, failed
}

// Settled reports whether the run reached quiescence.
func (m WatchModel) Settled() bool {
	return m.settled
}

// Ticks returns how many ticks the run consumed.
func (m WatchModel) Ticks() int {
	return m.ticks
}

// RunWatch runs the watch screen until the user quits.
func RunWatch(coord *pipeline.Coordinator, root string, intervalMS, maxTicks int) error {
	model := NewWatchModel(coord, root, intervalMS, maxTicks)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
