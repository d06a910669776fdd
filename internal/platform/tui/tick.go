// Package tui provides the Bubble Tea integration for watching a
// pipeline run. It drives the coordinator clock and renders the live
// readiness table.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a pipeline tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the
// given interval.
func tickCmd(intervalMS int) tea.Cmd {
	if intervalMS <= 0 {
		intervalMS = 50
	}
	return tea.Tick(time.Duration(intervalMS)*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
