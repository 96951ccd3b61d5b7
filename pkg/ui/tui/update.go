package tui

import (
	"dyscraper/pkg/export"
	"dyscraper/pkg/harvest"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusMsg carries a harvest status update
type StatusMsg struct {
	Status harvest.Status
}

// ExportMsg carries the export outcome
type ExportMsg struct {
	Summary *export.Summary
}

// FinishedMsg ends the run
type FinishedMsg struct {
	Err error
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.Finished() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StatusMsg:
		m.ApplyStatus(msg.Status)
		return m, nil

	case ExportMsg:
		m.ApplyExport(msg.Summary)
		return m, nil

	case FinishedMsg:
		m.Finish(msg.Err)
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if !m.Finished() && m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logLines = nil
		return m, nil
	}

	return m, nil
}
