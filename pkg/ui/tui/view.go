package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const logo = `╔═══════════════════════════════════════╗
║   D Y S C R A P E R  ::  HARVESTER    ║
╚═══════════════════════════════════════╝`

// View renders the entire TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, logoStyle.Width(m.width).Render(logo))

	width := (m.width - 4) / 2
	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderStatsPanel(width),
		"  ",
		m.renderLogsPanel(width),
	)
	sections = append(sections, mainContent, m.renderCurrent())

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help, q to quit"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" HARVEST ")

	cursor := m.cursor
	if cursor == "" {
		cursor = "-"
	}

	rows := [][2]string{
		{"Profile:", m.secUserID},
		{"Elapsed:", formatDuration(m.Elapsed())},
		{"Page:", fmt.Sprintf("%d (attempt %d)", m.page, m.attempt)},
		{"Cursor:", cursor},
		{"Last page:", fmt.Sprintf("%d videos", m.lastSeen)},
		{"Collected:", fmt.Sprintf("%d videos", m.total)},
		{"Per page:", fmt.Sprintf("%.1f", m.VideosPerPage())},
		{"Retries:", fmt.Sprintf("%d", m.retries)},
	}

	lines := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("State:"), StateStyle(m.state).Render(m.state.String())),
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", statsLabelStyle.Render(row[0]), statsValueStyle.Render(truncate(row[1], width-16))))
	}

	if m.summary != nil && !m.summary.Empty {
		lines = append(lines, "", successStyle.Render(fmt.Sprintf("JSON: %d  URLs: %d", m.summary.JSONCount, m.summary.URLCount)))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
}

func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" ACTIVITY ")

	start := len(m.logLines) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for _, line := range m.logLines[start:] {
		timestamp := logTimestampStyle.Render(line.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(line.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", line.Level))
		message := logMessageStyle.Render(truncate(line.Message, width-25))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No activity yet...")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderCurrent() string {
	prefix := m.spinner.View()
	switch m.state {
	case StateDone:
		prefix = successStyle.Render("✓")
	case StateFailed:
		prefix = errorStyle.Render("✗")
	}
	return lipgloss.NewStyle().Padding(1, 0, 0, 2).Render(prefix + " " + m.current)
}

func (m *Model) renderHelp() string {
	help := `
  Keys:
    q/Q, ctrl+c  - Stop the harvest and quit
    ctrl+l       - Clear activity
    ?            - Toggle this help

  States:
    ` + statsValueStyle.Render("HARVESTING") + `  - Fetching pages
    ` + warningStyle.Render("EXPORTING") + `   - Writing artifacts
    ` + successStyle.Render("DONE") + `        - Finished
    ` + errorStyle.Render("FAILED") + `      - A page failed every attempt
`

	return panelStyle.Width(m.width).Render(help)
}

// truncate shortens s to max runes, marking the cut
func truncate(s string, max int) string {
	if max <= 3 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// formatDuration formats a duration as [hh:]mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
