package tui

import (
	"fmt"
	"time"

	"dyscraper/pkg/export"
	"dyscraper/pkg/harvest"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RunState is the phase the view is showing
type RunState int

const (
	StateHarvesting RunState = iota
	StateExporting
	StateDone
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateHarvesting:
		return "HARVESTING"
	case StateExporting:
		return "EXPORTING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// LogLine is one entry of the activity panel
type LogLine struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the bubbletea model of one harvest run. All mutation happens in
// Update, which bubbletea calls from a single goroutine.
type Model struct {
	spinner spinner.Model

	secUserID string
	state     RunState
	current   string

	page     int
	attempt  int
	cursor   string
	lastSeen int
	total    int
	retries  int

	summary *export.Summary
	err     error

	startTime time.Time
	endTime   time.Time

	width       int
	height      int
	showHelp    bool
	logLines    []LogLine
	maxLogLines int

	// onQuit runs when the user leaves before the run ends
	onQuit func()
}

// NewModel creates the view for a harvest of secUserID
func NewModel(secUserID string, onQuit func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	return &Model{
		spinner:     s,
		secUserID:   secUserID,
		state:       StateHarvesting,
		current:     "Waiting for first page...",
		startTime:   time.Now(),
		maxLogLines: 50,
		onQuit:      onQuit,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// ApplyStatus folds a harvest status update into the model
func (m *Model) ApplyStatus(s harvest.Status) {
	m.current = s.Message

	switch s.Kind {
	case harvest.StatusStarted:
		m.AddLogLine("INFO", s.Message)
	case harvest.StatusFetching:
		m.page = s.Page
		m.attempt = s.Attempt
		m.cursor = s.Cursor
	case harvest.StatusRetrying:
		m.retries++
		m.AddLogLine("WARN", s.Message)
	case harvest.StatusPage:
		m.page = s.Page
		m.lastSeen = s.Found
		m.total = s.Total
		m.AddLogLine("SUCCESS", fmt.Sprintf("Page %d: %s", s.Page, s.Message))
		if s.Latest != "" {
			m.AddLogLine("INFO", "Latest: "+s.Latest)
		}
	case harvest.StatusDone:
		m.total = s.Total
		m.state = StateExporting
		m.AddLogLine("SUCCESS", s.Message)
	case harvest.StatusFailed:
		m.AddLogLine("ERROR", s.Message)
	}
}

// ApplyExport records the export outcome
func (m *Model) ApplyExport(summary *export.Summary) {
	m.summary = summary
	if summary == nil {
		return
	}
	if summary.Empty {
		m.AddLogLine("WARN", "No videos found, nothing was written")
		return
	}
	for _, path := range summary.Files {
		m.AddLogLine("SUCCESS", "Wrote "+path)
	}
}

// Finish marks the run as over
func (m *Model) Finish(err error) {
	m.endTime = time.Now()
	m.err = err
	if err != nil {
		m.state = StateFailed
		m.current = err.Error()
		m.AddLogLine("ERROR", err.Error())
		return
	}
	m.state = StateDone
	m.current = fmt.Sprintf("Collected %d videos", m.total)
}

// AddLogLine appends to the activity panel, keeping the newest entries
func (m *Model) AddLogLine(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logLines = append(m.logLines, LogLine{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})
	if len(m.logLines) > m.maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-m.maxLogLines:]
	}
}

// State returns the current phase
func (m *Model) State() RunState {
	return m.state
}

// Total returns the number of videos collected so far
func (m *Model) Total() int {
	return m.total
}

// Elapsed returns the run time so far, or the final run time once finished
func (m *Model) Elapsed() time.Duration {
	if !m.endTime.IsZero() {
		return m.endTime.Sub(m.startTime)
	}
	return time.Since(m.startTime)
}

// Finished reports whether the run has ended
func (m *Model) Finished() bool {
	return m.state == StateDone || m.state == StateFailed
}

// VideosPerPage returns the average number of kept videos per page
func (m *Model) VideosPerPage() float64 {
	if m.page == 0 {
		return 0
	}
	return float64(m.total) / float64(m.page)
}
