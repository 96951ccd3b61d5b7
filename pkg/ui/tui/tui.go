package tui

import (
	"dyscraper/pkg/export"
	"dyscraper/pkg/harvest"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI runs the full-screen harvest view. Its Handle, Exported and Finish
// methods may be called from any goroutine.
type TUI struct {
	program *tea.Program
	model   *Model
}

// New creates a TUI for secUserID. onQuit is called if the user quits
// before the run ends, typically a context cancel.
func New(secUserID string, onQuit func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(secUserID, onQuit)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Run blocks until the run finishes or the user quits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Handle forwards a status update; usable as a harvest.StatusFunc
func (t *TUI) Handle(s harvest.Status) {
	t.program.Send(StatusMsg{Status: s})
}

// Exported forwards the export outcome
func (t *TUI) Exported(summary *export.Summary) {
	t.program.Send(ExportMsg{Summary: summary})
}

// Finish ends the run and closes the view
func (t *TUI) Finish(err error) {
	t.program.Send(FinishedMsg{Err: err})
}

// kill stops the program without waiting for a final message
func (t *TUI) kill() {
	t.program.Kill()
}

// State returns the final phase once Run has returned
func (t *TUI) State() RunState {
	return t.model.State()
}
