package tui

import (
	"errors"
	"io"
	"testing"
	"time"

	"dyscraper/pkg/export"
	"dyscraper/pkg/harvest"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelAppliesStatuses(t *testing.T) {
	model := NewModel("sec-user", nil)

	model.ApplyStatus(harvest.Status{Kind: harvest.StatusStarted, Message: "Starting video data collection for sec-user..."})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusFetching, Message: "Fetching videos, cursor: 0...", Page: 1, Attempt: 1, Cursor: "0"})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusRetrying, Message: "Attempt 1 failed: boom", Page: 1, Attempt: 1})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusFetching, Message: "Fetching videos, cursor: 0 (attempt 2)...", Page: 1, Attempt: 2, Cursor: "0"})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusPage, Message: "Found 3 videos (total: 3)", Page: 1, Found: 3, Total: 3})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusFetching, Message: "Fetching videos, cursor: 17...", Page: 2, Attempt: 1, Cursor: "17"})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusPage, Message: "Found 1 videos (total: 4)", Page: 2, Found: 1, Total: 4})

	assert.Equal(t, StateHarvesting, model.State())
	assert.Equal(t, 2, model.page)
	assert.Equal(t, "17", model.cursor)
	assert.Equal(t, 1, model.lastSeen)
	assert.Equal(t, 4, model.Total())
	assert.Equal(t, 1, model.retries)
	assert.InDelta(t, 2.0, model.VideosPerPage(), 0.001)
	assert.Equal(t, "Found 1 videos (total: 4)", model.current)

	model.ApplyStatus(harvest.Status{Kind: harvest.StatusDone, Message: "Collected 4 videos from 2 pages", Page: 2, Total: 4})
	assert.Equal(t, StateExporting, model.State())

	model.ApplyExport(&export.Summary{JSONCount: 4, URLCount: 4, Files: []string{"a.json", "b.txt"}})
	model.Finish(nil)
	assert.Equal(t, StateDone, model.State())
	assert.True(t, model.Finished())

	var messages []string
	for _, l := range model.logLines {
		messages = append(messages, l.Message)
	}
	assert.Contains(t, messages, "Wrote a.json")
	assert.Contains(t, messages, "Attempt 1 failed: boom")
}

func TestModelLogsLatestDescription(t *testing.T) {
	model := NewModel("sec-user", nil)
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusPage, Message: "Found 2 videos (total: 2)", Page: 1, Found: 2, Total: 2, Latest: "sunset at the beach"})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusPage, Message: "Found 0 videos (total: 2)", Page: 2, Total: 2})

	var messages []string
	for _, l := range model.logLines {
		messages = append(messages, l.Message)
	}
	assert.Equal(t, []string{
		"Page 1: Found 2 videos (total: 2)",
		"Latest: sunset at the beach",
		"Page 2: Found 0 videos (total: 2)",
	}, messages)
}

func TestModelFailure(t *testing.T) {
	model := NewModel("sec-user", nil)
	model.Finish(errors.New("page 1 (cursor 0): HTTP Error: 403"))

	assert.Equal(t, StateFailed, model.State())
	assert.Equal(t, "page 1 (cursor 0): HTTP Error: 403", model.current)
	assert.Equal(t, "ERROR", model.logLines[len(model.logLines)-1].Level)
}

func TestModelLogLimit(t *testing.T) {
	model := NewModel("sec-user", nil)
	for i := 0; i < 60; i++ {
		model.AddLogLine("INFO", "line")
	}
	assert.Len(t, model.logLines, 50)
}

func TestQuitCallsOnQuitWhileRunning(t *testing.T) {
	quits := 0
	model := NewModel("sec-user", func() { quits++ })

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, quits)

	model.Finish(nil)
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Equal(t, 1, quits, "no cancel once the run has ended")
}

func TestUpdateFinishedQuits(t *testing.T) {
	model := NewModel("sec-user", nil)

	_, cmd := model.Update(FinishedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView(t *testing.T) {
	model := NewModel("sec-user", nil)
	assert.Equal(t, "Initializing...", model.View())

	model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model.ApplyStatus(harvest.Status{Kind: harvest.StatusPage, Message: "Found 2 videos (total: 2)", Page: 1, Found: 2, Total: 2})

	view := model.View()
	assert.Contains(t, view, "HARVESTING")
	assert.Contains(t, view, "sec-user")
	assert.Contains(t, view, "2 videos")

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Contains(t, model.View(), "Stop the harvest")
}

func TestTUIRunsToCompletion(t *testing.T) {
	ui := New("sec-user", nil, tea.WithInput(nil), tea.WithOutput(io.Discard))

	go func() {
		ui.Handle(harvest.Status{Kind: harvest.StatusStarted, Message: "start"})
		ui.Handle(harvest.Status{Kind: harvest.StatusPage, Message: "Found 1 videos (total: 1)", Page: 1, Found: 1, Total: 1})
		ui.Handle(harvest.Status{Kind: harvest.StatusDone, Message: "Collected 1 videos from 1 pages", Page: 1, Total: 1})
		ui.Exported(&export.Summary{JSONCount: 1, URLCount: 1})
		ui.Finish(nil)
	}()

	done := make(chan error, 1)
	go func() { done <- ui.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		ui.kill()
		t.Fatal("TUI did not exit")
	}
	assert.Equal(t, StateDone, ui.State())
}

func TestTruncateAndFormat(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "01:05", formatDuration(65*time.Second))
	assert.Equal(t, "01:00:01", formatDuration(time.Hour+time.Second))
	assert.Equal(t, "HARVESTING", StateHarvesting.String())
}
