package ui

import (
	"bytes"
	"errors"
	"testing"

	"dyscraper/pkg/export"
	"dyscraper/pkg/harvest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPrinterHandle(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf, false)

	p.Handle(harvest.Status{Kind: harvest.StatusStarted, Message: "Starting video data collection for abc..."})
	p.Handle(harvest.Status{Kind: harvest.StatusFetching, Message: "Fetching videos, cursor: 0...", Page: 1, Attempt: 1})
	p.Handle(harvest.Status{Kind: harvest.StatusRetrying, Message: "Attempt 1 failed: boom", Page: 1, Attempt: 1})
	p.Handle(harvest.Status{Kind: harvest.StatusFetching, Message: "Fetching videos, cursor: 0 (attempt 2)...", Page: 1, Attempt: 2})
	p.Handle(harvest.Status{Kind: harvest.StatusPage, Message: "Found 2 videos (total: 2)", Page: 1, Found: 2, Total: 2})
	p.Handle(harvest.Status{Kind: harvest.StatusDone, Message: "Collected 2 videos from 1 pages", Page: 1, Total: 2})

	out := buf.String()
	assert.Contains(t, out, "Starting video data collection for abc...")
	assert.NotContains(t, out, "Fetching videos, cursor: 0...", "first attempts are quiet unless verbose")
	assert.Contains(t, out, "(attempt 2)")
	assert.Contains(t, out, "Attempt 1 failed: boom")
	assert.Contains(t, out, "Found 2 videos (total: 2)")
	assert.Contains(t, out, "Collected 2 videos from 1 pages")

	stats := p.Stats()
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Retries)
}

func TestStatusPrinterVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf, true)

	p.Handle(harvest.Status{Kind: harvest.StatusFetching, Message: "Fetching videos, cursor: 0...", Page: 1, Attempt: 1})
	assert.Contains(t, buf.String(), "Fetching videos, cursor: 0...")

	p.Handle(harvest.Status{Kind: harvest.StatusPage, Message: "Found 1 videos (total: 1)", Page: 1, Found: 1, Total: 1, Latest: "sunset at the beach"})
	assert.Contains(t, buf.String(), "latest: sunset at the beach")
}

func TestStatusPrinterLatestOnlyWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf, false)

	p.Handle(harvest.Status{Kind: harvest.StatusPage, Message: "Found 1 videos (total: 1)", Page: 1, Found: 1, Total: 1, Latest: "sunset at the beach"})
	assert.Contains(t, buf.String(), "Found 1 videos (total: 1)")
	assert.NotContains(t, buf.String(), "sunset at the beach")
}

func TestStatusPrinterAsStatusFunc(t *testing.T) {
	var buf bytes.Buffer
	var fn harvest.StatusFunc = NewStatusPrinter(&buf, false).Handle
	fn(harvest.Status{Kind: harvest.StatusFailed, Message: "Error: HTTP Error: 403"})
	assert.Contains(t, buf.String(), "Error: HTTP Error: 403")
}

func TestStatusPrinterExported(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf, false)

	p.Exported(&export.Summary{Empty: true})
	assert.Contains(t, buf.String(), "No videos found")

	buf.Reset()
	p.Exported(&export.Summary{JSONCount: 3, URLCount: 3, Files: []string{"out/a.json", "out/b.txt"}})
	assert.Contains(t, buf.String(), "out/a.json")
	assert.Contains(t, buf.String(), "out/b.txt")
	assert.Contains(t, buf.String(), "JSON records: 3 | URLs: 3")
	assert.NotContains(t, buf.String(), "YAML")

	buf.Reset()
	p.Finish(errors.New("page 2 (cursor 9): boom"))
	assert.Contains(t, buf.String(), "page 2 (cursor 9): boom")

	buf.Reset()
	p.Finish(nil)
	assert.Empty(t, buf.String())
}

type recordingSender struct {
	titles   []string
	messages []string
	err      error
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return r.err
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{err: errors.New("no display")}
	n := NewNotifierWithSender(&buf, sender)

	n.SendSuccess("dyscraper", "Collected 12 videos")
	n.SendError("dyscraper", "Harvest failed")

	require.Len(t, sender.messages, 2)
	assert.Equal(t, "Collected 12 videos", sender.messages[0])
	assert.Contains(t, buf.String(), "Harvest failed")

	printOnly := NewNotifierWithSender(&buf, nil)
	assert.NotPanics(t, func() { printOnly.SendSuccess("t", "m") })
}

func TestEscaping(t *testing.T) {
	assert.Equal(t, `say \"hi\"`, escapeAppleScript(`say "hi"`))
	assert.Equal(t, "it''s", escapePowerShell("it's"))
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	old := Out
	Out = &buf
	defer func() { Out = old }()

	PrintInfo("Profile", "abc")
	PrintError("Failed", errors.New("x"))
	PrintWarning("Careful")
	PrintSuccess("Done")

	out := buf.String()
	assert.Contains(t, out, "Profile")
	assert.Contains(t, out, "Failed: x")
	assert.Contains(t, out, "Careful")
	assert.Contains(t, out, "Done")
}

var _ Reporter = (*StatusPrinter)(nil)
