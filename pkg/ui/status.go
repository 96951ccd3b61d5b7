package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"dyscraper/pkg/export"
	"dyscraper/pkg/harvest"
)

// Reporter consumes the lifecycle of one CLI run: status updates while
// harvesting, then the export outcome.
type Reporter interface {
	Handle(s harvest.Status)
	Exported(summary *export.Summary)
	Finish(err error)
}

// Stats are the counts a StatusPrinter has seen
type Stats struct {
	Pages   int
	Total   int
	Retries int
	Elapsed time.Duration
}

// StatusPrinter renders status updates as colored lines
type StatusPrinter struct {
	mu        sync.Mutex
	out       io.Writer
	verbose   bool
	pages     int
	total     int
	retries   int
	startTime time.Time
}

// NewStatusPrinter creates a printer. In verbose mode every fetch attempt
// is printed, not only retries.
func NewStatusPrinter(out io.Writer, verbose bool) *StatusPrinter {
	return &StatusPrinter{
		out:       out,
		verbose:   verbose,
		startTime: time.Now(),
	}
}

// Handle prints one status update. It can be passed directly as a
// harvest.StatusFunc.
func (p *StatusPrinter) Handle(s harvest.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch s.Kind {
	case harvest.StatusStarted:
		p.startTime = time.Now()
		fmt.Fprintf(p.out, "%s %s\n", Magenta("[START]"), s.Message)
	case harvest.StatusFetching:
		if p.verbose || s.Attempt > 1 {
			fmt.Fprintf(p.out, "%s %s\n", Dim(fmt.Sprintf("[PAGE %d]", s.Page)), Dim(s.Message))
		}
	case harvest.StatusRetrying:
		p.retries++
		fmt.Fprintf(p.out, "%s %s\n", Yellow("[RETRY]"), Yellow(s.Message))
	case harvest.StatusPage:
		p.pages = s.Page
		p.total = s.Total
		fmt.Fprintf(p.out, "%s %s\n", Green(fmt.Sprintf("[PAGE %d]", s.Page)), s.Message)
		if p.verbose && s.Latest != "" {
			fmt.Fprintf(p.out, "         %s\n", Dim("latest: "+s.Latest))
		}
	case harvest.StatusDone:
		if s.Total == 0 {
			fmt.Fprintf(p.out, "%s %s\n", Yellow("[DONE]"), Yellow(s.Message))
		} else {
			fmt.Fprintf(p.out, "%s %s %s\n", Green("[DONE]"), s.Message, Dim("in "+formatElapsed(time.Since(p.startTime))))
		}
	case harvest.StatusFailed:
		fmt.Fprintf(p.out, "%s %s\n", Red("[FAILED]"), Red(s.Message))
	}
}

// Exported prints where the artifacts went
func (p *StatusPrinter) Exported(summary *export.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if summary == nil {
		return
	}
	if summary.Empty {
		fmt.Fprintf(p.out, "%s %s\n", Yellow("[EXPORT]"), Yellow("No videos found, nothing was written"))
		return
	}
	for _, path := range summary.Files {
		fmt.Fprintf(p.out, "%s %s\n", Cyan("[EXPORT]"), path)
	}
	fmt.Fprintf(p.out, "%s JSON records: %d | URLs: %d", Green("[SAVED]"), summary.JSONCount, summary.URLCount)
	if summary.YAMLCount > 0 {
		fmt.Fprintf(p.out, " | YAML records: %d", summary.YAMLCount)
	}
	fmt.Fprintln(p.out)
}

// Finish prints the final error, if any
func (p *StatusPrinter) Finish(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %v\n", Red("[ERROR]"), err)
}

// Stats returns the counts seen so far
func (p *StatusPrinter) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Pages:   p.pages,
		Total:   p.total,
		Retries: p.retries,
		Elapsed: time.Since(p.startTime),
	}
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
