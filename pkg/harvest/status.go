package harvest

import "fmt"

// StatusKind classifies a status update
type StatusKind string

const (
	StatusStarted  StatusKind = "started"
	StatusFetching StatusKind = "fetching"
	StatusRetrying StatusKind = "retrying"
	StatusPage     StatusKind = "page"
	StatusDone     StatusKind = "done"
	StatusFailed   StatusKind = "failed"
)

// Status is an advisory, human-readable progress update. Consumers must
// not block; the harvest never depends on them.
type Status struct {
	Kind    StatusKind
	Message string
	Page    int
	Attempt int
	Cursor  string
	Found   int
	Total   int
	// Latest is the short description of the last video kept on a page
	Latest string
	Err    error
}

// StatusFunc consumes status updates
type StatusFunc func(Status)

func startedStatus(secUserID string) Status {
	return Status{Kind: StatusStarted, Message: fmt.Sprintf("Starting video data collection for %s...", secUserID)}
}

func fetchingStatus(page, attempt int, cursor string) Status {
	msg := fmt.Sprintf("Fetching videos, cursor: %s...", cursor)
	if attempt > 1 {
		msg = fmt.Sprintf("Fetching videos, cursor: %s (attempt %d)...", cursor, attempt)
	}
	return Status{Kind: StatusFetching, Message: msg, Page: page, Attempt: attempt, Cursor: cursor}
}

func retryingStatus(page, attempt int, cursor string, err error) Status {
	return Status{
		Kind:    StatusRetrying,
		Message: fmt.Sprintf("Attempt %d failed: %v", attempt, err),
		Page:    page,
		Attempt: attempt,
		Cursor:  cursor,
		Err:     err,
	}
}

func pageStatus(page, found, total int, cursor, latest string) Status {
	return Status{
		Kind:    StatusPage,
		Message: fmt.Sprintf("Found %d videos (total: %d)", found, total),
		Page:    page,
		Cursor:  cursor,
		Found:   found,
		Total:   total,
		Latest:  latest,
	}
}

func doneStatus(pages, total int) Status {
	if total == 0 {
		return Status{Kind: StatusDone, Message: "No videos found for this user", Page: pages}
	}
	return Status{Kind: StatusDone, Message: fmt.Sprintf("Collected %d videos from %d pages", total, pages), Page: pages, Total: total}
}

func failedStatus(page int, err error) Status {
	return Status{Kind: StatusFailed, Message: fmt.Sprintf("Error: %v", err), Page: page, Err: err}
}
