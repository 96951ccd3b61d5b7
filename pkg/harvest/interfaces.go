package harvest

import (
	"context"

	"dyscraper/pkg/douyin"
)

// PageFetcher defines the single API operation the harvester needs
type PageFetcher interface {
	FetchPage(ctx context.Context, secUserID, cursor string) (*douyin.Page, error)
}

// Recorder receives counters about a run. *metrics.Collector satisfies it.
type Recorder interface {
	RequestSucceeded()
	RequestFailed(err error)
	Retried()
	Exhausted()
	PageProcessed(kept, dropped int)
}

type nopRecorder struct{}

func (nopRecorder) RequestSucceeded()      {}
func (nopRecorder) RequestFailed(error)    {}
func (nopRecorder) Retried()               {}
func (nopRecorder) Exhausted()             {}
func (nopRecorder) PageProcessed(int, int) {}
