package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"dyscraper/pkg/config"
	"dyscraper/pkg/douyin"
	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/metadata"
	"dyscraper/pkg/metrics"
	"dyscraper/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeFetcher replays scripted responses and records every call
type fakeFetcher struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     []fakeCall
}

type fakeResponse struct {
	page *douyin.Page
	err  error
}

type fakeCall struct {
	secUserID string
	cursor    string
	at        time.Time
}

func (f *fakeFetcher) FetchPage(ctx context.Context, secUserID, cursor string) (*douyin.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fakeCall{secUserID: secUserID, cursor: cursor, at: time.Now()})
	if len(f.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r.page, r.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func video(id string) *douyin.Item {
	return &douyin.Item{
		AwemeID: douyin.Token(id),
		Desc:    "desc " + id,
		Video:   &douyin.Video{PlayAddr: &douyin.URLList{URLList: []string{"http://cdn/" + id}}},
	}
}

func page(hasMore bool, cursor string, items ...*douyin.Item) fakeResponse {
	if items == nil {
		items = []*douyin.Item{}
	}
	return fakeResponse{page: &douyin.Page{Items: items, HasMore: douyin.Flag(hasMore), MaxCursor: douyin.Token(cursor)}}
}

func failure(err error) fakeResponse {
	return fakeResponse{err: err}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Retry.Delay = time.Millisecond
	cfg.Pagination.PageDelay = 0
	return cfg
}

func ids(records []metadata.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestHarvestPreservesOrderAcrossPages(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(true, "1700000000000", video("a"), video("b")),
		page(false, "1690000000000", video("c"), video("d")),
	}}
	h := New(fetcher, testConfig(), logger.NewNopLogger())

	records, err := h.Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(records))
	assert.Equal(t, "https://cdn/a", records[0].VideoURL)

	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, douyin.FirstCursor, fetcher.calls[0].cursor)
	assert.Equal(t, "1700000000000", fetcher.calls[1].cursor)
	assert.Equal(t, "sec-user", fetcher.calls[1].secUserID)
}

func TestHarvestSinglePage(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(false, "0", video("only"), &douyin.Item{AwemeID: "no-video"}, nil),
		page(false, "0", video("never")),
	}}
	h := New(fetcher, testConfig(), logger.NewNopLogger())

	records, err := h.Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, []string{"only"}, ids(records))
}

func TestHarvestEmptyResult(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{page(false, "0")}}
	var statuses []Status
	h := New(fetcher, testConfig(), logger.NewNopLogger(), WithStatus(func(s Status) { statuses = append(statuses, s) }))

	records, err := h.Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, "No videos found for this user", statuses[len(statuses)-1].Message)
}

func TestHarvestRetriesThenSucceeds(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		failure(errs.New(errs.ErrorTypeHTTPStatus, 502, "HTTP Error: 502")),
		failure(errs.New(errs.ErrorTypeParsing, 200, "failed to parse JSON")),
		page(false, "0", video("a")),
	}}
	h := New(fetcher, testConfig(), logger.NewNopLogger())

	records, err := h.Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.callCount())
	assert.Equal(t, []string{"a"}, ids(records))
}

func TestHarvestRetryExhaustionAbortsRun(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	lastErr := errs.New(errs.ErrorTypeNetwork, 0, "connection reset")
	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(true, "100", video("a")),
		failure(lastErr),
	}}
	h := New(fetcher, testConfig(), logger.NewNopLogger())

	records, err := h.Harvest(context.Background(), "sec-user")
	require.Error(t, err)
	assert.Nil(t, records, "no partial result")
	assert.Equal(t, 1+5, fetcher.callCount())

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Same(t, lastErr, typed)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "page 2")
}

func TestHarvestStatusUpdates(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		failure(errors.New("timeout")),
		page(true, "200", video("a"), video("b")),
		page(false, "0", video("c")),
	}}

	var statuses []Status
	h := New(fetcher, testConfig(), logger.NewNopLogger(), WithStatus(func(s Status) {
		statuses = append(statuses, s)
	}))

	_, err := h.Harvest(context.Background(), "sec-user")
	require.NoError(t, err)

	var kinds []StatusKind
	for _, s := range statuses {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []StatusKind{
		StatusStarted,
		StatusFetching, StatusRetrying, StatusFetching, StatusPage,
		StatusFetching, StatusPage,
		StatusDone,
	}, kinds)

	assert.Equal(t, "Fetching videos, cursor: 0...", statuses[1].Message)
	assert.Equal(t, 2, statuses[3].Attempt)
	assert.Equal(t, "Found 2 videos (total: 2)", statuses[4].Message)
	assert.Equal(t, "Fetching videos, cursor: 200...", statuses[5].Message)
	assert.Equal(t, "Found 1 videos (total: 3)", statuses[6].Message)
	assert.Equal(t, 3, statuses[7].Total)

	assert.Equal(t, "desc b", statuses[4].Latest)
	assert.Equal(t, "desc c", statuses[6].Latest)
}

func TestHarvestPageStatusLatestDescription(t *testing.T) {
	long := video("x")
	long.Desc = "first line\nsecond line " + strings.Repeat("word ", 20)
	noVideo := &douyin.Item{AwemeID: "y", Desc: "image post"}

	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(true, "5", long),
		page(false, "0", noVideo),
	}}

	var pages []Status
	h := New(fetcher, testConfig(), logger.NewNopLogger(), WithStatus(func(s Status) {
		if s.Kind == StatusPage {
			pages = append(pages, s)
		}
	}))

	_, err := h.Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.True(t, strings.HasPrefix(pages[0].Latest, "first line second line word"))
	assert.True(t, strings.HasSuffix(pages[0].Latest, "..."))
	assert.Len(t, []rune(pages[0].Latest), latestDescriptionLength)
	assert.Empty(t, pages[1].Latest, "nothing kept on the page")
}

func TestHarvestFailureStatus(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{failure(errors.New("HTTP Error: 403"))}}
	cfg := testConfig()
	cfg.Retry.MaxAttempts = 2

	var last Status
	h := New(fetcher, cfg, logger.NewNopLogger(), WithStatus(func(s Status) { last = s }))

	_, err := h.Harvest(context.Background(), "sec-user")
	require.Error(t, err)
	assert.Equal(t, StatusFailed, last.Kind)
	assert.Contains(t, last.Message, "HTTP Error: 403")
}

func TestHarvestPacesPagesButNotRetries(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(true, "1", video("a")),
		failure(errors.New("flaky")),
		page(true, "2", video("b")),
		page(false, "0", video("c")),
	}}
	cfg := testConfig()
	cfg.Retry.Delay = 0
	cfg.Pagination.PageDelay = 30 * time.Millisecond

	h := New(fetcher, cfg, logger.NewNopLogger())
	_, err := h.Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	require.Len(t, fetcher.calls, 4)

	// page 1 -> first attempt of page 2
	assert.GreaterOrEqual(t, fetcher.calls[1].at.Sub(fetcher.calls[0].at), 30*time.Millisecond)
	// failed attempt -> retry, no page delay
	assert.Less(t, fetcher.calls[2].at.Sub(fetcher.calls[1].at), 30*time.Millisecond)
	// page 2 -> page 3
	assert.GreaterOrEqual(t, fetcher.calls[3].at.Sub(fetcher.calls[2].at), 30*time.Millisecond)
}

func TestHarvestMaxPages(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(true, "1", video("a")),
		page(true, "2", video("b")),
		page(true, "3", video("c")),
	}}
	cfg := testConfig()
	cfg.Pagination.MaxPages = 2

	records, err := New(fetcher, cfg, logger.NewNopLogger()).Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())
	assert.Equal(t, []string{"a", "b"}, ids(records))
}

func TestHarvestStopsOnStuckCursor(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(true, "5", video("a")),
		page(true, "5", video("b")),
	}}
	tl := logger.NewTestLogger()

	records, err := New(fetcher, testConfig(), tl).Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())
	assert.Equal(t, []string{"a", "b"}, ids(records))
	assert.True(t, tl.HasMessage("Cursor did not advance, stopping"))
}

func TestHarvestContextCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fetcher := &fakeFetcher{responses: []fakeResponse{
		page(true, "1", video("a")),
	}}
	cfg := testConfig()
	cfg.Pagination.PageDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	records, err := New(fetcher, cfg, logger.NewNopLogger()).Harvest(ctx, "sec-user")
	require.Error(t, err)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestHarvestUsesLimiterForEveryAttempt(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		failure(errors.New("flaky")),
		page(false, "0", video("a")),
	}}
	limiter := &countingLimiter{}

	_, err := New(fetcher, testConfig(), logger.NewNopLogger(), WithLimiter(limiter)).Harvest(context.Background(), "sec-user")
	require.NoError(t, err)
	assert.Equal(t, 2, limiter.n)
}

type countingLimiter struct{ n int }

func (c *countingLimiter) Wait(ctx context.Context) error {
	c.n++
	return nil
}

func TestHarvestRecordsMetrics(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{
		failure(errs.New(errs.ErrorTypeRateLimit, 429, "HTTP Error: 429")),
		page(true, "1", video("a"), &douyin.Item{}),
		page(false, "0", video("b")),
	}}
	collector := metrics.NewCollector()

	_, err := New(fetcher, testConfig(), logger.NewNopLogger(), WithRecorder(collector)).Harvest(context.Background(), "sec-user")
	require.NoError(t, err)

	snap, err := collector.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap["dyscraper_requests_total{result=success}"])
	assert.Equal(t, 1.0, snap["dyscraper_requests_total{result=failure}"])
	assert.Equal(t, 1.0, snap["dyscraper_errors_total{type=rate_limit}"])
	assert.Equal(t, 1.0, snap["dyscraper_retries_total"])
	assert.Equal(t, 2.0, snap["dyscraper_pages_total"])
	assert.Equal(t, 2.0, snap["dyscraper_records_total{outcome=accepted}"])
	assert.Equal(t, 1.0, snap["dyscraper_records_total{outcome=dropped}"])
}

func TestHarvestRecordsExhaustion(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{failure(errors.New("down"))}}
	collector := metrics.NewCollector()
	cfg := testConfig()
	cfg.Retry.MaxAttempts = 3

	_, err := New(fetcher, cfg, logger.NewNopLogger(), WithRecorder(collector)).Harvest(context.Background(), "sec-user")
	require.Error(t, err)

	snap, err := collector.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap["dyscraper_retries_exhausted_total"])
	assert.Equal(t, 2.0, snap["dyscraper_retries_total"])
}

func TestHarvesterIsReusable(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{page(false, "0", video("a"))}}
	h := New(fetcher, testConfig(), logger.NewNopLogger())

	for i := 0; i < 2; i++ {
		records, err := h.Harvest(context.Background(), "sec-user")
		require.NoError(t, err, fmt.Sprintf("run %d", i))
		assert.Equal(t, []string{"a"}, ids(records))
	}
	assert.Equal(t, douyin.FirstCursor, fetcher.calls[1].cursor, "each run starts from the first page")
}

func TestHarvestLogsRunID(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fakeResponse{page(false, "0", video("a"))}}
	tl := logger.NewTestLogger()

	_, err := New(fetcher, testConfig(), tl).Harvest(context.Background(), "sec-user")
	require.NoError(t, err)

	for _, msg := range tl.GetMessages() {
		assert.NotEmpty(t, msg.Fields["run_id"], msg.Message)
		assert.Equal(t, "sec-user", msg.Fields["sec_user_id"], msg.Message)
	}
}

func TestProcessPage(t *testing.T) {
	records, dropped := ProcessPage(nil)
	assert.Empty(t, records)
	assert.Zero(t, dropped)

	records, dropped = ProcessPage(&douyin.Page{Items: []*douyin.Item{nil, video("x"), {AwemeID: "y"}}})
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"x"}, ids(records))
}

var _ ratelimit.Limiter = (*countingLimiter)(nil)
