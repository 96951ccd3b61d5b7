package harvest

import (
	"context"
	"fmt"
	"time"

	"dyscraper/pkg/config"
	"dyscraper/pkg/douyin"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/metadata"
	"dyscraper/pkg/ratelimit"
	"dyscraper/pkg/retry"
)

const latestDescriptionLength = 60

// Harvester walks a creator's post listing page by page. It holds no
// per-run state, so one Harvester can serve any number of sequential runs.
type Harvester struct {
	fetcher     PageFetcher
	maxAttempts int
	retryDelay  time.Duration
	maxPages    int
	pacer       *ratelimit.Pacer
	limiter     ratelimit.Limiter
	recorder    Recorder
	status      StatusFunc
	logger      logger.Logger
}

// Option customizes a Harvester
type Option func(*Harvester)

// WithStatus registers a consumer for progress updates
func WithStatus(fn StatusFunc) Option {
	return func(h *Harvester) {
		h.status = fn
	}
}

// WithLimiter gates every attempt, retries included
func WithLimiter(l ratelimit.Limiter) Option {
	return func(h *Harvester) {
		h.limiter = l
	}
}

// WithRecorder registers a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(h *Harvester) {
		h.recorder = r
	}
}

// WithPacer replaces the inter-page pacer
func WithPacer(p *ratelimit.Pacer) Option {
	return func(h *Harvester) {
		h.pacer = p
	}
}

// New creates a Harvester using the retry and pagination settings of cfg
func New(fetcher PageFetcher, cfg *config.Config, log logger.Logger, opts ...Option) *Harvester {
	if log == nil {
		log = logger.GetLogger()
	}

	h := &Harvester{
		fetcher:     fetcher,
		maxAttempts: cfg.Retry.MaxAttempts,
		retryDelay:  cfg.Retry.Delay,
		maxPages:    cfg.Pagination.MaxPages,
		pacer:       ratelimit.NewPacer(cfg.Pagination.PageDelay),
		limiter:     ratelimit.Unlimited{},
		recorder:    nopRecorder{},
		status:      func(Status) {},
		logger:      log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ProcessPage extracts every item of page in order and keeps the playable
// ones. dropped counts the rest.
func ProcessPage(page *douyin.Page) (records []metadata.Record, dropped int) {
	if page == nil {
		return []metadata.Record{}, 0
	}
	return metadata.FilterPlayable(page.Items)
}

// Harvest fetches every page for secUserID and returns the playable records
// in the order the API returned them. Any page that fails all its attempts
// aborts the run; no partial result is returned.
func (h *Harvester) Harvest(ctx context.Context, secUserID string) ([]metadata.Record, error) {
	runID := logger.NewRunID()
	log := logger.ForRun(h.logger, runID, secUserID)

	log.InfoWithFields("Harvest started", map[string]interface{}{
		"max_attempts": h.maxAttempts,
		"retry_delay":  h.retryDelay,
		"page_delay":   h.pacer.Delay,
		"max_pages":    h.maxPages,
	})
	h.emit(log, startedStatus(secUserID))

	start := time.Now()
	records := []metadata.Record{}
	cursor := douyin.FirstCursor

	for page := 1; ; page++ {
		resp, err := h.fetchWithRetry(ctx, log, secUserID, page, cursor)
		if err != nil {
			log.WithError(err).ErrorWithFields("Harvest failed", map[string]interface{}{
				"page":   page,
				"cursor": cursor,
				"total":  len(records),
			})
			h.emit(log, failedStatus(page, err))
			return nil, fmt.Errorf("page %d (cursor %s): %w", page, cursor, err)
		}

		kept, dropped := ProcessPage(resp)
		records = append(records, kept...)
		h.recorder.PageProcessed(len(kept), dropped)

		latest := ""
		if len(kept) > 0 {
			latest = kept[len(kept)-1].ShortDescription(latestDescriptionLength)
		}
		logger.LogPage(log, page, cursor, len(resp.Items), len(kept), len(records), bool(resp.HasMore))
		h.emit(log, pageStatus(page, len(kept), len(records), cursor, latest))

		if !resp.HasMore {
			h.finish(log, page, len(records), start)
			return records, nil
		}

		if h.maxPages > 0 && page >= h.maxPages {
			log.InfoWithFields("Page limit reached, stopping", map[string]interface{}{
				"max_pages": h.maxPages,
			})
			h.finish(log, page, len(records), start)
			return records, nil
		}

		next := resp.MaxCursor.String()
		if next == "" || next == cursor {
			log.WarnWithFields("Cursor did not advance, stopping", map[string]interface{}{
				"cursor": cursor,
				"next":   next,
			})
			h.finish(log, page, len(records), start)
			return records, nil
		}
		cursor = next

		if err := h.pacer.Pause(ctx); err != nil {
			h.emit(log, failedStatus(page, err))
			return nil, fmt.Errorf("harvest interrupted: %w", err)
		}
	}
}

func (h *Harvester) fetchWithRetry(ctx context.Context, log logger.Logger, secUserID string, page int, cursor string) (*douyin.Page, error) {
	attempt := 0

	resp, err := retry.DoWithResult(func() (*douyin.Page, error) {
		attempt++
		h.emit(log, fetchingStatus(page, attempt, cursor))

		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := h.fetcher.FetchPage(ctx, secUserID, cursor)
		if err != nil {
			h.recorder.RequestFailed(err)
			return nil, err
		}
		h.recorder.RequestSucceeded()
		return resp, nil
	}, &retry.Config{
		MaxAttempts: h.maxAttempts,
		Delay:       h.retryDelay,
		Context:     ctx,
		Logger:      log.WithField("page", page),
		OnRetry: func(attempt int, err error, delay time.Duration) {
			h.recorder.Retried()
			h.emit(log, retryingStatus(page, attempt, cursor, err))
		},
	})
	if err != nil {
		if ctx.Err() == nil {
			h.recorder.Exhausted()
		}
		return nil, err
	}
	return resp, nil
}

func (h *Harvester) finish(log logger.Logger, pages, total int, start time.Time) {
	log.InfoWithFields("Harvest complete", map[string]interface{}{
		"pages":    pages,
		"total":    total,
		"duration": time.Since(start),
	})
	h.emit(log, doneStatus(pages, total))
}

func (h *Harvester) emit(log logger.Logger, s Status) {
	log.DebugWithFields(s.Message, map[string]interface{}{
		"status": string(s.Kind),
	})
	if h.status != nil {
		h.status(s)
	}
}
