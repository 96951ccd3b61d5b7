package main

import (
	"context"
	"fmt"

	"dyscraper/pkg/auth"
	"dyscraper/pkg/config"
	"dyscraper/pkg/douyin"
	"dyscraper/pkg/export"
	"dyscraper/pkg/harvest"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/metrics"
	"dyscraper/pkg/ratelimit"
	"dyscraper/pkg/ui"
)

// pipeline is one harvest followed by one export, reported to a single
// consumer
type pipeline struct {
	harvester *harvest.Harvester
	exporter  *export.Exporter
	reporter  ui.Reporter
	log       logger.Logger
}

func newPipeline(cfg *config.Config, headers douyin.HeaderProvider, reporter ui.Reporter, collector *metrics.Collector, log logger.Logger) *pipeline {
	var clientOpts []douyin.Option
	if headers != nil {
		clientOpts = append(clientOpts, douyin.WithHeaderProvider(headers))
	}
	client := douyin.NewClient(&cfg.Douyin, log, clientOpts...)

	return &pipeline{
		harvester: harvest.New(client, cfg, log,
			harvest.WithStatus(reporter.Handle),
			harvest.WithLimiter(ratelimit.NewRequestLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)),
			harvest.WithRecorder(collector),
		),
		exporter: export.New(&cfg.Output, log, export.WithRecorder(collector)),
		reporter: reporter,
		log:      log,
	}
}

// run harvests secUserID and exports the result. Nothing is written when
// the harvest fails.
func (p *pipeline) run(ctx context.Context, secUserID string) (*export.Summary, error) {
	records, err := p.harvester.Harvest(ctx, secUserID)
	if err != nil {
		p.reporter.Finish(err)
		return nil, err
	}

	summary, err := p.exporter.Export(records)
	if err != nil {
		err = fmt.Errorf("export failed: %w", err)
		p.reporter.Finish(err)
		return nil, err
	}

	p.reporter.Exported(summary)
	p.reporter.Finish(nil)
	return summary, nil
}

// resolveCredentials picks the session used for requests. A cookie in the
// configuration wins and needs no provider. Otherwise the named or default
// stored account is used. Only a missing named account is an error.
func resolveCredentials(cfg *config.Config, manager *auth.Manager, log logger.Logger) (douyin.HeaderProvider, error) {
	if cfg.Douyin.Cookie != "" {
		log.Info("Using cookie from configuration")
		return nil, nil
	}

	if manager == nil {
		if cfg.Douyin.Account != "" {
			return nil, fmt.Errorf("account %q: %w", cfg.Douyin.Account, auth.ErrStoreUnavailable)
		}
		log.Warn("No Douyin cookie configured, requests may be rejected")
		return nil, nil
	}

	account, err := manager.Resolve(cfg.Douyin.Account)
	if err != nil {
		if cfg.Douyin.Account != "" {
			return nil, fmt.Errorf("account %q: %w", cfg.Douyin.Account, err)
		}
		log.Warn("No Douyin cookie configured, requests may be rejected")
		return nil, nil
	}

	log.WithField("account", account.Name).Info("Using stored credentials")
	return account, nil
}

// exportedCount is the number of records that reached any artifact
func exportedCount(summary *export.Summary) int {
	if summary == nil {
		return 0
	}
	return max(summary.JSONCount, summary.URLCount, summary.YAMLCount)
}
