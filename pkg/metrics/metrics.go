// Package metrics counts what a harvest run did, in Prometheus form.
//
// A one-shot CLI has nothing to scrape it, so the registry can be dumped in
// the node_exporter textfile format at the end of a run.
//
// Metrics:
//   - dyscraper_requests_total{result} (Counter): page request attempts by outcome
//   - dyscraper_retries_total (Counter): failed attempts that were retried
//   - dyscraper_retries_exhausted_total (Counter): pages that failed every attempt
//   - dyscraper_errors_total{type} (Counter): failed attempts by error type
//   - dyscraper_pages_total (Counter): pages processed
//   - dyscraper_records_total{outcome} (Counter): extracted items kept or dropped
//   - dyscraper_exported_records_total{artifact} (Counter): records written per artifact
package metrics

import (
	"fmt"

	errs "dyscraper/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dyscraper"

// Collector owns one registry and the counters of a run
type Collector struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	retries   prometheus.Counter
	exhausted prometheus.Counter
	errors    *prometheus.CounterVec
	pages     prometheus.Counter
	records   *prometheus.CounterVec
	exported  *prometheus.CounterVec
}

// NewCollector registers a fresh set of counters on a private registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Page request attempts by result",
		}, []string{"result"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Failed attempts that were retried",
		}),
		exhausted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_exhausted_total",
			Help:      "Pages that failed every attempt",
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed attempts by error type",
		}, []string{"type"}),
		pages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Catalog pages processed",
		}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Extracted items by outcome",
		}, []string{"outcome"}),
		exported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_records_total",
			Help:      "Records written per artifact",
		}, []string{"artifact"}),
	}
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RequestSucceeded records a successful page request
func (c *Collector) RequestSucceeded() {
	c.requests.WithLabelValues("success").Inc()
}

// RequestFailed records a failed page request and its error type
func (c *Collector) RequestFailed(err error) {
	c.requests.WithLabelValues("failure").Inc()
	c.errors.WithLabelValues(string(errs.TypeOf(err))).Inc()
}

// Retried records a failed attempt that will be retried
func (c *Collector) Retried() {
	c.retries.Inc()
}

// Exhausted records a page whose attempts all failed
func (c *Collector) Exhausted() {
	c.exhausted.Inc()
}

// PageProcessed records one page and how many items were kept or dropped
func (c *Collector) PageProcessed(kept, dropped int) {
	c.pages.Inc()
	c.records.WithLabelValues("accepted").Add(float64(kept))
	c.records.WithLabelValues("dropped").Add(float64(dropped))
}

// Exported records how many records went into an artifact
func (c *Collector) Exported(artifact string, count int) {
	c.exported.WithLabelValues(artifact).Add(float64(count))
}

// WriteTextfile dumps the registry atomically in the textfile collector format
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Snapshot flattens every counter into "name{label=value}" -> value
func (c *Collector) Snapshot() (map[string]float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += fmt.Sprintf("{%s=%s}", lp.GetName(), lp.GetValue())
			}
			if counter := m.GetCounter(); counter != nil {
				out[key] = counter.GetValue()
			}
		}
	}
	return out, nil
}
