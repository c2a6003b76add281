// Package prometheus instruments webcrawl services with Prometheus metrics.
package prometheus

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/webcrawl"
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes used as the "result" label.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultCanceled = "canceled"
)

// Metrics holds the collectors shared by instrumented services.
type Metrics struct {
	fetchesTotal    *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	fetchesInFlight prometheus.Gauge
	linksTotal      prometheus.Counter
}

// NewMetrics creates the crawler collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webcrawl_fetches_total",
				Help: "Total number of page fetches by result.",
			},
			[]string{"result"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webcrawl_fetch_duration_seconds",
				Help:    "Duration of page fetches.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		fetchesInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "webcrawl_fetches_in_flight",
				Help: "Number of page fetches currently running.",
			},
		),
		linksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "webcrawl_links_discovered_total",
				Help: "Total number of links found on fetched pages.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.fetchesTotal, m.fetchDuration, m.fetchesInFlight, m.linksTotal} {
		if err := reg.Register(c); err != nil {
			return nil, webcrawl.Errorf(webcrawl.EINTERNAL, "register metrics: %v", err)
		}
	}
	return m, nil
}

// Ensure Fetcher implements webcrawl.Fetcher at compile time.
var _ webcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher wraps a Fetcher and records metrics for every fetch.
type Fetcher struct {
	next    webcrawl.Fetcher
	metrics *Metrics
}

// NewFetcher creates a new instrumented Fetcher.
func NewFetcher(next webcrawl.Fetcher, metrics *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: metrics}
}

// Fetch delegates to the wrapped fetcher and records its outcome.
func (f *Fetcher) Fetch(ctx context.Context, url string) (page *webcrawl.Page, err error) {
	f.metrics.fetchesInFlight.Inc()
	defer func(begin time.Time) {
		f.metrics.fetchesInFlight.Dec()
		f.metrics.fetchDuration.Observe(time.Since(begin).Seconds())
		f.metrics.fetchesTotal.WithLabelValues(result(err)).Inc()
		if page != nil {
			f.metrics.linksTotal.Add(float64(len(page.Links)))
		}
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

func result(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		webcrawl.ErrorCode(err) == webcrawl.ECANCELED:
		return ResultCanceled
	default:
		return ResultError
	}
}
