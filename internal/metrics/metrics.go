package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jirarest/internal/jira"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics represents the collection of Jira client metrics
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the client metrics and registers them on reg.
// A nil reg registers on a fresh private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{}

	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_requests_total",
			Help: "Total number of requests sent to the Jira API",
		},
		[]string{"method", "resource", "status"},
	)

	m.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jira_request_duration_seconds",
			Help:    "Duration of Jira API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "resource"},
	)

	m.RequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jira_request_errors_total",
			Help: "Total number of Jira API requests that received no response",
		},
		[]string{"method", "resource", "kind"},
	)

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestErrors,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}

	return m
}

// Handler returns the Prometheus HTTP handler for the registry the metrics live in.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// InstrumentedTransport records metrics for every request sent through Next.
type InstrumentedTransport struct {
	Next    jira.Transport
	Metrics *Metrics
}

// Instrument wraps next with request metrics.
func (m *Metrics) Instrument(next jira.Transport) *InstrumentedTransport {
	return &InstrumentedTransport{Next: next, Metrics: m}
}

// Send forwards req and records its outcome.
func (t *InstrumentedTransport) Send(ctx context.Context, req *jira.Request) (*jira.Response, error) {
	resource := ResourceName(req.URL)
	start := time.Now()

	resp, err := t.Next.Send(ctx, req)

	t.Metrics.RequestDuration.WithLabelValues(req.Method, resource).Observe(time.Since(start).Seconds())
	if err != nil {
		t.Metrics.RequestErrors.WithLabelValues(req.Method, resource, errorKind(ctx, err)).Inc()
		return nil, err
	}
	t.Metrics.RequestsTotal.WithLabelValues(req.Method, resource, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// ResourceName returns the first path segment under the REST API prefix
// ("issue" for .../rest/api/3/issue/PROJ-1), keeping label cardinality bounded.
func ResourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	p := strings.TrimPrefix(u.Path, "/"+jira.BaseAPIPath+"/")
	if p == u.Path {
		return "unknown"
	}
	resource, _, _ := strings.Cut(p, "/")
	if resource == "" {
		return "unknown"
	}
	return resource
}

func errorKind(ctx context.Context, err error) string {
	switch ctx.Err() {
	case context.Canceled:
		return "canceled"
	case context.DeadlineExceeded:
		return "timeout"
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return "transport"
}
