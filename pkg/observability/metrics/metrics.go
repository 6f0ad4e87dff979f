// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	m.Register()
//	http.Handle("/metrics", m.Handler())
//
// All collectors live under the "hypertile" namespace:
//
//	hypertile_pipeline_stage_total{stage,status}
//	hypertile_pipeline_stage_duration_seconds{stage}
//	hypertile_pipeline_words_total{tiles_per_vertex}
//	hypertile_cache_requests_total{key_type,result}
//	hypertile_cache_written_bytes_total{key_type}
//	hypertile_http_requests_in_flight
//	hypertile_http_requests_total{method,route,status}
//	hypertile_http_request_duration_seconds{method,route}
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/hypertile/pkg/observability"
)

const namespace = "hypertile"

// Pipeline stages.
const (
	StageEnumerate = "enumerate"
	StagePlace     = "place"
	StageRender    = "render"
)

// Metrics holds the collectors and implements the pipeline, cache and
// server hooks.
type Metrics struct {
	StageTotal    *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	WordsTotal    *prometheus.CounterVec

	CacheRequests *prometheus.CounterVec
	CacheBytes    *prometheus.CounterVec

	InFlight     prometheus.Gauge
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.ServerHooks   = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg. A nil reg uses
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		StageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Pipeline stages run, by stage and outcome.",
		}, []string{"stage", "status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		WordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "words_total",
			Help:      "Canonical words produced by enumeration.",
		}, []string{"tiles_per_vertex"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups and writes, by key type and result.",
		}, []string{"key_type", "result"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests being served.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP responses, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.StageTotal, m.StageDuration, m.WordsTotal,
		m.CacheRequests, m.CacheBytes,
		m.InFlight, m.HTTPRequests, m.HTTPDuration,
	)

	m.gatherer = prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Register installs m as the process-wide pipeline, cache and server hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetServerHooks(m)
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) stage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageTotal.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) OnEnumerateStart(context.Context, int, int) {}

func (m *Metrics) OnEnumerateComplete(_ context.Context, tilesPerVertex, words int, d time.Duration, err error) {
	m.stage(StageEnumerate, d, err)
	if err == nil {
		m.WordsTotal.WithLabelValues(strconv.Itoa(tilesPerVertex)).Add(float64(words))
	}
}

func (m *Metrics) OnPlaceStart(context.Context, int) {}

func (m *Metrics) OnPlaceComplete(_ context.Context, _ int, d time.Duration, err error) {
	m.stage(StagePlace, d, err)
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.stage(StageRender, d, err)
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheRequests.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.InFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.InFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
