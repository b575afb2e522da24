package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	alignTotal      *prometheus.CounterVec
	alignDuration   prometheus.Histogram
	alignMatched    prometheus.Histogram
	degenerateTotal prometheus.Counter

	mergeTotal    *prometheus.CounterVec
	mergeDuration prometheus.Histogram
	mergeNodes    prometheus.Histogram

	cacheTotal *prometheus.CounterVec
	cacheBytes prometheus.Counter

	httpTotal    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		alignTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pipemerge_align_total",
			Help: "Pairwise alignments by result",
		}, []string{"result"}),
		alignDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipemerge_align_duration_seconds",
			Help:    "Pairwise alignment duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}),
		alignMatched: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipemerge_align_matched_nodes",
			Help:    "Corresponding node pairs per alignment",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		degenerateTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "pipemerge_align_degenerate_propagation_total",
			Help: "Alignments that skipped similarity flooding",
		}),
		mergeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pipemerge_merge_total",
			Help: "Multi-graph merges by result",
		}, []string{"result"}),
		mergeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipemerge_merge_duration_seconds",
			Help:    "Multi-graph merge duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		mergeNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipemerge_merge_nodes",
			Help:    "Nodes in merged graphs",
			Buckets: []float64{5, 10, 20, 50, 100, 200, 500},
		}),
		cacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pipemerge_cache_requests_total",
			Help: "Cache operations by key type and outcome",
		}, []string{"key_type", "outcome"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "pipemerge_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pipemerge_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipemerge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnAlignComplete implements [AlignHooks].
func (p *Prometheus) OnAlignComplete(_ context.Context, _, _ string, matched int, degenerate bool, d time.Duration, err error) {
	p.alignTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	p.alignDuration.Observe(d.Seconds())
	p.alignMatched.Observe(float64(matched))
	if degenerate {
		p.degenerateTotal.Inc()
	}
}

// OnMergeComplete implements [AlignHooks].
func (p *Prometheus) OnMergeComplete(_ context.Context, _, nodes int, d time.Duration, err error) {
	p.mergeTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	p.mergeDuration.Observe(d.Seconds())
	p.mergeNodes.Observe(float64(nodes))
}

// OnCacheHit implements [CacheHooks].
func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [CacheHooks].
func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [CacheHooks].
func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheTotal.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

// OnResponse implements [ServerHooks].
func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ AlignHooks  = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ ServerHooks = (*Prometheus)(nil)
)
