package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	cacheResults  *prom.CounterVec
	watchActive   prom.Gauge
	rebuilds      prom.Counter
}

// NewPrometheusRecorder constructs and registers the build metrics
// (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "duo",
			Name:      "build_duration_seconds",
			Help:      "Total duration of one entry build",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "duo",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.cacheResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "duo",
			Name:      "cache_results_total",
			Help:      "Build cache lookups by result",
		}, []string{"result"})
		pr.watchActive = prom.NewGauge(prom.GaugeOpts{
			Namespace: "duo",
			Name:      "watch_active",
			Help:      "Whether a filesystem watch is resident",
		})
		pr.rebuilds = prom.NewCounter(prom.CounterOpts{
			Namespace: "duo",
			Name:      "rebuilds_total",
			Help:      "Rebuilds triggered by the watch supervisor",
		})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.cacheResults, pr.watchActive, pr.rebuilds)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome OutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCacheResult(hit bool) {
	if p == nil || p.cacheResults == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheResults.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetWatchActive(active bool) {
	if p == nil || p.watchActive == nil {
		return
	}
	if active {
		p.watchActive.Set(1)
	} else {
		p.watchActive.Set(0)
	}
}

func (p *PrometheusRecorder) IncRebuild() {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.Inc()
}
