// Package metrics registers the Prometheus metrics for the API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TeamDBMetrics holds the Prometheus metrics for the team database cache.
// It implements teamdb.StatsRecorder.
type TeamDBMetrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	OpenHandles prometheus.Gauge
}

// NewTeamDBMetrics initializes and registers the Prometheus metrics.
func NewTeamDBMetrics() *TeamDBMetrics {
	return &TeamDBMetrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "coachdesk",
			Subsystem: "teamdb",
			Name:      "cache_hits_total",
			Help:      "Total number of team database cache hits.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "coachdesk",
			Subsystem: "teamdb",
			Name:      "cache_misses_total",
			Help:      "Total number of team database cache misses.",
		}),
		OpenHandles: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "coachdesk",
			Subsystem: "teamdb",
			Name:      "open_handles",
			Help:      "Number of team database handles currently open.",
		}),
	}
}

func (m *TeamDBMetrics) CacheHit()     { m.CacheHits.Inc() }
func (m *TeamDBMetrics) CacheMiss()    { m.CacheMisses.Inc() }
func (m *TeamDBMetrics) HandleOpened() { m.OpenHandles.Inc() }
func (m *TeamDBMetrics) HandleClosed() { m.OpenHandles.Dec() }
