// Package metrics exposes Prometheus collectors for entity retrieval and
// ping activity. A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Retrieval paths
const (
	PathEntity     = "entity"
	PathCollection = "collection"
)

// Collector records builder and ping metrics
type Collector struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	parseErrors *prometheus.CounterVec
	packetLoss  *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netapi_builder_requests_total",
				Help: "Total number of entity retrievals",
			},
			[]string{"kind", "implementation", "path", "result"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netapi_builder_duration_seconds",
				Help:    "Entity retrieval latency in seconds, device round trip included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "implementation"},
		),
		parseErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netapi_parse_errors_total",
				Help: "Total number of vendor payloads that could not be parsed",
			},
			[]string{"kind", "implementation"},
		),
		packetLoss: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "netapi_ping_packet_loss_ratio",
				Help: "Packet loss of the last ping per target",
			},
			[]string{"implementation", "target"},
		),
	}
}

// ObserveRetrieval records one builder retrieval
func (c *Collector) ObserveRetrieval(kind, implementation, path, result string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(kind, implementation, path, result).Inc()
	c.duration.WithLabelValues(kind, implementation).Observe(elapsed.Seconds())
}

// ParseError counts a payload a parser rejected
func (c *Collector) ParseError(kind, implementation string) {
	if c == nil {
		return
	}
	c.parseErrors.WithLabelValues(kind, implementation).Inc()
}

// PacketLoss records the loss ratio of a finished ping
func (c *Collector) PacketLoss(implementation, target string, loss float64) {
	if c == nil {
		return
	}
	c.packetLoss.WithLabelValues(implementation, target).Set(loss)
}
