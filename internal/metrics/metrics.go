package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Realtime gateway metrics
	WSConnectionsActive prometheus.Gauge
	WSConnectionsTotal  prometheus.Counter
	WSMessagesReceived  *prometheus.CounterVec
	WSMessagesDelivered prometheus.Counter
	WSMessagesDropped   *prometheus.CounterVec
	WSBroadcastsTotal   prometheus.Counter
	PresenceOnlineUsers prometheus.Gauge

	// Auth metrics
	AuthAttemptsTotal *prometheus.CounterVec

	// Rate limiting
	RateLimitExceededTotal *prometheus.CounterVec

	// Media uploads by kind and outcome
	MediaUploadsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_requests",
					Help: "Number of in-flight HTTP requests",
				},
				[]string{"method", "path"},
			),

			WSConnectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "ws_connections_active",
				Help: "Number of open realtime connections",
			}),
			WSConnectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ws_connections_total",
				Help: "Total realtime connections accepted",
			}),
			WSMessagesReceived: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ws_messages_received_total",
					Help: "Inbound realtime frames by type",
				},
				[]string{"type"},
			),
			WSMessagesDelivered: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ws_messages_delivered_total",
				Help: "Direct messages handed to a recipient connection",
			}),
			WSMessagesDropped: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ws_messages_dropped_total",
					Help: "Direct messages not delivered, by reason",
				},
				[]string{"reason"},
			),
			WSBroadcastsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "ws_presence_broadcasts_total",
				Help: "Presence snapshots broadcast to all connections",
			}),
			PresenceOnlineUsers: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "presence_online_users",
				Help: "Users with a live presence entry",
			}),

			AuthAttemptsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "auth_attempts_total",
					Help: "Authentication attempts by action and outcome",
				},
				[]string{"action", "outcome"},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the HTTP rate limiter",
				},
				[]string{"path"},
			),

			MediaUploadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "media_uploads_total",
					Help: "Media uploads by kind and outcome",
				},
				[]string{"kind", "outcome"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}
