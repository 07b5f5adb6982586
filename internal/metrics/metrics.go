// Package metrics holds the Prometheus collectors exported by the daemon.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_store_writes_total",
			Help: "Total number of committed document writes",
		},
		[]string{"collection", "op"},
	)

	LiveQueriesActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobboard_live_queries_active",
			Help: "Number of live queries currently pushing snapshots",
		},
		[]string{"collection"},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_uploads_total",
			Help: "Total number of objects written to blob storage",
		},
		[]string{"kind"},
	)

	UploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobboard_upload_bytes_total",
			Help: "Total bytes written to blob storage",
		},
	)

	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_notifications_delivered_total",
			Help: "Notification delivery attempts by result",
		},
		[]string{"result"},
	)

	BusDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_bus_dropped_total",
			Help: "Events not delivered to a subscriber whose buffer was full",
		},
		[]string{"namespace"},
	)

	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_rpc_requests_total",
			Help: "Unary RPCs handled by the daemon",
		},
		[]string{"method", "code"},
	)

	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobboard_rpc_duration_seconds",
			Help:    "Duration of unary RPCs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// NewServer returns an HTTP server exposing /metrics on addr. It is not started.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
