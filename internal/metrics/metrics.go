package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoutgallery", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"method", "path", "status"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scoutgallery", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scoutgallery", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	WorkflowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scoutgallery", Name: "workflow_transitions_total", Help: "Submission workflow transitions",
	}, []string{"event", "outcome"})
	PendingSets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "scoutgallery", Name: "pending_sets", Help: "Picture sets awaiting moderation",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HandlerErrors, DBPing, WorkflowTransitions, PendingSets)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
