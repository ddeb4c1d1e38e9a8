package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/claude/gymflow/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Manager struct {
	// counters
	CounterRequests          *prometheus.CounterVec
	CounterSessionsStarted   prometheus.Counter
	CounterSessionsCompleted prometheus.Counter
	CounterCheckIns          prometheus.Counter
	CounterRestAlerts        prometheus.Counter

	// gauges
	GaugeLiveSessions prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

func NewTestManager() *Manager {
	return NewManager("gymflow", "test", prometheus.NewRegistry())
}

// SetupPrometheus returns a registry with the build info, Go runtime and
// process collectors registered.
func SetupPrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewManager(namespace, subsystem string, reg *prometheus.Registry) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of API requests",
		}, []string{"method", "status"}),
		CounterSessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_started_total",
			Help:      "Workout sessions started",
		}),
		CounterSessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_completed_total",
			Help:      "Workout sessions completed",
		}),
		CounterCheckIns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "check_ins_total",
			Help:      "Gym check-ins recorded",
		}),
		CounterRestAlerts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rest_alerts_total",
			Help:      "Rest-finished alerts fired",
		}),
		GaugeLiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "live_sessions",
			Help:      "Workout sessions currently held in memory",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests by method and status and observes their duration.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.CounterRequests.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
		m.HistRequestDuration.Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AlertNotifier counts rest alerts and passes them on to Next.
type AlertNotifier struct {
	Next   session.Notifier
	Alerts prometheus.Counter
}

func (n AlertNotifier) Alert() error {
	n.Alerts.Inc()
	return n.Next.Alert()
}

func (n AlertNotifier) Stop() error { return n.Next.Stop() }
