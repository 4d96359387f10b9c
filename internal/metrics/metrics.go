// Package metrics exposes prometheus collectors for requests and training events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "repcoach"

// Manager owns the collectors of one registry.
type Manager struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	Panics          prometheus.Counter

	Sessions     *prometheus.CounterVec
	GymSessions  prometheus.Counter
	GymPRs       prometheus.Counter
	Badges       prometheus.Counter
	SaveFailures prometheus.Counter
}

// NewManager registers the collectors on a fresh registry. Go runtime and process collectors are included when
// withRuntime is set.
func NewManager(withRuntime bool) *Manager {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	factory := promauto.With(reg)
	return &Manager{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "status"}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of handled requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		Panics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "The total number of recovered handler panics",
		}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_logged_total",
			Help:      "Bodyweight sessions logged per exercise",
		}, []string{"exercise", "personal_record"}),
		GymSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gym_sessions_logged_total",
			Help:      "Gym sessions logged",
		}),
		GymPRs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gym_personal_records_total",
			Help:      "Gym personal records set",
		}),
		Badges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_unlocked_total",
			Help:      "Badges unlocked",
		}),
		SaveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_save_failures_total",
			Help:      "Progress saves that failed and were kept for retry",
		}),
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) SessionLogged(exerciseKey string, newPR bool) {
	m.Sessions.WithLabelValues(exerciseKey, strconv.FormatBool(newPR)).Inc()
}

func (m *Manager) GymSessionLogged(_ int, prs int) {
	m.GymSessions.Inc()
	m.GymPRs.Add(float64(prs))
}

func (m *Manager) BadgesUnlocked(n int) {
	m.Badges.Add(float64(n))
}

func (m *Manager) SaveFailed() {
	m.SaveFailures.Inc()
}

// ObserveRequest records a finished request.
func (m *Manager) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.Observe(elapsed.Seconds())
}
