package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry. All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	experienceGranted *prometheus.CounterVec
	levelUps          prometheus.Counter
	questTransitions  *prometheus.CounterVec
	achievementMoves  *prometheus.CounterVec
	rewardFailures    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdrpg_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pdrpg_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		experienceGranted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdrpg_experience_granted_total",
				Help: "Experience points granted to the character",
			},
			[]string{"source"},
		),
		levelUps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pdrpg_level_ups_total",
				Help: "Character level-up events",
			},
		),
		questTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdrpg_quest_transitions_total",
				Help: "Quest status transitions",
			},
			[]string{"status"},
		),
		achievementMoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdrpg_achievement_transitions_total",
				Help: "Achievement status transitions",
			},
			[]string{"status"},
		),
		rewardFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdrpg_reward_failures_total",
				Help: "Best-effort reward applications that failed",
			},
			[]string{"source"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.experienceGranted,
		m.levelUps,
		m.questTransitions,
		m.achievementMoves,
		m.rewardFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) ExperienceGranted(source string, points int64, leveledUp bool) {
	if m == nil {
		return
	}
	if points > 0 {
		m.experienceGranted.WithLabelValues(source).Add(float64(points))
	}
	if leveledUp {
		m.levelUps.Inc()
	}
}

func (m *Metrics) QuestTransition(status string) {
	if m == nil {
		return
	}
	m.questTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) AchievementTransition(status string) {
	if m == nil {
		return
	}
	m.achievementMoves.WithLabelValues(status).Inc()
}

func (m *Metrics) RewardFailed(source string) {
	if m == nil {
		return
	}
	m.rewardFailures.WithLabelValues(source).Inc()
}
