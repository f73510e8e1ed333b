package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActivitiesConsumed 行为事件处理结果: stored / malformed / failed
	ActivitiesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_activities_consumed_total",
			Help: "Total number of activity events handled, by result",
		},
		[]string{"result"},
	)

	InterestRecomputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affinity_interest_recompute_duration_seconds",
			Help:    "Interest recomputation duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"result"},
	)

	RecomputeQueueDrained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_recompute_queue_drained_total",
			Help: "Total number of users drained from the deferred recompute queue",
		},
	)

	// RecommendationsGenerated 按策略统计候选数量
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_recommendations_generated_total",
			Help: "Total number of recommendation candidates produced, by strategy",
		},
		[]string{"strategy"},
	)

	TaskRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_task_runs_total",
			Help: "Total number of recommendation task runs, by outcome",
		},
		[]string{"outcome"},
	)

	TaskUserErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "affinity_task_user_errors_total",
			Help: "Total number of per-user failures inside recommendation tasks",
		},
	)

	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_notifications_published_total",
			Help: "Total number of notification events published, by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "affinity_circuit_breaker_state",
			Help: "Circuit breaker state per collaborator",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affinity_circuit_breaker_requests_total",
			Help: "Collaborator requests through the circuit breaker, by result",
		},
		[]string{"name", "result"},
	)
)
