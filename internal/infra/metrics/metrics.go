// Package metrics provides Prometheus metrics for HealthQuest.
// Counters and gauges for points, completed days, tasks, operations, and
// health checks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Points ─────────────────────────────────────────────────────────────────

// PointsAwarded tracks points credited by ledger entry kind.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "points_awarded_total",
	Help:      "Total points credited, by entry kind.",
}, []string{"kind"})

// PointsRedeemed tracks points spent on rewards.
var PointsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "points_redeemed_total",
	Help:      "Total points spent on rewards.",
})

// PointsBalance tracks the current points total.
var PointsBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "healthquest",
	Name:      "points_balance_current",
	Help:      "Current points balance.",
})

// ─── Days & Streaks ─────────────────────────────────────────────────────────

// DaysCompleted tracks completed days.
var DaysCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "days_completed_total",
	Help:      "Total days marked complete.",
})

// StreakCurrent tracks the streak as of the last completed day.
var StreakCurrent = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "healthquest",
	Name:      "streak_days_current",
	Help:      "Current streak of consecutive completed days.",
})

// ─── Tasks ──────────────────────────────────────────────────────────────────

// TasksCompleted tracks completed dynamic tasks.
var TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "tasks_completed_total",
	Help:      "Total dynamic tasks completed.",
})

// TasksCreated tracks created dynamic tasks.
var TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "tasks_created_total",
	Help:      "Total dynamic tasks created.",
})

// ─── Operations ─────────────────────────────────────────────────────────────

// OperationErrors tracks failed engine operations by operation and error kind.
var OperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "operation_errors_total",
	Help:      "Failed engine operations, by operation and error kind.",
}, []string{"op", "kind"})

// OperationLatency tracks engine operation duration in seconds.
var OperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "healthquest",
	Name:      "operation_latency_seconds",
	Help:      "Engine operation duration in seconds.",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
}, []string{"op"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "healthquest",
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks auto-recovery attempts.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "health_recoveries_total",
	Help:      "Total auto-recovery attempts.",
}, []string{"check"})

// ─── Backups ────────────────────────────────────────────────────────────────

// BackupsWritten tracks backups by outcome ("ok" or "error").
var BackupsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "healthquest",
	Name:      "backups_total",
	Help:      "Database backups attempted, by outcome.",
}, []string{"outcome"})
