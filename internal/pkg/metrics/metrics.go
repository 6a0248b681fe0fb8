// Package metrics defines and registers all custom Prometheus metrics for the
// recruitment portal. Metrics are registered with the default registry on
// package init through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recruit"

// ── Profile metrics ───────────────────────────────────────────────────────────

// ProfileUpdatesTotal counts profile submissions.
// Labels:
//   - role: "student" or "recruiter"
//   - outcome: "success", "invalid", "conflict", "forbidden" or "error"
var ProfileUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_updates_total",
		Help:      "Total number of profile submissions, by role and outcome.",
	},
	[]string{"role", "outcome"},
)

// ProfileUpdateDuration measures a submission from access check to refreshed copy.
var ProfileUpdateDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "profile_update_duration_seconds",
		Help:      "Duration of profile submissions.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"role"},
)

// ── Resume metrics ────────────────────────────────────────────────────────────

// ResumeOperationsTotal counts resume store operations.
// Labels:
//   - op: "store", "delete", "fetch"
//   - result: "ok", "rejected", "missing" or "error"
var ResumeOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_operations_total",
		Help:      "Total number of resume operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "fail" or "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because the queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped because the dispatcher buffer was full.",
	},
)

// AuditWriteErrorsTotal counts failed deliveries to an audit writer.
// Label:
//   - writer: "mongo" or "amqp"
var AuditWriteErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of audit events a writer failed to persist.",
	},
	[]string{"writer"},
)

// AuditQueueDepth tracks events waiting in the audit dispatcher.
var AuditQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in the dispatcher.",
	},
)
