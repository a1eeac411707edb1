// Package metrics defines and registers all custom Prometheus metrics for
// the lending system. It is the single source of truth for metric names,
// labels, and help strings; metrics self-register with the default registry
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lending"

// ── Notification metrics ─────────────────────────────────────────────────────

// NotifyPublishedTotal counts notifications that reached the channel.
// Label:
//   - kind: the event kind (e.g. "request_approved")
var NotifyPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_published_total",
		Help:      "Total number of notifications successfully published.",
	},
	[]string{"kind"},
)

// NotifyFailedTotal counts notifications that were lost. Delivery failure is
// non-fatal to the triggering operation, so this counter is the only place
// losses become visible.
// Labels:
//   - kind: the event kind
//   - reason: "publish_error" or "queue_full"
var NotifyFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_failed_total",
		Help:      "Total number of notifications dropped or failed to publish.",
	},
	[]string{"kind", "reason"},
)

// NotifyQueueDepth tracks the events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotifyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notify_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Workflow metrics ─────────────────────────────────────────────────────────

// ReconcileRepairsTotal counts books whose availability flag the periodic
// reconciliation pass had to repair.
var ReconcileRepairsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_repairs_total",
		Help:      "Total number of book availability flags repaired by reconciliation.",
	},
)

// ReconcileRunsTotal counts reconciliation passes.
// Label:
//   - result: "ok" or "error"
var ReconcileRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_runs_total",
		Help:      "Total number of availability reconciliation passes.",
	},
	[]string{"result"},
)
