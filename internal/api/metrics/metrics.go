// Package metrics defines and registers all custom Prometheus metrics for the
// RBAC service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rbac"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "rejected" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthenticationsTotal counts Authentication Gate outcomes.
// Label:
//   - result: "ok", "missing_header", "token_not_found", "signature_invalid" or "error"
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Total number of bearer token checks, by result.",
	},
	[]string{"result"},
)

// SessionsTotal counts session lifecycle events.
// Label:
//   - event: "issued" or "revoked"
var SessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Total number of session tokens issued or revoked.",
	},
	[]string{"event"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// GateDecisionsTotal counts Authorization Gate decisions.
// Labels:
//   - gate: "role" or "permission"
//   - result: "allow", "deny" or "error"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of authorization gate decisions.",
	},
	[]string{"gate", "result"},
)

// AuditWriteFailuresTotal counts gate decisions whose audit entry could not be written.
// Label:
//   - gate: "role" or "permission"
var AuditWriteFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of gate decisions that were not recorded in the audit log.",
	},
	[]string{"gate"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailDispatchTotal counts outgoing mail.
// Labels:
//   - transport: "smtp" or "queue"
//   - result: "ok" or "error"
var MailDispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_dispatch_total",
		Help:      "Total number of mail messages handed to a transport.",
	},
	[]string{"transport", "result"},
)

// MailDeliveryDuration measures how long a single SMTP delivery takes.
var MailDeliveryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_delivery_duration_seconds",
		Help:      "Duration of SMTP deliveries.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
