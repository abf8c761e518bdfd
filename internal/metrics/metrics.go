// Package metrics holds the Prometheus collectors for the auth flows. All
// collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storeauth"

// Registrations counts register calls by outcome: "ok", "partial", "conflict", "error".
var Registrations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// Logins counts login calls by outcome: "ok", "partial", "unknown_user",
// "bad_credentials", "not_active", "error".
var Logins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SessionsCreated counts new (user, origin) sessions.
var SessionsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of sessions created on first login from an origin.",
	},
)

// OTPChecks counts code checks by purpose ("verify", "reset") and result
// ("valid", "invalid", "replayed").
var OTPChecks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_checks_total",
		Help:      "Total number of one-time code checks.",
	},
	[]string{"purpose", "result"},
)

// MailFailures counts undeliverable messages by template.
var MailFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_failures_total",
		Help:      "Total number of mail messages that could not be delivered.",
	},
	[]string{"template"},
)
