// Package metrics содержит prometheus-метрики сервиса сессий.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки result.
const (
	ResultSuccess            = "success"
	ResultValidationError    = "validation_error"
	ResultInvalidCredentials = "invalid_credentials"
	ResultConflict           = "conflict"
	ResultError              = "error"
	ResultValid              = "valid"
	ResultInvalid            = "invalid"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiongate_login_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiongate_registrations_total",
		Help: "Total number of registration attempts by result",
	}, []string{"result"})

	sessionValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiongate_session_validations_total",
		Help: "Total number of session validations by result",
	}, []string{"result"})

	sessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessiongate_sessions_issued_total",
		Help: "Total number of sessions issued",
	})

	sessionsRotated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessiongate_sessions_rotated_total",
		Help: "Total number of sessions rotated on renewal",
	})

	sessionsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessiongate_sessions_revoked_total",
		Help: "Total number of sessions revoked by logout",
	})

	sessionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessiongate_sessions_purged_total",
		Help: "Total number of expired sessions removed by the janitor",
	})

	guardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiongate_guard_decisions_total",
		Help: "Total number of route guard decisions by route class and action",
	}, []string{"class", "action"})

	passwordHashDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sessiongate_password_hash_duration_seconds",
		Help:    "Histogram of bcrypt hash and verify latency in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordLogin учитывает попытку входа.
func RecordLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// RecordRegistration учитывает попытку регистрации.
func RecordRegistration(result string) {
	registrations.WithLabelValues(result).Inc()
}

// RecordValidation учитывает проверку сессии.
func RecordValidation(result string) {
	sessionValidations.WithLabelValues(result).Inc()
}

// RecordSessionIssued учитывает выдачу сессии.
func RecordSessionIssued() {
	sessionsIssued.Inc()
}

// RecordSessionRotated учитывает ротацию сессии.
func RecordSessionRotated() {
	sessionsRotated.Inc()
}

// RecordSessionRevoked учитывает отзыв сессии.
func RecordSessionRevoked() {
	sessionsRevoked.Inc()
}

// RecordSessionsPurged учитывает удаленные janitor сессии.
func RecordSessionsPurged(n int64) {
	if n > 0 {
		sessionsPurged.Add(float64(n))
	}
}

// RecordGuardDecision учитывает решение guard.
func RecordGuardDecision(class, action string) {
	guardDecisions.WithLabelValues(class, action).Inc()
}

// ObservePasswordHash учитывает длительность операции bcrypt.
func ObservePasswordHash(d time.Duration) {
	passwordHashDuration.Observe(d.Seconds())
}
