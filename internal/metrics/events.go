package metrics

import (
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
)

// AdmissionEvaluated records one admission decision.
func AdmissionEvaluated(d domain.AdmissionDecision) {
	if d.Allowed {
		AdmissionDecisionsTotal.WithLabelValues("allowed", "").Inc()
	} else {
		AdmissionDecisionsTotal.WithLabelValues("denied", string(d.DenyCode)).Inc()
	}
	if d.QuotaWarning != domain.QuotaWarningNone && d.QuotaWarning != "" {
		QuotaWarningsTotal.WithLabelValues(string(d.QuotaWarning)).Inc()
	}
}

// ProviderAttempt records a single upstream call.
func ProviderAttempt(provider, status string) {
	GenerationAttemptsTotal.WithLabelValues(provider, status).Inc()
}

// GenerationFinished records the final outcome of an orchestrated generation.
func GenerationFinished(status string, duration time.Duration) {
	GenerationsTotal.WithLabelValues(status).Inc()
	GenerationDuration.Observe(duration.Seconds())
}

// StoreFailed records a persistence failure in component.
func StoreFailed(component string) {
	StoreErrorsTotal.WithLabelValues(component).Inc()
}
