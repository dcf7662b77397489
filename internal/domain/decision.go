package domain

import (
	"fmt"
	"time"
)

// QuotaWarning is a non-blocking signal derived from the monthly usage ratio.
// It is independent of whether a request is admitted.
type QuotaWarning string

const (
	QuotaWarningNone     QuotaWarning = "none"
	QuotaWarning80       QuotaWarning = "warning_80"
	QuotaWarning90       QuotaWarning = "warning_90"
	QuotaWarningExceeded QuotaWarning = "exceeded"
)

// DenyCode is the machine-readable reason an admission was refused.
type DenyCode string

const (
	DenyNone         DenyCode = ""
	DenySuspended    DenyCode = "suspended"
	DenyExpired      DenyCode = "expired"
	DenyMonthlyLimit DenyCode = "monthly_limit"
	DenyDailyLimit   DenyCode = "daily_limit"
)

// AdmissionDecision is the verdict for a single request. A denial is a
// normal outcome, not an error.
type AdmissionDecision struct {
	Allowed             bool
	Reason              string
	DenyCode            DenyCode
	QuotaWarning        QuotaWarning
	MonthlyUsagePercent int
	ResetsAt            *time.Time
}

// Decide applies the admission rules to an entitlement with usage filled in.
// Deny reasons are checked in a fixed order and the first one wins.
func Decide(ent *Entitlement, now time.Time) AdmissionDecision {
	warning, percent := ComputeQuotaWarning(ent.Usage.Monthly, ent.Plan.MonthlyPromptLimit)
	d := AdmissionDecision{
		QuotaWarning:        warning,
		MonthlyUsagePercent: percent,
	}

	monthly, daily := ent.Plan.MonthlyPromptLimit, ent.Plan.DailyPromptLimit

	switch {
	case ent.Status == SubscriptionStatusSuspended:
		d.DenyCode = DenySuspended
		d.Reason = "account suspended, billing action required"
	case ent.Status == SubscriptionStatusExpired && !ent.TrialActive:
		d.DenyCode = DenyExpired
		d.Reason = "trial/subscription expired, plan selection required"
	case monthly.Enforced() && ent.Usage.Monthly >= int64(monthly):
		d.DenyCode = DenyMonthlyLimit
		d.Reason = fmt.Sprintf("monthly prompt limit reached (%d/%d)", ent.Usage.Monthly, monthly)
		resets := NextMonthWindow(now)
		d.ResetsAt = &resets
	case daily.Enforced() && ent.Usage.Daily >= int64(daily):
		d.DenyCode = DenyDailyLimit
		d.Reason = fmt.Sprintf("daily prompt limit reached (%d/%d), resets at the start of the next UTC day", ent.Usage.Daily, daily)
		resets := NextDayWindow(now)
		d.ResetsAt = &resets
	default:
		d.Allowed = true
	}
	return d
}

// ComputeQuotaWarning returns the warning level and the rounded display
// percentage for monthly usage against limit. Limits that are not enforced
// always yield none and 0.
func ComputeQuotaWarning(used int64, limit Limit) (QuotaWarning, int) {
	if !limit.Enforced() {
		return QuotaWarningNone, 0
	}
	l := int64(limit)
	percent := int((used*200 + l) / (2 * l))

	// Thresholds compare exact ratios; the rounded percent is display only.
	switch {
	case used >= l:
		return QuotaWarningExceeded, percent
	case used*100 >= 90*l:
		return QuotaWarning90, percent
	case used*100 >= 80*l:
		return QuotaWarning80, percent
	default:
		return QuotaWarningNone, percent
	}
}
