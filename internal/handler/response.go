// Package handler contains the JSON HTTP handlers for promptgate.
//
// Every /api route expects the account identity to have been placed in the
// request context by middleware.RequireAccount.
package handler

import (
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
)

// SummaryJSON is the wire form of domain.EntitlementSummary. Limits use -1
// for unlimited and 0 for a feature the plan does not include.
type SummaryJSON struct {
	Plan                string     `json:"plan"`
	PlanName            string     `json:"planName"`
	Status              string     `json:"status"`
	ModelTier           string     `json:"modelTier"`
	TrialActive         bool       `json:"trialActive"`
	TrialDaysRemaining  int        `json:"trialDaysRemaining"`
	SubscriptionEnd     *time.Time `json:"subscriptionEnd,omitempty"`
	BillingCycle        string     `json:"billingCycle,omitempty"`
	CancelAtPeriodEnd   bool       `json:"cancelAtPeriodEnd"`
	IsAdmin             bool       `json:"isAdmin,omitempty"`
	MonthlyUsed         int64      `json:"monthlyUsed"`
	MonthlyLimit        int64      `json:"monthlyLimit"`
	DailyUsed           int64      `json:"dailyUsed"`
	DailyLimit          int64      `json:"dailyLimit"`
	APICallsLimit       int64      `json:"apiCallsLimit"`
	MonthlyUsagePercent int        `json:"monthlyUsagePercent"`
	QuotaWarning        string     `json:"quotaWarning"`
	CanGenerate         bool       `json:"canGenerate"`
}

// NewSummaryJSON converts a summary for the wire.
func NewSummaryJSON(s domain.EntitlementSummary) SummaryJSON {
	return SummaryJSON{
		Plan:                string(s.Plan),
		PlanName:            s.PlanName,
		Status:              string(s.Status),
		ModelTier:           string(s.ModelTier),
		TrialActive:         s.TrialActive,
		TrialDaysRemaining:  s.TrialDaysRemaining,
		SubscriptionEnd:     s.SubscriptionEnd,
		BillingCycle:        string(s.BillingCycle),
		CancelAtPeriodEnd:   s.CancelAtPeriodEnd,
		IsAdmin:             s.IsAdmin,
		MonthlyUsed:         s.MonthlyUsed,
		MonthlyLimit:        int64(s.MonthlyLimit),
		DailyUsed:           s.DailyUsed,
		DailyLimit:          int64(s.DailyLimit),
		APICallsLimit:       int64(s.APICallsLimit),
		MonthlyUsagePercent: s.MonthlyUsagePercent,
		QuotaWarning:        string(s.QuotaWarning),
		CanGenerate:         s.CanGenerate,
	}
}

// DecisionJSON is the wire form of a denial or the current admission state.
type DecisionJSON struct {
	Allowed      bool       `json:"allowed"`
	Reason       string     `json:"reason,omitempty"`
	DenyCode     string     `json:"denyCode,omitempty"`
	QuotaWarning string     `json:"quotaWarning"`
	ResetsAt     *time.Time `json:"resetsAt,omitempty"`
}

// NewDecisionJSON converts a decision for the wire.
func NewDecisionJSON(d domain.AdmissionDecision) DecisionJSON {
	return DecisionJSON{
		Allowed:      d.Allowed,
		Reason:       d.Reason,
		DenyCode:     string(d.DenyCode),
		QuotaWarning: string(d.QuotaWarning),
		ResetsAt:     d.ResetsAt,
	}
}
