// Package domain contains core business types and interfaces.
//
// This file implements the subscription lifecycle state machine that turns
// stored subscription and profile rows into a point-in-time Entitlement.
package domain

import (
	"fmt"
	"time"
)

// Entitlement is the resolved answer to "what plan and limits apply to this
// account right now". It is recomputed on every request and never cached.
type Entitlement struct {
	Plan               PlanTier
	Status             SubscriptionStatus
	TrialActive        bool
	TrialDaysRemaining int
	TrialEnd           *time.Time
	SubscriptionEnd    *time.Time
	BillingCycle       BillingCycle
	CancelAtPeriodEnd  bool
	IsAdmin            bool
	Usage              UsageSnapshot
}

// AdminEntitlement returns the synthetic entitlement for administrative
// override accounts: the top tier with every limit lifted.
func AdminEntitlement(c *PlanCatalog) *Entitlement {
	plan := c.Top()
	plan.MonthlyPromptLimit = Unlimited
	plan.DailyPromptLimit = Unlimited
	plan.APICallsPerMonth = Unlimited
	return &Entitlement{
		Plan:    plan,
		Status:  SubscriptionStatusActive,
		IsAdmin: true,
	}
}

// ResolveEntitlement applies the lifecycle rules to the stored state. It is a
// pure function of its inputs; usage is left zero for the caller to fill.
//
// Rules, first match wins:
//   - profile carries the admin flag: AdminEntitlement
//   - no subscription: profile trial window decides between trial and expired
//   - otherwise: the stored status table, unknown statuses fail closed
func ResolveEntitlement(c *PlanCatalog, sub *SubscriptionRecord, profile *AccountProfile, now time.Time) (*Entitlement, error) {
	const op = "entitlement.resolve"

	if profile != nil && profile.IsAdmin {
		return AdminEntitlement(c), nil
	}

	if sub == nil {
		return resolveFromProfile(c, profile, now), nil
	}

	ent := &Entitlement{
		BillingCycle:      sub.BillingCycle,
		SubscriptionEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		TrialEnd:          sub.TrialEnd,
	}

	keepPlan := false
	switch sub.Status {
	case SubscriptionStatusActive:
		// A missing period end never grants access.
		if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(now) {
			ent.Status, keepPlan = SubscriptionStatusActive, true
		} else {
			ent.Status = SubscriptionStatusExpired
		}
	case SubscriptionStatusTrial:
		if sub.TrialEnd != nil && sub.TrialEnd.After(now) {
			ent.Status, keepPlan = SubscriptionStatusTrial, true
		} else {
			ent.Status = SubscriptionStatusExpired
		}
	case SubscriptionStatusSuspended:
		ent.Status = SubscriptionStatusSuspended
	case SubscriptionStatusCancelled:
		// Still paid through the current period.
		if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.After(now) {
			ent.Status, keepPlan = SubscriptionStatusActive, true
		} else {
			ent.Status = SubscriptionStatusCancelled
		}
	default:
		ent.Status = SubscriptionStatusExpired
	}

	if !keepPlan {
		ent.Plan = c.Free()
		return ent, nil
	}

	plan, err := c.Lookup(sub.PlanID)
	if err != nil {
		return nil, Wrap(err, ECONFIG, op, fmt.Sprintf("subscription %s references unknown plan %q", sub.ID, sub.PlanID))
	}
	ent.Plan = plan

	if ent.Status == SubscriptionStatusTrial {
		ent.TrialActive = true
		ent.TrialDaysRemaining = TrialDaysRemaining(*sub.TrialEnd, now)
	}
	return ent, nil
}

func resolveFromProfile(c *PlanCatalog, profile *AccountProfile, now time.Time) *Entitlement {
	ent := &Entitlement{
		Status: SubscriptionStatusExpired,
		Plan:   c.Free(),
	}
	if profile == nil || profile.TrialEnd == nil {
		return ent
	}
	ent.TrialEnd = profile.TrialEnd
	if !now.Before(*profile.TrialEnd) {
		return ent
	}

	ent.Status = SubscriptionStatusTrial
	ent.TrialActive = true
	ent.TrialDaysRemaining = TrialDaysRemaining(*profile.TrialEnd, now)
	ent.Plan = trialPlan(c, profile.PlanHint)
	return ent
}

// TrialCeiling is the highest tier a profile trial can grant.
const TrialCeiling = PlanPro

// trialPlan maps a profile hint to the tier granted during its trial: paid
// hints up to TrialCeiling are kept, any other paid hint is capped at
// TrialCeiling, and everything else is free.
func trialPlan(c *PlanCatalog, hint PlanID) PlanTier {
	t, err := c.Lookup(hint)
	if err != nil || !t.IsPaid() {
		return c.Free()
	}
	if c.IsAtLeast(TrialCeiling, hint) {
		return t
	}
	if ceiling, err := c.Lookup(TrialCeiling); err == nil {
		return ceiling
	}
	return c.Free()
}

// TrialDaysRemaining is the number of started days left before trialEnd,
// never negative.
func TrialDaysRemaining(trialEnd, now time.Time) int {
	const day = 24 * time.Hour
	d := trialEnd.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + day - 1) / day)
}
