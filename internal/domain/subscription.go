// Package domain contains core business types and interfaces.
//
// This file defines persisted subscription and profile records and the
// store boundary the entitlement resolver reads them through.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the stored lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// BillingCycle is how often a subscription renews.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Valid reports whether b is a known billing cycle.
func (b BillingCycle) Valid() bool {
	return b == BillingCycleMonthly || b == BillingCycleYearly
}

// PeriodEnd returns the end of a billing period that starts at start.
func (b BillingCycle) PeriodEnd(start time.Time) time.Time {
	if b == BillingCycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// SubscriptionRecord is the most recent subscription row for an account.
// Rows are never hard-deleted.
type SubscriptionRecord struct {
	ID                 uuid.UUID
	AccountID          uuid.UUID
	PlanID             PlanID
	Status             SubscriptionStatus
	BillingCycle       BillingCycle
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	TrialEnd           *time.Time
	CancelAtPeriodEnd  bool
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AccountProfile holds the per-account fallback facts used when no
// subscription exists yet.
type AccountProfile struct {
	AccountID  uuid.UUID
	Email      string
	PlanHint   PlanID
	TrialStart *time.Time
	TrialEnd   *time.Time
	IsAdmin    bool
}

// AccountStore is the persistence boundary for subscription and profile
// state. Both getters return nil, nil when the row does not exist.
type AccountStore interface {
	GetLatestSubscription(ctx context.Context, accountID uuid.UUID) (*SubscriptionRecord, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*AccountProfile, error)
}

// SubscriptionAction is a plan-selection bookkeeping operation.
type SubscriptionAction string

const (
	SubscriptionActionCreate     SubscriptionAction = "create"
	SubscriptionActionUpgrade    SubscriptionAction = "upgrade"
	SubscriptionActionDowngrade  SubscriptionAction = "downgrade"
	SubscriptionActionCancel     SubscriptionAction = "cancel"
	SubscriptionActionReactivate SubscriptionAction = "reactivate"
)

// Valid reports whether a is a known action.
func (a SubscriptionAction) Valid() bool {
	switch a {
	case SubscriptionActionCreate, SubscriptionActionUpgrade, SubscriptionActionDowngrade,
		SubscriptionActionCancel, SubscriptionActionReactivate:
		return true
	}
	return false
}

// SubscriptionChangeParams contains the validated input for a plan change.
type SubscriptionChangeParams struct {
	AccountID    uuid.UUID
	Action       SubscriptionAction
	PlanID       PlanID
	BillingCycle BillingCycle
}
