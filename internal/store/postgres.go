// Package store adapts the generated repository queries to the domain
// persistence boundaries.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/google/uuid"
)

// RoleAdmin is the profile role that grants the administrative override.
const RoleAdmin = "admin"

// AccountStore reads subscription and profile rows from Postgres.
type AccountStore struct {
	queries *repository.Queries
}

// NewAccountStore creates an AccountStore.
func NewAccountStore(queries *repository.Queries) *AccountStore {
	return &AccountStore{queries: queries}
}

var _ domain.AccountStore = (*AccountStore)(nil)

// GetLatestSubscription returns the most recent subscription row, or nil if
// the account never selected a plan.
func (s *AccountStore) GetLatestSubscription(ctx context.Context, accountID uuid.UUID) (*domain.SubscriptionRecord, error) {
	const op = "store.get_latest_subscription"

	row, err := s.queries.GetLatestSubscription(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to load subscription")
	}
	return SubscriptionFromRow(row), nil
}

// GetProfile returns the account profile, or nil if none exists.
func (s *AccountStore) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.AccountProfile, error) {
	const op = "store.get_profile"

	row, err := s.queries.GetProfile(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to load profile")
	}
	return ProfileFromRow(row), nil
}

// SubscriptionFromRow converts a repository row into a domain record.
func SubscriptionFromRow(row repository.Subscription) *domain.SubscriptionRecord {
	return &domain.SubscriptionRecord{
		ID:                 row.ID,
		AccountID:          row.AccountID,
		PlanID:             domain.PlanID(row.PlanType),
		Status:             domain.SubscriptionStatus(row.Status),
		BillingCycle:       domain.BillingCycle(row.BillingCycle),
		CurrentPeriodStart: domain.NullTimeValue(row.CurrentPeriodStart),
		CurrentPeriodEnd:   domain.NullTimeValue(row.CurrentPeriodEnd),
		TrialEnd:           domain.NullTimeValue(row.TrialEnd),
		CancelAtPeriodEnd:  row.CancelAtPeriodEnd,
		CancelledAt:        domain.NullTimeValue(row.CancelledAt),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

// ProfileFromRow converts a repository row into a domain profile.
func ProfileFromRow(row repository.Profile) *domain.AccountProfile {
	return &domain.AccountProfile{
		AccountID:  row.ID,
		Email:      row.Email,
		PlanHint:   domain.PlanID(row.Plan),
		TrialStart: domain.NullTimeValue(row.TrialStart),
		TrialEnd:   domain.NullTimeValue(row.TrialEnd),
		IsAdmin:    row.Role == RoleAdmin,
	}
}
