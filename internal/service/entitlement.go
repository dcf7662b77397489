package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/metrics"
	"github.com/google/uuid"
)

// EntitlementResolver answers which plan, limits, and lifecycle status apply
// to an account right now. Nothing is cached between calls.
type EntitlementResolver interface {
	Resolve(ctx context.Context, accountID uuid.UUID, now time.Time) (*domain.Entitlement, error)
}

// entitlementResolver implements EntitlementResolver.
type entitlementResolver struct {
	store   domain.AccountStore
	catalog *domain.PlanCatalog
	logger  *slog.Logger
}

// NewEntitlementResolver creates a new EntitlementResolver.
func NewEntitlementResolver(store domain.AccountStore, catalog *domain.PlanCatalog, logger *slog.Logger) EntitlementResolver {
	return &entitlementResolver{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// Resolve reads the profile and the latest subscription and applies the
// lifecycle rules. Usage on the returned entitlement is zero.
func (r *entitlementResolver) Resolve(ctx context.Context, accountID uuid.UUID, now time.Time) (*domain.Entitlement, error) {
	const op = "EntitlementResolver.Resolve"

	profile, err := r.store.GetProfile(ctx, accountID)
	if err != nil {
		metrics.StoreFailed("account_store")
		r.logger.Error("failed to load profile", "error", err, "op", op, "account_id", accountID)
		return nil, err
	}

	// The admin override never needs the subscription row.
	if profile != nil && profile.IsAdmin {
		return domain.AdminEntitlement(r.catalog), nil
	}

	sub, err := r.store.GetLatestSubscription(ctx, accountID)
	if err != nil {
		metrics.StoreFailed("account_store")
		r.logger.Error("failed to load subscription", "error", err, "op", op, "account_id", accountID)
		return nil, err
	}

	ent, err := domain.ResolveEntitlement(r.catalog, sub, profile, now)
	if err != nil {
		r.logger.Error("subscription references unknown plan", "error", err, "op", op, "account_id", accountID)
		return nil, err
	}

	r.logger.Debug("entitlement resolved",
		"account_id", accountID,
		"plan", ent.Plan.ID,
		"status", ent.Status,
		"trial_active", ent.TrialActive,
	)
	return ent, nil
}
