package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/DukeRupert/promptgate/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sqlc-dev/pqtype"
)

// pgForeignKeyViolation is the Postgres SQLSTATE for a failed REFERENCES check.
const pgForeignKeyViolation = "23503"

// SubscriptionService records plan selections. It does no payment handling;
// the resulting rows feed the entitlement resolver.
type SubscriptionService interface {
	// Apply performs a create, upgrade, downgrade, cancel, or reactivate and
	// returns the resulting subscription.
	Apply(ctx context.Context, params domain.SubscriptionChangeParams, now time.Time) (*domain.SubscriptionRecord, error)
}

// subscriptionService implements SubscriptionService.
type subscriptionService struct {
	db      *sql.DB
	queries *repository.Queries
	catalog *domain.PlanCatalog
	logger  *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(db *sql.DB, queries *repository.Queries, catalog *domain.PlanCatalog, logger *slog.Logger) SubscriptionService {
	return &subscriptionService{
		db:      db,
		queries: queries,
		catalog: catalog,
		logger:  logger,
	}
}

// changeMetadata is stored in subscriptions.metadata for plan changes.
type changeMetadata struct {
	Action       domain.SubscriptionAction `json:"action"`
	PreviousPlan domain.PlanID             `json:"previous_plan,omitempty"`
	ChangedAt    time.Time                 `json:"changed_at"`
}

// Apply runs the change in one transaction.
func (s *subscriptionService) Apply(ctx context.Context, params domain.SubscriptionChangeParams, now time.Time) (*domain.SubscriptionRecord, error) {
	const op = "SubscriptionService.Apply"

	if !params.Action.Valid() {
		return nil, domain.Invalid(op, fmt.Sprintf("unknown action %q", params.Action))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to begin transaction")
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	current, err := qtx.GetCurrentSubscription(ctx, params.AccountID)
	hasCurrent := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("failed to load current subscription", "error", err, "op", op, "account_id", params.AccountID)
		return nil, domain.Unavailable(err, op, "failed to load subscription")
	}

	var row repository.Subscription
	switch params.Action {
	case domain.SubscriptionActionCancel, domain.SubscriptionActionReactivate:
		if !hasCurrent {
			return nil, domain.NotFound(op, "active subscription", params.AccountID.String())
		}
		row, err = s.setCancellation(ctx, qtx, current, params.Action == domain.SubscriptionActionCancel, now)
	default:
		var cur *repository.Subscription
		if hasCurrent {
			cur = &current
		}
		row, err = s.selectPlan(ctx, qtx, cur, params, now)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Unavailable(err, op, "failed to commit subscription change")
	}

	s.logger.Info("subscription changed",
		"account_id", params.AccountID,
		"action", params.Action,
		"plan", row.PlanType,
		"billing_cycle", row.BillingCycle,
		"cancel_at_period_end", row.CancelAtPeriodEnd,
	)
	return store.SubscriptionFromRow(row), nil
}

// selectPlan handles create, upgrade, and downgrade: the current record is
// repointed at the new plan, or a new active record is inserted.
func (s *subscriptionService) selectPlan(ctx context.Context, qtx *repository.Queries, current *repository.Subscription, params domain.SubscriptionChangeParams, now time.Time) (repository.Subscription, error) {
	const op = "SubscriptionService.selectPlan"

	plan, err := s.catalog.Lookup(params.PlanID)
	if err != nil {
		// Here the plan comes from the caller, so it is bad input.
		return repository.Subscription{}, domain.Invalid(op, fmt.Sprintf("unknown plan %q", params.PlanID))
	}

	cycle := params.BillingCycle
	if cycle == "" {
		cycle = domain.BillingCycleMonthly
	}
	if !cycle.Valid() {
		return repository.Subscription{}, domain.Invalid(op, fmt.Sprintf("unknown billing cycle %q", cycle))
	}
	if cycle == domain.BillingCycleYearly && !plan.HasYearly() {
		return repository.Subscription{}, domain.Invalid(op, fmt.Sprintf("plan %q has no yearly billing", plan.ID))
	}

	meta := changeMetadata{Action: params.Action, ChangedAt: now.UTC()}
	if current != nil {
		prev := domain.PlanID(current.PlanType)
		meta.PreviousPlan = prev
		switch params.Action {
		case domain.SubscriptionActionUpgrade:
			if s.catalog.IsAtLeast(prev, plan.ID) {
				return repository.Subscription{}, domain.Invalid(op, fmt.Sprintf("%s is not an upgrade from %s", plan.ID, prev))
			}
		case domain.SubscriptionActionDowngrade:
			if s.catalog.IsAtLeast(plan.ID, prev) {
				return repository.Subscription{}, domain.Invalid(op, fmt.Sprintf("%s is not a downgrade from %s", plan.ID, prev))
			}
		}
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return repository.Subscription{}, domain.Internal(err, op, "failed to encode metadata")
	}
	metadata := pqtype.NullRawMessage{RawMessage: metaJSON, Valid: true}

	start := now.UTC()
	end := cycle.PeriodEnd(start)

	var row repository.Subscription
	if current != nil {
		row, err = qtx.UpdateSubscriptionPlan(ctx, repository.UpdateSubscriptionPlanParams{
			ID:                 current.ID,
			PlanType:           string(plan.ID),
			BillingCycle:       string(cycle),
			CurrentPeriodStart: domain.ToNullTime(&start),
			CurrentPeriodEnd:   domain.ToNullTime(&end),
			Metadata:           metadata,
		})
	} else {
		if _, perr := qtx.GetProfile(ctx, params.AccountID); perr != nil {
			if errors.Is(perr, sql.ErrNoRows) {
				return repository.Subscription{}, domain.NotFound(op, "profile", params.AccountID.String())
			}
			return repository.Subscription{}, domain.Unavailable(perr, op, "failed to load profile")
		}
		row, err = qtx.CreateSubscription(ctx, repository.CreateSubscriptionParams{
			AccountID:          params.AccountID,
			PlanType:           string(plan.ID),
			BillingCycle:       string(cycle),
			CurrentPeriodStart: domain.ToNullTime(&start),
			CurrentPeriodEnd:   domain.ToNullTime(&end),
			Metadata:           metadata,
		})
	}
	if isForeignKeyViolation(err) {
		return repository.Subscription{}, domain.NotFound(op, "profile", params.AccountID.String())
	}
	if err != nil {
		s.logger.Error("failed to write subscription", "error", err, "op", op, "account_id", params.AccountID)
		return repository.Subscription{}, domain.Unavailable(err, op, "failed to save subscription")
	}

	if err := qtx.UpdateProfilePlan(ctx, repository.UpdateProfilePlanParams{
		ID:   params.AccountID,
		Plan: string(plan.ID),
	}); err != nil {
		return repository.Subscription{}, domain.Unavailable(err, op, "failed to update profile plan")
	}
	return row, nil
}

// setCancellation flags or unflags the current record for cancellation at
// period end. The status itself is left alone.
func (s *subscriptionService) setCancellation(ctx context.Context, qtx *repository.Queries, current repository.Subscription, cancel bool, now time.Time) (repository.Subscription, error) {
	const op = "SubscriptionService.setCancellation"

	var cancelledAt sql.NullTime
	if cancel {
		cancelledAt = sql.NullTime{Time: now.UTC(), Valid: true}
	}

	n, err := qtx.SetSubscriptionCancellation(ctx, repository.SetSubscriptionCancellationParams{
		ID:                current.ID,
		CancelAtPeriodEnd: cancel,
		CancelledAt:       cancelledAt,
	})
	if err != nil {
		return repository.Subscription{}, domain.Unavailable(err, op, "failed to update cancellation")
	}
	if n == 0 {
		return repository.Subscription{}, domain.NotFound(op, "subscription", current.ID.String())
	}

	current.CancelAtPeriodEnd = cancel
	current.CancelledAt = cancelledAt
	current.UpdatedAt = now.UTC()
	return current, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
