package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/metrics"
	"github.com/google/uuid"
)

// AdmissionController decides whether an account may run one more
// generation. A denial is returned as a decision, never as an error.
type AdmissionController interface {
	Evaluate(ctx context.Context, accountID uuid.UUID, now time.Time) (*domain.AdmissionDecision, *domain.Entitlement, error)
}

// admissionController implements AdmissionController.
type admissionController struct {
	resolver EntitlementResolver
	ledger   domain.UsageLedger
	logger   *slog.Logger
}

// NewAdmissionController creates a new AdmissionController.
func NewAdmissionController(resolver EntitlementResolver, ledger domain.UsageLedger, logger *slog.Logger) AdmissionController {
	return &admissionController{
		resolver: resolver,
		ledger:   ledger,
		logger:   logger,
	}
}

// Evaluate resolves the entitlement, fills in current usage, and applies the
// admission rules. Admin overrides skip the ledger read.
func (a *admissionController) Evaluate(ctx context.Context, accountID uuid.UUID, now time.Time) (*domain.AdmissionDecision, *domain.Entitlement, error) {
	const op = "AdmissionController.Evaluate"

	ent, err := a.resolver.Resolve(ctx, accountID, now)
	if err != nil {
		return nil, nil, err
	}

	if !ent.IsAdmin {
		usage, err := a.ledger.GetUsage(ctx, accountID, now)
		if err != nil {
			metrics.StoreFailed("usage_ledger")
			a.logger.Error("failed to read usage", "error", err, "op", op, "account_id", accountID)
			return nil, nil, err
		}
		ent.Usage = usage
	}

	decision := domain.Decide(ent, now)
	metrics.AdmissionEvaluated(decision)

	if !decision.Allowed {
		a.logger.Info("admission denied",
			"account_id", accountID,
			"plan", ent.Plan.ID,
			"deny_code", decision.DenyCode,
			"monthly_used", ent.Usage.Monthly,
			"daily_used", ent.Usage.Daily,
		)
	}
	return &decision, ent, nil
}
