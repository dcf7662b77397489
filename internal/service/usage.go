package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/metrics"
	"github.com/google/uuid"
)

// DefaultHistoryMonths is how many monthly windows a usage report includes.
const DefaultHistoryMonths = 6

// UsageReport is the current consumption of an account plus recent history.
type UsageReport struct {
	Summary    domain.EntitlementSummary
	Decision   domain.AdmissionDecision
	DayStart   time.Time
	MonthStart time.Time
	History    []domain.MonthlyUsage
}

// UsageService reports account usage.
type UsageService interface {
	// Report returns current windows, the admission summary, and the last
	// months monthly windows newest first.
	Report(ctx context.Context, accountID uuid.UUID, now time.Time, months int) (*UsageReport, error)
}

// usageService implements UsageService.
type usageService struct {
	admission AdmissionController
	ledger    domain.UsageLedger
	logger    *slog.Logger
}

// NewUsageService creates a new UsageService.
func NewUsageService(admission AdmissionController, ledger domain.UsageLedger, logger *slog.Logger) UsageService {
	return &usageService{
		admission: admission,
		ledger:    ledger,
		logger:    logger,
	}
}

// Report evaluates the account as an admission would and adds history.
func (s *usageService) Report(ctx context.Context, accountID uuid.UUID, now time.Time, months int) (*UsageReport, error) {
	const op = "UsageService.Report"

	if months <= 0 {
		months = DefaultHistoryMonths
	}

	decision, ent, err := s.admission.Evaluate(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	history, err := s.ledger.History(ctx, accountID, now, months)
	if err != nil {
		metrics.StoreFailed("usage_ledger")
		s.logger.Error("failed to read usage history", "error", err, "op", op, "account_id", accountID)
		return nil, err
	}

	return &UsageReport{
		Summary:    domain.Summarize(ent, *decision),
		Decision:   *decision,
		DayStart:   domain.DayWindow(now),
		MonthStart: domain.MonthWindow(now),
		History:    history,
	}, nil
}
