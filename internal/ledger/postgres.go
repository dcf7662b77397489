package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/google/uuid"
)

// Postgres stores counters in the daily_usage and monthly_usage tables.
type Postgres struct {
	db      *sql.DB
	queries *repository.Queries
}

// NewPostgres creates a Postgres-backed ledger.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db:      db,
		queries: repository.New(db),
	}
}

// GetUsage reads the current day and month counters.
func (l *Postgres) GetUsage(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	const op = "ledger.get_usage"

	daily, err := l.queries.GetDailyUsage(ctx, repository.GetDailyUsageParams{
		AccountID: accountID,
		UsageDate: domain.DayWindow(now),
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to read daily usage")
	}

	monthly, err := l.queries.GetMonthlyUsage(ctx, repository.GetMonthlyUsageParams{
		AccountID:   accountID,
		PeriodStart: domain.MonthWindow(now),
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to read monthly usage")
	}

	return domain.UsageSnapshot{Daily: daily, Monthly: monthly}, nil
}

// Increment upserts both counters inside one transaction.
func (l *Postgres) Increment(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	const op = "ledger.increment"

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	qtx := l.queries.WithTx(tx)

	daily, err := qtx.IncrementDailyUsage(ctx, repository.IncrementDailyUsageParams{
		AccountID: accountID,
		UsageDate: domain.DayWindow(now),
	})
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to increment daily usage")
	}

	monthly, err := qtx.IncrementMonthlyUsage(ctx, repository.IncrementMonthlyUsageParams{
		AccountID:   accountID,
		PeriodStart: domain.MonthWindow(now),
	})
	if err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to increment monthly usage")
	}

	if err := tx.Commit(); err != nil {
		return domain.UsageSnapshot{}, domain.Unavailable(err, op, "failed to commit usage increment")
	}

	return domain.UsageSnapshot{Daily: daily, Monthly: monthly}, nil
}

// History returns the last months monthly counters, newest first.
func (l *Postgres) History(ctx context.Context, accountID uuid.UUID, now time.Time, months int) ([]domain.MonthlyUsage, error) {
	const op = "ledger.history"

	if months <= 0 {
		return nil, nil
	}
	since := domain.MonthWindow(now).AddDate(0, -(months - 1), 0)

	rows, err := l.queries.ListMonthlyUsageSince(ctx, repository.ListMonthlyUsageSinceParams{
		AccountID:   accountID,
		PeriodStart: since,
	})
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to read usage history")
	}

	counts := make(map[time.Time]int64, len(rows))
	for _, r := range rows {
		counts[domain.MonthWindow(r.PeriodStart)] = r.PromptCount
	}
	return fillHistory(now, months, counts), nil
}
