package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/ledger"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time { return testNow }

// fakeAccountStore serves one subscription and one profile.
type fakeAccountStore struct {
	sub        *domain.SubscriptionRecord
	profile    *domain.AccountProfile
	subErr     error
	profileErr error
	subCalls   int
}

func (f *fakeAccountStore) GetLatestSubscription(ctx context.Context, accountID uuid.UUID) (*domain.SubscriptionRecord, error) {
	f.subCalls++
	return f.sub, f.subErr
}

func (f *fakeAccountStore) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.AccountProfile, error) {
	return f.profile, f.profileErr
}

func activeSub(accountID uuid.UUID, plan domain.PlanID) *domain.SubscriptionRecord {
	end := testNow.AddDate(0, 0, 20)
	return &domain.SubscriptionRecord{
		ID:               uuid.New(),
		AccountID:        accountID,
		PlanID:           plan,
		Status:           domain.SubscriptionStatusActive,
		BillingCycle:     domain.BillingCycleMonthly,
		CurrentPeriodEnd: &end,
	}
}

// countingLedger wraps a ledger and can be told to fail.
type countingLedger struct {
	domain.UsageLedger
	reads        int
	increments   int
	readErr      error
	incrementErr error
	incrementCtx error
}

func newCountingLedger() *countingLedger {
	return &countingLedger{UsageLedger: ledger.NewMemory()}
}

func (l *countingLedger) GetUsage(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	l.reads++
	if l.readErr != nil {
		return domain.UsageSnapshot{}, l.readErr
	}
	return l.UsageLedger.GetUsage(ctx, accountID, now)
}

func (l *countingLedger) Increment(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.UsageSnapshot, error) {
	l.increments++
	l.incrementCtx = ctx.Err()
	if l.incrementErr != nil {
		return domain.UsageSnapshot{}, l.incrementErr
	}
	return l.UsageLedger.Increment(ctx, accountID, now)
}

// seed records n prior generations for accountID at testNow.
func (l *countingLedger) seed(accountID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		l.UsageLedger.Increment(context.Background(), accountID, testNow)
	}
}

var errStoreDown = domain.Unavailable(errors.New("connection refused"), "test", "store down")

// recordedSleeps captures backoff delays without waiting.
type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}
