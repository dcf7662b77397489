package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subscriptionColumns = []string{
	"id", "account_id", "plan_type", "status", "billing_cycle", "current_period_start",
	"current_period_end", "trial_end", "cancel_at_period_end", "cancelled_at", "metadata",
	"created_at", "updated_at",
}

var profileColumns = []string{
	"id", "email", "plan", "trial_start", "trial_end", "role", "created_at", "updated_at",
}

func newTestStore(t *testing.T) (*AccountStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccountStore(repository.New(db)), mock
}

func TestAccountStore_GetLatestSubscription(t *testing.T) {
	s, mock := newTestStore(t)
	accountID := uuid.New()
	subID := uuid.New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 1, 0)

	rows := sqlmock.NewRows(subscriptionColumns).AddRow(
		subID.String(), accountID.String(), "pro", "active", "monthly", now,
		end, nil, true, now, nil,
		now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE account_id").
		WithArgs(accountID).
		WillReturnRows(rows)

	sub, err := s.GetLatestSubscription(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, subID, sub.ID)
	assert.Equal(t, domain.PlanPro, sub.PlanID)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, domain.BillingCycleMonthly, sub.BillingCycle)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, end.Equal(*sub.CurrentPeriodEnd))
	assert.Nil(t, sub.TrialEnd)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.NotNil(t, sub.CancelledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_GetLatestSubscription_None(t *testing.T) {
	s, mock := newTestStore(t)
	accountID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE account_id").
		WithArgs(accountID).
		WillReturnError(sql.ErrNoRows)

	sub, err := s.GetLatestSubscription(context.Background(), accountID)
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_GetLatestSubscription_StoreDown(t *testing.T) {
	s, mock := newTestStore(t)
	accountID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE account_id").
		WithArgs(accountID).
		WillReturnError(errors.New("connection refused"))

	_, err := s.GetLatestSubscription(context.Background(), accountID)
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_GetProfile(t *testing.T) {
	s, mock := newTestStore(t)
	accountID := uuid.New()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	trialEnd := now.AddDate(0, 0, 14)

	rows := sqlmock.NewRows(profileColumns).AddRow(
		accountID.String(), "ada@example.com", "pro", now, trialEnd, "admin", now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs(accountID).
		WillReturnRows(rows)

	p, err := s.GetProfile(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, accountID, p.AccountID)
	assert.Equal(t, domain.PlanPro, p.PlanHint)
	assert.True(t, p.IsAdmin)
	require.NotNil(t, p.TrialEnd)
	assert.True(t, trialEnd.Equal(*p.TrialEnd))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_GetProfile_Missing(t *testing.T) {
	s, mock := newTestStore(t)
	accountID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs(accountID).
		WillReturnError(sql.ErrNoRows)

	p, err := s.GetProfile(context.Background(), accountID)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}
