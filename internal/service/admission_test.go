package service

import (
	"context"
	"testing"
	"time"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdmission(store domain.AccountStore, l domain.UsageLedger) AdmissionController {
	r := NewEntitlementResolver(store, domain.DefaultPlanCatalog(), testLogger())
	return NewAdmissionController(r, l, testLogger())
}

func TestAdmissionController_Evaluate(t *testing.T) {
	accountID := uuid.New()
	suspended := activeSub(accountID, domain.PlanPro)
	suspended.Status = domain.SubscriptionStatusSuspended

	tests := []struct {
		name     string
		sub      *domain.SubscriptionRecord
		used     int
		allowed  bool
		denyCode domain.DenyCode
		warning  domain.QuotaWarning
	}{
		{"free with room", activeSub(accountID, domain.PlanFree), 1, true, domain.DenyNone, domain.QuotaWarningNone},
		{"free daily limit", activeSub(accountID, domain.PlanFree), 2, false, domain.DenyDailyLimit, domain.QuotaWarningNone},
		{"starter daily limit", activeSub(accountID, domain.PlanStarter), 5, false, domain.DenyDailyLimit, domain.QuotaWarningNone},
		{"suspended", suspended, 0, false, domain.DenySuspended, domain.QuotaWarningNone},
		{"no subscription or trial", nil, 0, false, domain.DenyExpired, domain.QuotaWarningNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newCountingLedger()
			l.seed(accountID, tt.used)
			a := newTestAdmission(&fakeAccountStore{sub: tt.sub}, l)

			d, ent, err := a.Evaluate(context.Background(), accountID, testNow)
			require.NoError(t, err)
			require.NotNil(t, ent)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.denyCode, d.DenyCode)
			assert.Equal(t, tt.warning, d.QuotaWarning)
			assert.Equal(t, int64(tt.used), ent.Usage.Daily)
		})
	}
}

func TestAdmissionController_MonthlyLimitAcrossDays(t *testing.T) {
	accountID := uuid.New()
	l := newCountingLedger()
	// Five prompts on earlier days of the month exhaust the free plan.
	for i := 0; i < 5; i++ {
		l.UsageLedger.Increment(context.Background(), accountID, testNow.AddDate(0, 0, -(i+1)))
	}
	a := newTestAdmission(&fakeAccountStore{sub: activeSub(accountID, domain.PlanFree)}, l)

	d, ent, err := a.Evaluate(context.Background(), accountID, testNow)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, domain.DenyMonthlyLimit, d.DenyCode)
	assert.Equal(t, "monthly prompt limit reached (5/5)", d.Reason)
	assert.Equal(t, domain.QuotaWarningExceeded, d.QuotaWarning)
	assert.Equal(t, int64(0), ent.Usage.Daily)
	require.NotNil(t, d.ResetsAt)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *d.ResetsAt)
}

func TestAdmissionController_AdminSkipsLedger(t *testing.T) {
	accountID := uuid.New()
	l := newCountingLedger()
	l.readErr = errStoreDown
	a := newTestAdmission(&fakeAccountStore{profile: &domain.AccountProfile{AccountID: accountID, IsAdmin: true}}, l)

	d, ent, err := a.Evaluate(context.Background(), accountID, testNow)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, domain.QuotaWarningNone, d.QuotaWarning)
	assert.True(t, ent.IsAdmin)
	assert.Zero(t, ent.Usage)
	assert.Equal(t, 0, l.reads)
}

func TestAdmissionController_LedgerDown(t *testing.T) {
	accountID := uuid.New()
	l := newCountingLedger()
	l.readErr = errStoreDown
	a := newTestAdmission(&fakeAccountStore{sub: activeSub(accountID, domain.PlanPro)}, l)

	d, _, err := a.Evaluate(context.Background(), accountID, testNow)
	require.Error(t, err)
	assert.Nil(t, d)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestAdmissionController_WarningWhileAllowed(t *testing.T) {
	accountID := uuid.New()
	l := newCountingLedger()
	// 180/200 on pro, spread across earlier days so the daily window is empty.
	for i := 0; i < 180; i++ {
		l.UsageLedger.Increment(context.Background(), accountID, testNow.AddDate(0, 0, -1-(i%10)))
	}
	a := newTestAdmission(&fakeAccountStore{sub: activeSub(accountID, domain.PlanPro)}, l)

	d, _, err := a.Evaluate(context.Background(), accountID, testNow)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, domain.QuotaWarning90, d.QuotaWarning)
	assert.Equal(t, 90, d.MonthlyUsagePercent)
}
