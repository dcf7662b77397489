package service

import (
	"context"
	"testing"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitlementResolver_Resolve(t *testing.T) {
	accountID := uuid.New()
	store := &fakeAccountStore{sub: activeSub(accountID, domain.PlanPro)}
	r := NewEntitlementResolver(store, domain.DefaultPlanCatalog(), testLogger())

	ent, err := r.Resolve(context.Background(), accountID, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, ent.Plan.ID)
	assert.Equal(t, domain.SubscriptionStatusActive, ent.Status)
	assert.Zero(t, ent.Usage)
}

func TestEntitlementResolver_AdminSkipsSubscription(t *testing.T) {
	accountID := uuid.New()
	store := &fakeAccountStore{
		profile: &domain.AccountProfile{AccountID: accountID, IsAdmin: true},
		subErr:  errStoreDown,
	}
	r := NewEntitlementResolver(store, domain.DefaultPlanCatalog(), testLogger())

	ent, err := r.Resolve(context.Background(), accountID, testNow)
	require.NoError(t, err)
	assert.True(t, ent.IsAdmin)
	assert.Equal(t, domain.PlanUnlimited, ent.Plan.ID)
	assert.True(t, ent.Plan.MonthlyPromptLimit.IsUnlimited())
	assert.True(t, ent.Plan.DailyPromptLimit.IsUnlimited())
	assert.True(t, ent.Plan.APICallsPerMonth.IsUnlimited())
	assert.Equal(t, 0, store.subCalls)
}

func TestEntitlementResolver_Errors(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name  string
		store *fakeAccountStore
		code  string
	}{
		{"profile store down", &fakeAccountStore{profileErr: errStoreDown}, domain.EUNAVAILABLE},
		{"subscription store down", &fakeAccountStore{subErr: errStoreDown}, domain.EUNAVAILABLE},
		{"unknown stored plan", &fakeAccountStore{sub: activeSub(accountID, "platinum")}, domain.ECONFIG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewEntitlementResolver(tt.store, domain.DefaultPlanCatalog(), testLogger())
			_, err := r.Resolve(context.Background(), accountID, testNow)
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.ErrorCode(err))
		})
	}
}

func TestEntitlementResolver_SameInputsSameResult(t *testing.T) {
	accountID := uuid.New()
	trialEnd := testNow.AddDate(0, 0, 3)
	store := &fakeAccountStore{profile: &domain.AccountProfile{AccountID: accountID, PlanHint: domain.PlanStarter, TrialEnd: &trialEnd}}
	r := NewEntitlementResolver(store, domain.DefaultPlanCatalog(), testLogger())

	a, err := r.Resolve(context.Background(), accountID, testNow)
	require.NoError(t, err)
	b, err := r.Resolve(context.Background(), accountID, testNow)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, a.TrialActive)
	assert.Equal(t, 3, a.TrialDaysRemaining)
	assert.Equal(t, domain.PlanStarter, a.Plan.ID)
}
