package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlanCatalog_Lookup(t *testing.T) {
	c := DefaultPlanCatalog()

	tests := []struct {
		id      PlanID
		monthly Limit
		daily   Limit
		api     Limit
		tier    ModelTier
	}{
		{PlanFree, 5, 2, FeatureAbsent, ModelTierBasic},
		{PlanStarter, 50, 5, FeatureAbsent, ModelTierBasic},
		{PlanPro, 200, Unlimited, 3000, ModelTierAdvanced},
		{PlanUnlimited, Unlimited, Unlimited, 150000, ModelTierPremium},
		{PlanDevStarter, FeatureAbsent, FeatureAbsent, 10000, ModelTierAdvanced},
		{PlanDevPro, FeatureAbsent, FeatureAbsent, 50000, ModelTierPremium},
		{PlanEnterprise, Unlimited, Unlimited, Unlimited, ModelTierCustom},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			p, err := c.Lookup(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.monthly, p.MonthlyPromptLimit)
			assert.Equal(t, tt.daily, p.DailyPromptLimit)
			assert.Equal(t, tt.api, p.APICallsPerMonth)
			assert.Equal(t, tt.tier, p.ModelTier)
		})
	}
}

func TestPlanCatalog_LookupUnknown(t *testing.T) {
	c := DefaultPlanCatalog()

	_, err := c.Lookup("platinum")
	require.Error(t, err)
	assert.Equal(t, ECONFIG, ErrorCode(err))
	assert.Panics(t, func() { c.MustLookup("platinum") })
}

func TestNewPlanCatalog_Validation(t *testing.T) {
	free := PlanTier{ID: PlanFree}
	top := PlanTier{ID: PlanUnlimited}

	_, err := NewPlanCatalog(free, top, free)
	assert.Equal(t, ECONFIG, ErrorCode(err), "duplicate tier")

	_, err = NewPlanCatalog(top)
	assert.Equal(t, ECONFIG, ErrorCode(err), "missing free tier")

	_, err = NewPlanCatalog(free)
	assert.Equal(t, ECONFIG, ErrorCode(err), "missing top tier")

	c, err := NewPlanCatalog(free, top)
	require.NoError(t, err)
	assert.Len(t, c.Plans(), 2)
}

func TestPlanCatalog_IsAtLeast(t *testing.T) {
	c := DefaultPlanCatalog()

	assert.True(t, c.IsAtLeast(PlanPro, PlanStarter))
	assert.True(t, c.IsAtLeast(PlanPro, PlanPro))
	assert.False(t, c.IsAtLeast(PlanStarter, PlanPro))
	assert.True(t, c.IsAtLeast(PlanEnterprise, PlanDevStarter))
	assert.False(t, c.IsAtLeast(PlanEnterprise, PlanFree), "different user types never compare")
	assert.False(t, c.IsAtLeast("platinum", PlanFree))
}

func TestPlanCatalog_PlansFor(t *testing.T) {
	c := DefaultPlanCatalog()

	normal := c.PlansFor(UserTypeNormal)
	require.Len(t, normal, 4)
	assert.Equal(t, PlanFree, normal[0].ID)
	assert.Equal(t, PlanUnlimited, normal[3].ID)

	assert.Len(t, c.PlansFor(UserTypeDeveloper), 3)
}

func TestLimit_String(t *testing.T) {
	assert.Equal(t, "unlimited", Unlimited.String())
	assert.Equal(t, "none", FeatureAbsent.String())
	assert.Equal(t, "50", Limit(50).String())
	assert.False(t, Unlimited.Enforced())
	assert.False(t, FeatureAbsent.Enforced())
	assert.True(t, Limit(1).Enforced())
}
