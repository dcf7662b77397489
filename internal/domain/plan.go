// Package domain contains core business types and interfaces.
//
// This file defines the plan catalog: the immutable table of plan tiers and
// their numeric limits. A catalog is built once at process start and passed
// by reference into the services that need it.
package domain

import (
	"fmt"
	"strconv"
)

// PlanID identifies a plan tier.
type PlanID string

const (
	PlanFree       PlanID = "free"
	PlanStarter    PlanID = "starter"
	PlanPro        PlanID = "pro"
	PlanUnlimited  PlanID = "unlimited"
	PlanDevStarter PlanID = "dev_starter"
	PlanDevPro     PlanID = "dev_pro"
	PlanEnterprise PlanID = "enterprise"
)

// UserType separates consumer plans from developer (API) plans.
type UserType string

const (
	UserTypeNormal    UserType = "normal"
	UserTypeDeveloper UserType = "developer"
)

// ModelTier selects the prompt-construction strategy for generation.
type ModelTier string

const (
	ModelTierBasic    ModelTier = "basic"
	ModelTierAdvanced ModelTier = "advanced"
	ModelTierPremium  ModelTier = "premium"
	ModelTierCustom   ModelTier = "custom"
)

// Limit is a numeric plan limit. Two sentinel values exist alongside
// ordinary non-negative counts.
type Limit int64

const (
	// Unlimited means the dimension is never enforced.
	Unlimited Limit = -1
	// FeatureAbsent means the plan does not include the dimension at all.
	FeatureAbsent Limit = 0
)

// Enforced reports whether the limit is a finite positive cap.
func (l Limit) Enforced() bool {
	return l > 0
}

// IsUnlimited reports whether the limit is the unlimited sentinel.
func (l Limit) IsUnlimited() bool {
	return l == Unlimited
}

// String renders the limit for display.
func (l Limit) String() string {
	switch {
	case l == Unlimited:
		return "unlimited"
	case l == FeatureAbsent:
		return "none"
	default:
		return strconv.FormatInt(int64(l), 10)
	}
}

// PlanTier is an immutable catalog entry.
type PlanTier struct {
	ID                 PlanID
	Name               string
	UserType           UserType
	MonthlyPriceTRY    int
	YearlyPriceTRY     int // 0 when no yearly option exists
	MonthlyPromptLimit Limit
	DailyPromptLimit   Limit
	APICallsPerMonth   Limit
	ModelTier          ModelTier
}

// IsPaid returns true if the tier has a non-zero monthly price.
func (p PlanTier) IsPaid() bool {
	return p.MonthlyPriceTRY > 0
}

// HasYearly returns true if the tier can be billed yearly.
func (p PlanTier) HasYearly() bool {
	return p.YearlyPriceTRY > 0
}

// PlanCatalog is a read-only lookup of plan tiers. The zero value is empty;
// use NewPlanCatalog or DefaultPlanCatalog.
type PlanCatalog struct {
	order []PlanID
	tiers map[PlanID]PlanTier
	top   PlanID
	free  PlanID
}

// NewPlanCatalog builds a catalog from tiers in display order. The catalog
// must contain PlanFree and the override tier PlanUnlimited.
func NewPlanCatalog(tiers ...PlanTier) (*PlanCatalog, error) {
	const op = "plan.new_catalog"

	c := &PlanCatalog{
		tiers: make(map[PlanID]PlanTier, len(tiers)),
		top:   PlanUnlimited,
		free:  PlanFree,
	}
	for _, t := range tiers {
		if t.ID == "" {
			return nil, ConfigError(op, "plan tier without an identifier")
		}
		if _, dup := c.tiers[t.ID]; dup {
			return nil, ConfigError(op, fmt.Sprintf("duplicate plan tier %q", t.ID))
		}
		c.tiers[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	if _, ok := c.tiers[c.free]; !ok {
		return nil, ConfigError(op, "catalog is missing the free tier")
	}
	if _, ok := c.tiers[c.top]; !ok {
		return nil, ConfigError(op, "catalog is missing the unlimited tier")
	}
	return c, nil
}

// DefaultPlanCatalog returns the compiled-in seven-tier catalog.
func DefaultPlanCatalog() *PlanCatalog {
	c, err := NewPlanCatalog(
		PlanTier{ID: PlanFree, Name: "Free", UserType: UserTypeNormal,
			MonthlyPromptLimit: 5, DailyPromptLimit: 2, APICallsPerMonth: FeatureAbsent, ModelTier: ModelTierBasic},
		PlanTier{ID: PlanStarter, Name: "Starter", UserType: UserTypeNormal, MonthlyPriceTRY: 149, YearlyPriceTRY: 1490,
			MonthlyPromptLimit: 50, DailyPromptLimit: 5, APICallsPerMonth: FeatureAbsent, ModelTier: ModelTierBasic},
		PlanTier{ID: PlanPro, Name: "Pro", UserType: UserTypeNormal, MonthlyPriceTRY: 299, YearlyPriceTRY: 2990,
			MonthlyPromptLimit: 200, DailyPromptLimit: Unlimited, APICallsPerMonth: 3000, ModelTier: ModelTierAdvanced},
		PlanTier{ID: PlanUnlimited, Name: "Unlimited", UserType: UserTypeNormal, MonthlyPriceTRY: 499, YearlyPriceTRY: 4990,
			MonthlyPromptLimit: Unlimited, DailyPromptLimit: Unlimited, APICallsPerMonth: 150000, ModelTier: ModelTierPremium},
		PlanTier{ID: PlanDevStarter, Name: "Developer Starter", UserType: UserTypeDeveloper, MonthlyPriceTRY: 599,
			MonthlyPromptLimit: FeatureAbsent, DailyPromptLimit: FeatureAbsent, APICallsPerMonth: 10000, ModelTier: ModelTierAdvanced},
		PlanTier{ID: PlanDevPro, Name: "Developer Pro", UserType: UserTypeDeveloper, MonthlyPriceTRY: 1499,
			MonthlyPromptLimit: FeatureAbsent, DailyPromptLimit: FeatureAbsent, APICallsPerMonth: 50000, ModelTier: ModelTierPremium},
		PlanTier{ID: PlanEnterprise, Name: "Enterprise", UserType: UserTypeDeveloper, MonthlyPriceTRY: 5000,
			MonthlyPromptLimit: Unlimited, DailyPromptLimit: Unlimited, APICallsPerMonth: Unlimited, ModelTier: ModelTierCustom},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the tier for id. An unknown id is a configuration fault,
// never a user-facing error.
func (c *PlanCatalog) Lookup(id PlanID) (PlanTier, error) {
	t, ok := c.tiers[id]
	if !ok {
		return PlanTier{}, ConfigError("plan.lookup", fmt.Sprintf("unknown plan %q", id))
	}
	return t, nil
}

// MustLookup is Lookup for identifiers compiled into the binary.
func (c *PlanCatalog) MustLookup(id PlanID) PlanTier {
	t, err := c.Lookup(id)
	if err != nil {
		panic(err)
	}
	return t
}

// Has reports whether id is in the catalog.
func (c *PlanCatalog) Has(id PlanID) bool {
	_, ok := c.tiers[id]
	return ok
}

// Free returns the tier every lapsed account falls back to.
func (c *PlanCatalog) Free() PlanTier {
	return c.tiers[c.free]
}

// Top returns the tier granted to administrative-override accounts.
func (c *PlanCatalog) Top() PlanTier {
	return c.tiers[c.top]
}

// Plans returns all tiers in display order.
func (c *PlanCatalog) Plans() []PlanTier {
	out := make([]PlanTier, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tiers[id])
	}
	return out
}

// PlansFor returns the tiers offered to one user type, in display order.
func (c *PlanCatalog) PlansFor(ut UserType) []PlanTier {
	var out []PlanTier
	for _, id := range c.order {
		if t := c.tiers[id]; t.UserType == ut {
			out = append(out, t)
		}
	}
	return out
}

// IsAtLeast reports whether current ranks at or above required within the
// same user type. Plans of different user types never compare.
func (c *PlanCatalog) IsAtLeast(current, required PlanID) bool {
	cur, ok1 := c.tiers[current]
	req, ok2 := c.tiers[required]
	if !ok1 || !ok2 || cur.UserType != req.UserType {
		return false
	}
	return c.rank(current) >= c.rank(required)
}

func (c *PlanCatalog) rank(id PlanID) int {
	for i, o := range c.order {
		if o == id {
			return i
		}
	}
	return -1
}
