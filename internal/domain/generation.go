// Package domain contains core business types and interfaces.
//
// This file defines the request and result types that flow through the
// generation gateway.
package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TargetModel is the downstream assistant the generated prompt is tuned for.
type TargetModel string

const (
	TargetChatGPT         TargetModel = "chatgpt"
	TargetGemini          TargetModel = "gemini"
	TargetClaude          TargetModel = "claude"
	TargetCopilot         TargetModel = "copilot"
	TargetPerplexity      TargetModel = "perplexity"
	TargetMidjourney      TargetModel = "midjourney"
	TargetDALLE           TargetModel = "dalle"
	TargetStableDiffusion TargetModel = "stable_diffusion"
	TargetLlama           TargetModel = "llama"
	TargetMistral         TargetModel = "mistral"
)

// DefaultTargetModel is used when the caller gives no hint.
const DefaultTargetModel = TargetChatGPT

// TargetModels lists every accepted target model.
var TargetModels = []TargetModel{
	TargetChatGPT, TargetGemini, TargetClaude, TargetCopilot, TargetPerplexity,
	TargetMidjourney, TargetDALLE, TargetStableDiffusion, TargetLlama, TargetMistral,
}

// Valid reports whether t is an accepted target model.
func (t TargetModel) Valid() bool {
	for _, m := range TargetModels {
		if m == t {
			return true
		}
	}
	return false
}

// Request field bounds.
const (
	MaxPromptLength   = 2000
	MaxCategoryLength = 100
)

// GenerateParams is the validated request handed to the gateway.
type GenerateParams struct {
	AccountID   uuid.UUID
	Prompt      string
	Category    string
	TargetModel TargetModel
}

// Normalize trims the free-text fields and applies the default target model.
func (p *GenerateParams) Normalize() {
	p.Prompt = strings.TrimSpace(p.Prompt)
	p.Category = strings.TrimSpace(p.Category)
	if p.TargetModel == "" {
		p.TargetModel = DefaultTargetModel
	}
}

// Validate checks field bounds. Lengths count characters, not bytes.
func (p GenerateParams) Validate() error {
	const op = "generate.validate"

	var verr *ValidationError
	add := func(field, msg string) {
		if verr == nil {
			verr = NewValidationError(op, field, msg)
			return
		}
		verr.Fields[field] = msg
	}

	if n := utf8.RuneCountInString(p.Prompt); n == 0 {
		add("userRequest", "is required")
	} else if n > MaxPromptLength {
		add("userRequest", fmt.Sprintf("must be at most %d characters", MaxPromptLength))
	}
	if n := utf8.RuneCountInString(p.Category); n == 0 {
		add("category", "is required")
	} else if n > MaxCategoryLength {
		add("category", fmt.Sprintf("must be at most %d characters", MaxCategoryLength))
	}
	if p.TargetModel != "" && !p.TargetModel.Valid() {
		add("targetModel", "is not a supported model")
	}

	if verr != nil {
		return verr
	}
	return nil
}

// GenerationResult is the structured output of one orchestrated generation.
type GenerationResult struct {
	Output   map[string]any
	Raw      string
	Degraded bool
	Attempts int
	Duration time.Duration
}

// GenerateOutcome is what the gateway returns to the request layer.
type GenerateOutcome struct {
	Allowed      bool
	Reason       string
	DenyCode     DenyCode
	QuotaWarning QuotaWarning
	Result       *GenerationResult
	GenerationID uuid.UUID
	Summary      EntitlementSummary
}

// EntitlementSummary is the caller-facing view of an entitlement and the
// decision made against it.
type EntitlementSummary struct {
	Plan                PlanID
	PlanName            string
	Status              SubscriptionStatus
	ModelTier           ModelTier
	TrialActive         bool
	TrialDaysRemaining  int
	SubscriptionEnd     *time.Time
	BillingCycle        BillingCycle
	CancelAtPeriodEnd   bool
	IsAdmin             bool
	MonthlyUsed         int64
	MonthlyLimit        Limit
	DailyUsed           int64
	DailyLimit          Limit
	APICallsLimit       Limit
	MonthlyUsagePercent int
	QuotaWarning        QuotaWarning
	CanGenerate         bool
}

// Summarize builds the caller-facing summary.
func Summarize(ent *Entitlement, d AdmissionDecision) EntitlementSummary {
	return EntitlementSummary{
		Plan:                ent.Plan.ID,
		PlanName:            ent.Plan.Name,
		Status:              ent.Status,
		ModelTier:           ent.Plan.ModelTier,
		TrialActive:         ent.TrialActive,
		TrialDaysRemaining:  ent.TrialDaysRemaining,
		SubscriptionEnd:     ent.SubscriptionEnd,
		BillingCycle:        ent.BillingCycle,
		CancelAtPeriodEnd:   ent.CancelAtPeriodEnd,
		IsAdmin:             ent.IsAdmin,
		MonthlyUsed:         ent.Usage.Monthly,
		MonthlyLimit:        ent.Plan.MonthlyPromptLimit,
		DailyUsed:           ent.Usage.Daily,
		DailyLimit:          ent.Plan.DailyPromptLimit,
		APICallsLimit:       ent.Plan.APICallsPerMonth,
		MonthlyUsagePercent: d.MonthlyUsagePercent,
		QuotaWarning:        d.QuotaWarning,
		CanGenerate:         d.Allowed,
	}
}
