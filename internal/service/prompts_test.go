package service

import (
	"strings"
	"testing"

	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_BasicTier(t *testing.T) {
	p := BuildPrompt("summarize my notes", "writing", domain.TargetClaude, domain.ModelTierBasic)

	assert.True(t, strings.HasPrefix(p, "You are a prompt engineer.\n"))
	assert.Contains(t, p, "User Request: summarize my notes")
	assert.Contains(t, p, "Category: writing")
	assert.Contains(t, p, "Target AI: claude")
	assert.Contains(t, p, "Optimization: Optimize for Anthropic Claude.")
	assert.Contains(t, p, `exactly these 3 keys: "short", "detailed", "creative"`)
	assert.NotContains(t, p, "professional")
	assert.NotContains(t, p, "ANALYSIS")
}

func TestBuildPrompt_AdvancedTiers(t *testing.T) {
	for _, tier := range []domain.ModelTier{domain.ModelTierAdvanced, domain.ModelTierPremium, domain.ModelTierCustom} {
		t.Run(string(tier), func(t *testing.T) {
			p := BuildPrompt("draw a fox", "art", domain.TargetMidjourney, tier)

			assert.Contains(t, p, "ANALYSIS:")
			assert.Contains(t, p, "GENERATION RULES:")
			assert.Contains(t, p, "Platform-Specific: Optimize for Midjourney.")
			assert.Contains(t, p, "Generate 5 variations")
			for _, k := range AdvancedKeys {
				assert.Contains(t, p, `"`+k+`"`)
			}
		})
	}
}

func TestBuildPrompt_UnknownTargetHasNoHint(t *testing.T) {
	p := BuildPrompt("x", "y", "bard", domain.ModelTierBasic)
	assert.NotContains(t, p, "Optimization:")
}

func TestTargetHint_AllModels(t *testing.T) {
	for _, m := range domain.TargetModels {
		assert.NotEmpty(t, TargetHint(m), m)
	}
}

func TestKeysForTier(t *testing.T) {
	assert.Equal(t, BasicKeys, KeysForTier(domain.ModelTierBasic))
	assert.Equal(t, AdvancedKeys, KeysForTier(domain.ModelTierPremium))
}
