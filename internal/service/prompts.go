package service

import (
	"fmt"
	"strings"

	"github.com/DukeRupert/promptgate/internal/domain"
)

// Output keys requested from the provider.
const (
	KeyShort        = "short"
	KeyDetailed     = "detailed"
	KeyCreative     = "creative"
	KeyProfessional = "professional"
	KeyTechnical    = "technical"
)

// BasicKeys are the variants requested on the basic model tier.
var BasicKeys = []string{KeyShort, KeyDetailed, KeyCreative}

// AdvancedKeys are the variants requested on every other tier.
var AdvancedKeys = []string{KeyShort, KeyDetailed, KeyCreative, KeyProfessional, KeyTechnical}

// targetHints tune the generated prompt for the downstream assistant.
var targetHints = map[domain.TargetModel]string{
	domain.TargetChatGPT:         "Optimize for OpenAI ChatGPT. Use system/user message structure. Leverage GPT-4 capabilities.",
	domain.TargetGemini:          "Optimize for Google Gemini. Use natural conversational tone. Leverage multimodal understanding.",
	domain.TargetClaude:          "Optimize for Anthropic Claude. Use XML tags for structure. Leverage long-context analysis.",
	domain.TargetCopilot:         "Optimize for Microsoft Copilot. Focus on productivity tasks and web-grounded responses.",
	domain.TargetPerplexity:      "Optimize for Perplexity AI. Focus on research-oriented queries with source citations.",
	domain.TargetMidjourney:      "Optimize for Midjourney. Use descriptive visual language, artistic styles. Include --ar, --v, --style parameters.",
	domain.TargetDALLE:           "Optimize for DALL-E. Use clear, descriptive visual prompts. Specify art style, composition, lighting.",
	domain.TargetStableDiffusion: "Optimize for Stable Diffusion. Use weighted tokens (parentheses:weight), negative prompts.",
	domain.TargetLlama:           "Optimize for Meta Llama. Use clear instruction format. Leverage coding and multilingual strengths.",
	domain.TargetMistral:         "Optimize for Mistral AI. Use efficient, structured prompts. Leverage European language and code strengths.",
}

// variantDescriptions describe each advanced variant to the provider.
var variantDescriptions = map[string]string{
	KeyShort:        "Concise, direct, maximum efficiency",
	KeyDetailed:     "Comprehensive with full context",
	KeyCreative:     "Unconventional angle, surprising approach",
	KeyProfessional: "Enterprise-ready, formal tone",
	KeyTechnical:    "Precise, structured with clear specifications",
}

// TargetHint returns the optimisation hint for t, or "" if none exists.
func TargetHint(t domain.TargetModel) string {
	return targetHints[t]
}

// KeysForTier returns the output keys requested for a model tier.
func KeysForTier(tier domain.ModelTier) []string {
	if tier == domain.ModelTierBasic {
		return BasicKeys
	}
	return AdvancedKeys
}

// BuildPrompt renders the provider prompt for one request. The basic tier
// asks for three variants; every other tier adds an analysis section and
// asks for five.
func BuildPrompt(userRequest, category string, target domain.TargetModel, tier domain.ModelTier) string {
	if tier == domain.ModelTierBasic {
		return buildBasicPrompt(userRequest, category, target)
	}
	return buildAdvancedPrompt(userRequest, category, target)
}

func buildBasicPrompt(userRequest, category string, target domain.TargetModel) string {
	var b strings.Builder
	b.WriteString("You are a prompt engineer.\n\n")
	writeRequestBlock(&b, userRequest, category, target)
	if hint := TargetHint(target); hint != "" {
		fmt.Fprintf(&b, "\nOptimization: %s\n", hint)
	}
	fmt.Fprintf(&b, "\nReturn a VALID JSON object with exactly these %d keys: %s.\n", len(BasicKeys), quoteKeys(BasicKeys))
	b.WriteString("Each value should be the optimized prompt string.\n")
	b.WriteString("Do not include markdown code block markers. Return only the raw JSON.")
	return b.String()
}

func buildAdvancedPrompt(userRequest, category string, target domain.TargetModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a world-class prompt engineer with deep expertise in AI optimization and %s specifically.\n\n", target)

	b.WriteString("ANALYSIS: Before generating, analyze the user's request for:\n")
	b.WriteString("- Core intent and desired outcome\n")
	b.WriteString("- Target audience\n")
	b.WriteString("- Key constraints and requirements\n")
	fmt.Fprintf(&b, "- Optimal prompt structure for %s\n\n", target)

	writeRequestBlock(&b, userRequest, category, target)
	if hint := TargetHint(target); hint != "" {
		fmt.Fprintf(&b, "\nPlatform-Specific: %s\n", hint)
	}

	b.WriteString("\nGENERATION RULES:\n")
	b.WriteString("- Each prompt must include: clear role, specific context, constraints, output format\n")
	b.WriteString("- Use chain-of-thought reasoning where appropriate\n")
	b.WriteString("- Include few-shot examples for complex tasks\n")
	b.WriteString("- Apply proven prompt engineering techniques\n")
	fmt.Fprintf(&b, "- Optimize specifically for %s\n\n", target)

	fmt.Fprintf(&b, "Generate %d variations as a JSON object with these exact keys:\n", len(AdvancedKeys))
	for i, k := range AdvancedKeys {
		fmt.Fprintf(&b, "%d. %q - %s\n", i+1, k, variantDescriptions[k])
	}
	b.WriteString("\nReturn a VALID JSON object. Do not include markdown code block markers. Return only the raw JSON.")
	return b.String()
}

func writeRequestBlock(b *strings.Builder, userRequest, category string, target domain.TargetModel) {
	fmt.Fprintf(b, "User Request: %s\n", userRequest)
	fmt.Fprintf(b, "Category: %s\n", category)
	fmt.Fprintf(b, "Target AI: %s\n", target)
}

func quoteKeys(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return strings.Join(quoted, ", ")
}
