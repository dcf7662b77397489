package service

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencedBlock matches the first markdown code fence, optionally tagged json.
var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Placeholder values used when a reply cannot be parsed.
const (
	fallbackShort    = "Error parsing AI response"
	fallbackCreative = "..."
)

// ExtractStructured pulls a JSON object out of a provider reply. It tries the
// whole text, then the first fenced block, then the span from the first '{'
// to the last '}'. If all three fail it returns a placeholder object holding
// the raw text and reports degraded. It never fails.
func ExtractStructured(text string) (map[string]any, bool) {
	if obj, ok := parseObject(text); ok {
		return obj, false
	}

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			return obj, false
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		if obj, ok := parseObject(text[first : last+1]); ok {
			return obj, false
		}
	}

	return map[string]any{
		KeyShort:    fallbackShort,
		KeyDetailed: text,
		KeyCreative: fallbackCreative,
	}, true
}

// parseObject accepts only a JSON object; arrays and scalars are rejected.
func parseObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
