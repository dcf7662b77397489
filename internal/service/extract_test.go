package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStructured(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		degraded bool
		short    string
	}{
		{"bare object", `{"short":"a","detailed":"b","creative":"c"}`, false, "a"},
		{"surrounding whitespace", "\n  {\"short\":\"a\"}  \n", false, "a"},
		{"json fence", "Here you go:\n```json\n{\"short\":\"fenced\"}\n```\nEnjoy", false, "fenced"},
		{"untagged fence", "```\n{\"short\":\"plain\"}\n```", false, "plain"},
		{"braces in prose", `Sure! {"short":"inner","detailed":"d"} Hope this helps.`, false, "inner"},
		{"broken fence spans braces", "```json\n{\"short\": oops}\n``` then {\"short\":\"later\"}", true, "Error parsing AI response"},
		{"no json", "I cannot help with that.", true, "Error parsing AI response"},
		{"array is not an object", `["short","detailed"]`, true, "Error parsing AI response"},
		{"truncated", `{"short":"a","detailed":`, true, "Error parsing AI response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, degraded := ExtractStructured(tt.text)
			require.NotNil(t, out)
			assert.Equal(t, tt.degraded, degraded)
			assert.Equal(t, tt.short, out[KeyShort])
			if degraded {
				assert.Equal(t, tt.text, out[KeyDetailed])
				assert.Equal(t, "...", out[KeyCreative])
			}
		})
	}
}

func TestExtractStructured_RoundTrip(t *testing.T) {
	want := map[string]any{
		KeyShort:        "s",
		KeyDetailed:     "d",
		KeyCreative:     "c",
		KeyProfessional: "p",
		KeyTechnical:    "t",
	}
	b, err := json.Marshal(want)
	require.NoError(t, err)

	for name, wrap := range map[string]func(string) string{
		"bare":   func(s string) string { return s },
		"fenced": func(s string) string { return "```json\n" + s + "\n```" },
		"prose":  func(s string) string { return "Result: " + s + " -- end" },
	} {
		t.Run(name, func(t *testing.T) {
			got, degraded := ExtractStructured(wrap(string(b)))
			assert.False(t, degraded)
			assert.Equal(t, want, got)
		})
	}
}
