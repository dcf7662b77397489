package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/promptgate/internal/archive"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlansCommand(t *testing.T) {
	out, err := execute(t, "plans")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+len(domain.DefaultPlanCatalog().Plans()))
	assert.True(t, strings.HasPrefix(lines[0], "PLAN"))

	assert.Regexp(t, `^free\s+Free\s+Normal\s+5\s+2\s+none\s+Basic\s+0$`, lines[1])
	assert.Regexp(t, `^pro\s+Pro\s+Normal\s+200\s+unlimited\s+3000\s+Advanced\s+299$`, findLine(lines, "pro"))
	assert.Regexp(t, `Developer Starter\s+Developer\s+none\s+none\s+10000`, findLine(lines, "dev_starter"))
}

// findLine returns the row for plan id.
func findLine(lines []string, id string) string {
	for _, l := range lines {
		if strings.HasPrefix(l, id+" ") {
			return l
		}
	}
	return ""
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"check needs an id", []string{"check"}, "accepts 1 arg"},
		{"check rejects bad id", []string{"check", "nope"}, "invalid account id"},
		{"usage rejects bad id", []string{"usage", "nope"}, "invalid account id"},
		{"usage months range", []string{"usage", uuid.NewString(), "--months", "30"}, "--months"},
		{"subscribe rejects bad id", []string{"subscribe", "nope", "--plan", "pro"}, "invalid account id"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteUsage(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	report := &service.UsageReport{
		Summary: domain.EntitlementSummary{
			PlanName:     "Starter",
			Status:       domain.SubscriptionStatusActive,
			DailyUsed:    5,
			DailyLimit:   5,
			MonthlyUsed:  41,
			MonthlyLimit: 50,
			QuotaWarning: domain.QuotaWarning80,
		},
		Decision:   domain.AdmissionDecision{Reason: "daily prompt limit reached (5/5)"},
		DayStart:   domain.DayWindow(now),
		MonthStart: domain.MonthWindow(now),
		History: []domain.MonthlyUsage{
			{PeriodStart: domain.MonthWindow(now), Count: 41},
			{PeriodStart: domain.MonthWindow(now).AddDate(0, -1, 0), Count: 0},
		},
	}

	var out bytes.Buffer
	require.NoError(t, writeUsage(&out, report))

	s := out.String()
	assert.Contains(t, s, "Plan:     Starter (active)")
	assert.Contains(t, s, "Today:    5 / 5 (resets 2026-03-16T00:00:00Z)")
	assert.Contains(t, s, "Month:    41 / 50 (resets 2026-04-01T00:00:00Z)")
	assert.Contains(t, s, "Warning:  warning_80")
	assert.Contains(t, s, "Admitted: no (daily prompt limit reached (5/5))")
	assert.Regexp(t, `2026-03\s+41`, s)
	assert.Regexp(t, `2026-02\s+0`, s)
}

func TestRawCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "postgres://localhost/unused")
	t.Setenv("ARCHIVE_PROVIDER", "local")
	t.Setenv("LOCAL_ARCHIVE_PATH", dir)
	t.Setenv("AI_PROVIDER", "mock")
	t.Setenv("LEDGER_BACKEND", "memory")

	local, err := archive.NewLocal(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	key := archive.RawOutputKey(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, local.Put(context.Background(), key, []byte("not json at all"), archive.ContentTypeText))

	out, err := execute(t, "raw", key)
	require.NoError(t, err)
	assert.Equal(t, "not json at all", out)

	_, err = execute(t, "raw", "generations/missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no archived output")
}
