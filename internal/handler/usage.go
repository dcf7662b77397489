package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/DukeRupert/promptgate/internal/auth"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/service"
)

// maxHistoryMonths bounds the ?months= parameter.
const maxHistoryMonths = 24

// UsageHandler reports usage counters.
type UsageHandler struct {
	usage  service.UsageService
	now    func() time.Time
	logger *slog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usage service.UsageService, now func() time.Time, logger *slog.Logger) *UsageHandler {
	if now == nil {
		now = time.Now
	}
	return &UsageHandler{
		usage:  usage,
		now:    now,
		logger: logger,
	}
}

// RegisterRoutes registers usage routes on the provided mux.
func (h *UsageHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("GET /api/usage", requireAccount(http.HandlerFunc(h.Show)))
}

// UsageResponse is the GET /api/usage body.
type UsageResponse struct {
	Daily        WindowJSON   `json:"daily"`
	Monthly      WindowJSON   `json:"monthly"`
	QuotaWarning string       `json:"quotaWarning"`
	History      []MonthJSON  `json:"history"`
	Subscription SummaryJSON  `json:"subscription"`
	Decision     DecisionJSON `json:"decision"`
}

// WindowJSON is one usage window.
type WindowJSON struct {
	Start    time.Time `json:"start"`
	ResetsAt time.Time `json:"resetsAt"`
	Used     int64     `json:"used"`
	Limit    int64     `json:"limit"`
}

// MonthJSON is one month of history.
type MonthJSON struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

// Show handles GET /api/usage.
func (h *UsageHandler) Show(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	months := service.DefaultHistoryMonths
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryMonths {
			ErrorResponse(w, r, h.logger, domain.NewValidationError("usage.show", "months", "must be between 1 and 24"))
			return
		}
		months = n
	}

	report, err := h.usage.Report(r.Context(), accountID, h.now(), months)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	history := make([]MonthJSON, 0, len(report.History))
	for _, m := range report.History {
		history = append(history, MonthJSON{Month: m.PeriodStart.Format("2006-01"), Count: m.Count})
	}

	s := report.Summary
	writeJSON(w, http.StatusOK, UsageResponse{
		Daily: WindowJSON{
			Start:    report.DayStart,
			ResetsAt: report.DayStart.AddDate(0, 0, 1),
			Used:     s.DailyUsed,
			Limit:    int64(s.DailyLimit),
		},
		Monthly: WindowJSON{
			Start:    report.MonthStart,
			ResetsAt: report.MonthStart.AddDate(0, 1, 0),
			Used:     s.MonthlyUsed,
			Limit:    int64(s.MonthlyLimit),
		},
		QuotaWarning: string(s.QuotaWarning),
		History:      history,
		Subscription: NewSummaryJSON(s),
		Decision:     NewDecisionJSON(report.Decision),
	})
}
