package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/promptgate/internal/auth"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/service"
)

// SubscriptionHandler reports and changes an account's plan selection.
type SubscriptionHandler struct {
	admission     service.AdmissionController
	subscriptions service.SubscriptionService
	now           func() time.Time
	logger        *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
// subscriptions may be nil, in which case POST returns 501.
func NewSubscriptionHandler(admission service.AdmissionController, subscriptions service.SubscriptionService, now func() time.Time, logger *slog.Logger) *SubscriptionHandler {
	if now == nil {
		now = time.Now
	}
	return &SubscriptionHandler{
		admission:     admission,
		subscriptions: subscriptions,
		now:           now,
		logger:        logger,
	}
}

// RegisterRoutes registers subscription routes on the provided mux.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("GET /api/subscription", requireAccount(http.HandlerFunc(h.Show)))
	mux.Handle("POST /api/subscription", requireAccount(http.HandlerFunc(h.Change)))
}

// SubscriptionResponse is the GET /api/subscription body.
type SubscriptionResponse struct {
	Subscription SummaryJSON  `json:"subscription"`
	Decision     DecisionJSON `json:"decision"`
}

// ChangeSubscriptionRequest is the POST /api/subscription body.
type ChangeSubscriptionRequest struct {
	Action       string `json:"action"`
	PlanType     string `json:"planType"`
	BillingCycle string `json:"billingCycle,omitempty"`
}

// Show handles GET /api/subscription.
func (h *SubscriptionHandler) Show(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	decision, ent, err := h.admission.Evaluate(r.Context(), accountID, h.now())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, SubscriptionResponse{
		Subscription: NewSummaryJSON(domain.Summarize(ent, *decision)),
		Decision:     NewDecisionJSON(*decision),
	})
}

// Change handles POST /api/subscription and responds with the entitlement
// as it stands after the change.
func (h *SubscriptionHandler) Change(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	if h.subscriptions == nil {
		ErrorResponse(w, r, h.logger, domain.Errorf(domain.ENOTIMPL, "", "Plan changes are not enabled"))
		return
	}

	var req ChangeSubscriptionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("", "Request body must be a JSON object"))
		return
	}

	action := domain.SubscriptionAction(req.Action)
	if action == "" {
		action = domain.SubscriptionActionCreate
	}

	now := h.now()
	if _, err := h.subscriptions.Apply(r.Context(), domain.SubscriptionChangeParams{
		AccountID:    accountID,
		Action:       action,
		PlanID:       domain.PlanID(req.PlanType),
		BillingCycle: domain.BillingCycle(req.BillingCycle),
	}, now); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	decision, ent, err := h.admission.Evaluate(r.Context(), accountID, now)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, SubscriptionResponse{
		Subscription: NewSummaryJSON(domain.Summarize(ent, *decision)),
		Decision:     NewDecisionJSON(*decision),
	})
}
