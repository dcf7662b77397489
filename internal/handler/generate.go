package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/promptgate/internal/auth"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/service"
	"github.com/google/uuid"
)

// maxGenerateBody bounds the request body; the prompt itself is capped far lower.
const maxGenerateBody = 64 << 10

// GenerateHandler serves prompt generation.
type GenerateHandler struct {
	gateway service.Gateway
	logger  *slog.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(gateway service.Gateway, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// RegisterRoutes registers generation routes on the provided mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("POST /api/generate", requireAccount(http.HandlerFunc(h.Generate)))
}

// GenerateRequest is the POST /api/generate body.
type GenerateRequest struct {
	UserRequest string `json:"userRequest"`
	Category    string `json:"category"`
	TargetModel string `json:"targetModel,omitempty"`
}

// GenerateResponse is returned when a generation completes.
type GenerateResponse struct {
	Success      bool           `json:"success"`
	GenerationID uuid.UUID      `json:"generationId"`
	Result       map[string]any `json:"result"`
	Degraded     bool           `json:"degraded"`
	Attempts     int            `json:"attempts"`
	QuotaWarning string         `json:"quotaWarning"`
	Subscription SummaryJSON    `json:"subscription"`
}

// DeniedResponse is returned with 403 when admission refuses the request.
type DeniedResponse struct {
	Error        string      `json:"error"`
	DenyCode     string      `json:"denyCode"`
	QuotaWarning string      `json:"quotaWarning"`
	Subscription SummaryJSON `json:"subscription"`
}

// Generate handles POST /api/generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBody))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(w, r, h.logger, domain.Errorf(domain.ETOOLARGE, "", "Request body too large"))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Invalid("", "Request body must be a JSON object"))
		return
	}

	out, err := h.gateway.EvaluateAndMaybeGenerate(r.Context(), domain.GenerateParams{
		AccountID:   accountID,
		Prompt:      req.UserRequest,
		Category:    req.Category,
		TargetModel: domain.TargetModel(req.TargetModel),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if !out.Allowed {
		writeJSON(w, http.StatusForbidden, DeniedResponse{
			Error:        out.Reason,
			DenyCode:     string(out.DenyCode),
			QuotaWarning: string(out.QuotaWarning),
			Subscription: NewSummaryJSON(out.Summary),
		})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:      true,
		GenerationID: out.GenerationID,
		Result:       out.Result.Output,
		Degraded:     out.Result.Degraded,
		Attempts:     out.Result.Attempts,
		QuotaWarning: string(out.QuotaWarning),
		Subscription: NewSummaryJSON(out.Summary),
	})
}
