package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/DukeRupert/promptgate/internal/auth"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/google/uuid"
)

const (
	defaultGenerationsLimit = 20
	maxGenerationsLimit     = 100
)

// GenerationLister reads past generations. *repository.Queries satisfies it.
type GenerationLister interface {
	ListGenerationsByAccount(ctx context.Context, arg repository.ListGenerationsByAccountParams) ([]repository.Generation, error)
}

// GenerationsHandler lists an account's generation history.
type GenerationsHandler struct {
	generations GenerationLister
	logger      *slog.Logger
}

// NewGenerationsHandler creates a new GenerationsHandler.
func NewGenerationsHandler(generations GenerationLister, logger *slog.Logger) *GenerationsHandler {
	return &GenerationsHandler{
		generations: generations,
		logger:      logger,
	}
}

// RegisterRoutes registers history routes on the provided mux.
func (h *GenerationsHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("GET /api/generations", requireAccount(http.HandlerFunc(h.List)))
}

// GenerationJSON is one history entry.
type GenerationJSON struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	UserRequest string          `json:"userRequest"`
	TargetModel string          `json:"targetModel"`
	ModelTier   string          `json:"modelTier"`
	Result      json.RawMessage `json:"result"`
	Degraded    bool            `json:"degraded"`
	Attempts    int32           `json:"attempts"`
	DurationMs  int64           `json:"durationMs"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// List handles GET /api/generations?limit=N, newest first.
func (h *GenerationsHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "GenerationsHandler.List"

	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	limit := defaultGenerationsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxGenerationsLimit {
			ErrorResponse(w, r, h.logger, domain.NewValidationError(op, "limit", "must be between 1 and 100"))
			return
		}
		limit = n
	}

	rows, err := h.generations.ListGenerationsByAccount(r.Context(), repository.ListGenerationsByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Unavailable(err, op, "failed to load generation history"))
		return
	}

	out := make([]GenerationJSON, 0, len(rows))
	for _, g := range rows {
		out = append(out, GenerationJSON{
			ID:          g.ID,
			Category:    g.Category,
			UserRequest: g.UserRequest,
			TargetModel: g.TargetModel,
			ModelTier:   g.ModelTier,
			Result:      g.ResultJson,
			Degraded:    g.Degraded,
			Attempts:    g.Attempts,
			DurationMs:  g.DurationMs,
			CreatedAt:   g.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"generations": out})
}
