package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/DukeRupert/promptgate/internal/archive"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/metrics"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/google/uuid"
)

// GenerationStore records completed generations. *repository.Queries
// satisfies it.
type GenerationStore interface {
	CreateGeneration(ctx context.Context, arg repository.CreateGenerationParams) error
}

// Gateway is the single request entry point: admit, generate, count.
type Gateway interface {
	EvaluateAndMaybeGenerate(ctx context.Context, params domain.GenerateParams) (*domain.GenerateOutcome, error)
}

// GatewayDeps bundles the collaborators of a Gateway. Generations and
// Archive are optional.
type GatewayDeps struct {
	Admission    AdmissionController
	Orchestrator Orchestrator
	Ledger       domain.UsageLedger
	Generations  GenerationStore
	Archive      archive.Archive
	Now          func() time.Time
}

// gateway implements Gateway.
type gateway struct {
	admission    AdmissionController
	orchestrator Orchestrator
	ledger       domain.UsageLedger
	generations  GenerationStore
	archive      archive.Archive
	now          func() time.Time
	logger       *slog.Logger
}

// NewGateway creates a new Gateway.
func NewGateway(deps GatewayDeps, logger *slog.Logger) Gateway {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &gateway{
		admission:    deps.Admission,
		orchestrator: deps.Orchestrator,
		ledger:       deps.Ledger,
		generations:  deps.Generations,
		archive:      deps.Archive,
		now:          now,
		logger:       logger,
	}
}

// EvaluateAndMaybeGenerate admits the request, runs the generation, and
// counts it. Usage is incremented only after a successful generation and
// before returning. Denials come back as an outcome with Allowed false.
func (g *gateway) EvaluateAndMaybeGenerate(ctx context.Context, params domain.GenerateParams) (*domain.GenerateOutcome, error) {
	const op = "Gateway.EvaluateAndMaybeGenerate"

	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	decision, ent, err := g.admission.Evaluate(ctx, params.AccountID, g.now())
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &domain.GenerateOutcome{
			Allowed:      false,
			Reason:       decision.Reason,
			DenyCode:     decision.DenyCode,
			QuotaWarning: decision.QuotaWarning,
			Summary:      domain.Summarize(ent, *decision),
		}, nil
	}

	result, err := g.orchestrator.Run(ctx, GenerationRequest{
		Prompt:      params.Prompt,
		Category:    params.Category,
		TargetModel: params.TargetModel,
		ModelTier:   ent.Plan.ModelTier,
	})
	if err != nil {
		return nil, err
	}

	// The generation already happened; a client going away must not drop
	// its usage or audit row.
	persistCtx := context.WithoutCancel(ctx)

	now := g.now()
	usage, err := g.ledger.Increment(persistCtx, params.AccountID, now)
	if err != nil {
		metrics.StoreFailed("usage_ledger")
		g.logger.Error("failed to record usage after generation",
			"error", err, "op", op, "account_id", params.AccountID)
		return nil, err
	}
	metrics.UsageIncrementsTotal.Inc()

	ent.Usage = usage
	after := domain.Decide(ent, now)

	generationID := uuid.New()
	g.record(persistCtx, generationID, params, ent.Plan.ModelTier, result, now)

	g.logger.Info("generation completed",
		"account_id", params.AccountID,
		"generation_id", generationID,
		"plan", ent.Plan.ID,
		"attempts", result.Attempts,
		"degraded", result.Degraded,
		"monthly_used", usage.Monthly,
	)

	return &domain.GenerateOutcome{
		Allowed:      true,
		QuotaWarning: after.QuotaWarning,
		Result:       result,
		GenerationID: generationID,
		Summary:      domain.Summarize(ent, after),
	}, nil
}

// record writes the audit row and archives degraded raw text. Failures are
// logged and never fail the request; usage has already been counted.
func (g *gateway) record(ctx context.Context, id uuid.UUID, params domain.GenerateParams, tier domain.ModelTier, result *domain.GenerationResult, now time.Time) {
	const op = "Gateway.record"

	var archiveKey string
	if result.Degraded && g.archive != nil {
		key := archive.RawOutputKey(params.AccountID, id, now)
		if err := g.archive.Put(ctx, key, []byte(result.Raw), archive.ContentTypeText); err != nil {
			metrics.StoreFailed("archive")
			g.logger.Warn("failed to archive raw reply", "error", err, "op", op, "key", key)
		} else {
			archiveKey = key
		}
	}

	if g.generations == nil {
		return
	}

	output, err := json.Marshal(result.Output)
	if err != nil {
		g.logger.Warn("failed to encode generation output", "error", err, "op", op)
		return
	}

	err = g.generations.CreateGeneration(ctx, repository.CreateGenerationParams{
		ID:          id,
		AccountID:   params.AccountID,
		Category:    params.Category,
		UserRequest: params.Prompt,
		TargetModel: string(params.TargetModel),
		ModelTier:   string(tier),
		ResultJson:  output,
		Degraded:    result.Degraded,
		Attempts:    int32(result.Attempts),
		DurationMs:  result.Duration.Milliseconds(),
		ArchiveKey:  domain.ToNullString(archiveKey),
	})
	if err != nil {
		metrics.StoreFailed("generations")
		g.logger.Warn("failed to record generation", "error", err, "op", op, "generation_id", id)
	}
}
