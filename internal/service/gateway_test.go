package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DukeRupert/promptgate/internal/ai"
	"github.com/DukeRupert/promptgate/internal/ai/mock"
	"github.com/DukeRupert/promptgate/internal/archive"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerations collects audit rows.
type fakeGenerations struct {
	rows   []repository.CreateGenerationParams
	err    error
	ctxErr error
}

func (f *fakeGenerations) CreateGeneration(ctx context.Context, arg repository.CreateGenerationParams) error {
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, arg)
	return nil
}

type gatewayFixture struct {
	accountID   uuid.UUID
	store       *fakeAccountStore
	ledger      *countingLedger
	provider    *mock.Provider
	generations *fakeGenerations
	archive     archive.Archive
	gateway     Gateway
}

func newGatewayFixture(t *testing.T, sub func(uuid.UUID) *domain.SubscriptionRecord, replies ...mock.Reply) *gatewayFixture {
	t.Helper()
	f := &gatewayFixture{
		accountID:   uuid.New(),
		ledger:      newCountingLedger(),
		provider:    mock.New(testLogger(), replies...),
		generations: &fakeGenerations{},
	}
	f.store = &fakeAccountStore{sub: sub(f.accountID)}

	arc, err := archive.NewLocal(t.TempDir(), testLogger())
	require.NoError(t, err)
	f.archive = arc

	f.gateway = NewGateway(GatewayDeps{
		Admission:    newTestAdmission(f.store, f.ledger),
		Orchestrator: newTestOrchestrator(f.provider, &recordedSleeps{}),
		Ledger:       f.ledger,
		Generations:  f.generations,
		Archive:      f.archive,
		Now:          fixedClock,
	}, testLogger())
	return f
}

// cancelAfterRun cancels the request context once the generation finishes,
// as when the client disconnects while the response is being prepared.
type cancelAfterRun struct {
	Orchestrator
	cancel context.CancelFunc
}

func (o cancelAfterRun) Run(ctx context.Context, req GenerationRequest) (*domain.GenerationResult, error) {
	res, err := o.Orchestrator.Run(ctx, req)
	o.cancel()
	return res, err
}

func (f *gatewayFixture) params() domain.GenerateParams {
	return domain.GenerateParams{
		AccountID: f.accountID,
		Prompt:    "  plan a trip to Izmir ",
		Category:  "travel",
	}
}

func freeSub(id uuid.UUID) *domain.SubscriptionRecord { return activeSub(id, domain.PlanFree) }
func proSub(id uuid.UUID) *domain.SubscriptionRecord  { return activeSub(id, domain.PlanPro) }

func TestGateway_AllowedGeneratesAndCounts(t *testing.T) {
	f := newGatewayFixture(t, proSub, mock.Reply{Text: validReply})

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.NoError(t, err)
	assert.True(t, out.Allowed)
	require.NotNil(t, out.Result)
	assert.Equal(t, "s", out.Result.Output[KeyShort])
	assert.NotEqual(t, uuid.Nil, out.GenerationID)

	assert.Equal(t, 1, f.ledger.increments)
	assert.Equal(t, int64(1), out.Summary.MonthlyUsed)
	assert.Equal(t, int64(1), out.Summary.DailyUsed)
	assert.Equal(t, domain.PlanPro, out.Summary.Plan)
	assert.True(t, out.Summary.CanGenerate)

	require.Len(t, f.generations.rows, 1)
	row := f.generations.rows[0]
	assert.Equal(t, out.GenerationID, row.ID)
	assert.Equal(t, "plan a trip to Izmir", row.UserRequest)
	assert.Equal(t, string(domain.DefaultTargetModel), row.TargetModel)
	assert.Equal(t, string(domain.ModelTierAdvanced), row.ModelTier)
	assert.False(t, row.ArchiveKey.Valid)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(row.ResultJson, &stored))
	assert.Equal(t, "s", stored[KeyShort])

	// Advanced tier prompt went upstream.
	assert.Contains(t, f.provider.Prompts()[0], "Generate 5 variations")
}

func TestGateway_DeniedNeverCallsProvider(t *testing.T) {
	f := newGatewayFixture(t, freeSub)
	f.ledger.seed(f.accountID, 2)

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.NoError(t, err)
	assert.False(t, out.Allowed)
	assert.Equal(t, domain.DenyDailyLimit, out.DenyCode)
	assert.Contains(t, out.Reason, "daily prompt limit reached (2/2)")
	assert.Nil(t, out.Result)
	assert.False(t, out.Summary.CanGenerate)

	assert.Equal(t, 0, f.provider.Calls())
	assert.Equal(t, 0, f.ledger.increments)
	assert.Empty(t, f.generations.rows)
}

func TestGateway_UpstreamFailureDoesNotCount(t *testing.T) {
	f := newGatewayFixture(t, proSub, mock.Reply{Err: ai.EAIUnavailable})

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, domain.EUPSTREAM, domain.ErrorCode(err))
	assert.Equal(t, 3, f.provider.Calls())
	assert.Equal(t, 0, f.ledger.increments)
	assert.Empty(t, f.generations.rows)
}

func TestGateway_RetryThenSuccessCountsOnce(t *testing.T) {
	f := newGatewayFixture(t, proSub,
		mock.Reply{Err: ai.EAITimeout},
		mock.Reply{Text: ""},
		mock.Reply{Text: validReply},
	)

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Result.Attempts)
	assert.Equal(t, 1, f.ledger.increments)
}

func TestGateway_DegradedIsArchivedAndCounted(t *testing.T) {
	raw := "I could not produce JSON this time."
	f := newGatewayFixture(t, proSub, mock.Reply{Text: raw})

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.NoError(t, err)
	assert.True(t, out.Result.Degraded)
	assert.Equal(t, 1, f.ledger.increments)

	require.Len(t, f.generations.rows, 1)
	row := f.generations.rows[0]
	require.True(t, row.ArchiveKey.Valid)
	assert.Equal(t, archive.RawOutputKey(f.accountID, out.GenerationID, testNow), row.ArchiveKey.String)

	got, err := f.archive.Get(context.Background(), row.ArchiveKey.String)
	require.NoError(t, err)
	assert.Equal(t, raw, string(got))
}

func TestGateway_AuditFailureIsNotFatal(t *testing.T) {
	f := newGatewayFixture(t, proSub, mock.Reply{Text: validReply})
	f.generations.err = errors.New("disk full")

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.NoError(t, err)
	assert.True(t, out.Allowed)
	assert.Equal(t, 1, f.ledger.increments)
}

func TestGateway_IncrementFailure(t *testing.T) {
	f := newGatewayFixture(t, proSub, mock.Reply{Text: validReply})
	f.ledger.incrementErr = errStoreDown

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
	assert.Empty(t, f.generations.rows)
}

func TestGateway_LastAllowedRequestReportsExceeded(t *testing.T) {
	f := newGatewayFixture(t, freeSub, mock.Reply{Text: validReply})
	// Four prompts yesterday; the fifth today uses up the month.
	for i := 0; i < 4; i++ {
		f.ledger.UsageLedger.Increment(context.Background(), f.accountID, testNow.AddDate(0, 0, -1))
	}

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.NoError(t, err)
	assert.True(t, out.Allowed)
	assert.Equal(t, domain.QuotaWarningExceeded, out.QuotaWarning)
	assert.Equal(t, int64(5), out.Summary.MonthlyUsed)
	assert.Equal(t, 100, out.Summary.MonthlyUsagePercent)
	assert.False(t, out.Summary.CanGenerate)
	assert.Equal(t, string(domain.ModelTierBasic), f.generations.rows[0].ModelTier)
}

func TestGateway_InvalidParams(t *testing.T) {
	f := newGatewayFixture(t, proSub)

	p := f.params()
	p.Prompt = "   "
	_, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), p)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "userRequest")
	assert.Equal(t, 0, f.provider.Calls())
}

func TestGateway_AdminIsCountedButUnlimited(t *testing.T) {
	f := newGatewayFixture(t, freeSub, mock.Reply{Text: validReply})
	f.store.profile = &domain.AccountProfile{AccountID: f.accountID, IsAdmin: true}
	f.ledger.seed(f.accountID, 100)

	out, err := f.gateway.EvaluateAndMaybeGenerate(context.Background(), f.params())
	require.NoError(t, err)
	assert.True(t, out.Allowed)
	assert.True(t, out.Summary.IsAdmin)
	assert.Equal(t, domain.QuotaWarningNone, out.QuotaWarning)
	assert.Equal(t, 1, f.ledger.increments)
	assert.Equal(t, 0, f.ledger.reads)
}

func TestGateway_ClientGoneAfterGenerationStillCounts(t *testing.T) {
	f := newGatewayFixture(t, proSub, mock.Reply{Text: validReply})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := NewGateway(GatewayDeps{
		Admission:    newTestAdmission(f.store, f.ledger),
		Orchestrator: cancelAfterRun{Orchestrator: newTestOrchestrator(f.provider, &recordedSleeps{}), cancel: cancel},
		Ledger:       f.ledger,
		Generations:  f.generations,
		Archive:      f.archive,
		Now:          fixedClock,
	}, testLogger())

	out, err := gw.EvaluateAndMaybeGenerate(ctx, f.params())
	require.NoError(t, err)
	assert.True(t, out.Allowed)
	require.Error(t, ctx.Err())

	assert.Equal(t, 1, f.ledger.increments)
	assert.NoError(t, f.ledger.incrementCtx)
	require.Len(t, f.generations.rows, 1)
	assert.NoError(t, f.generations.ctxErr)
}
