package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DukeRupert/promptgate/internal/ai"
	"github.com/DukeRupert/promptgate/internal/ai/mock"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{"short":"s","detailed":"d","creative":"c"}`

func newTestOrchestrator(p ai.Provider, sleeps *recordedSleeps) Orchestrator {
	return NewOrchestrator(p, OrchestratorConfig{Sleep: sleeps.sleep}, testLogger())
}

func basicRequest() GenerationRequest {
	return GenerationRequest{
		Prompt:      "write a limerick",
		Category:    "writing",
		TargetModel: domain.TargetChatGPT,
		ModelTier:   domain.ModelTierBasic,
	}
}

func TestOrchestrator_FirstAttempt(t *testing.T) {
	p := mock.New(testLogger(), mock.Reply{Text: validReply})
	sleeps := &recordedSleeps{}

	res, err := newTestOrchestrator(p, sleeps).Run(context.Background(), basicRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Degraded)
	assert.Equal(t, "s", res.Output[KeyShort])
	assert.Equal(t, validReply, res.Raw)
	assert.Empty(t, sleeps.delays)
	assert.Equal(t, 1, p.Calls())
}

func TestOrchestrator_RetriesWithBackoff(t *testing.T) {
	p := mock.New(testLogger(),
		mock.Reply{Err: ai.EAIUnavailable},
		mock.Reply{Text: "   \n"},
		mock.Reply{Text: validReply},
	)
	sleeps := &recordedSleeps{}

	res, err := newTestOrchestrator(p, sleeps).Run(context.Background(), basicRequest())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, p.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.delays)
}

func TestOrchestrator_Exhausted(t *testing.T) {
	p := mock.New(testLogger(), mock.Reply{Err: ai.EAIRateLimit})
	sleeps := &recordedSleeps{}

	res, err := newTestOrchestrator(p, sleeps).Run(context.Background(), basicRequest())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, domain.EUPSTREAM, domain.ErrorCode(err))
	assert.ErrorIs(t, err, ai.EAIRateLimit)
	assert.Equal(t, 3, p.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.delays)
}

func TestOrchestrator_EmptyRepliesExhaust(t *testing.T) {
	p := mock.New(testLogger(), mock.Reply{Text: ""})
	sleeps := &recordedSleeps{}

	_, err := newTestOrchestrator(p, sleeps).Run(context.Background(), basicRequest())
	require.Error(t, err)
	assert.Equal(t, domain.EUPSTREAM, domain.ErrorCode(err))
	assert.ErrorIs(t, err, errEmptyReply)
}

func TestOrchestrator_PermanentErrorsUseEveryAttempt(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unauthorized", fmt.Errorf("%w: bad key", ai.EAIUnauthorized)},
		{"invalid request", ai.EAIInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mock.New(testLogger(), mock.Reply{Err: tt.err})
			sleeps := &recordedSleeps{}

			_, err := newTestOrchestrator(p, sleeps).Run(context.Background(), basicRequest())
			require.Error(t, err)
			assert.Equal(t, domain.EUPSTREAM, domain.ErrorCode(err))
			assert.Equal(t, 3, p.Calls())
			assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.delays)
		})
	}
}

func TestOrchestrator_RequestMaxAttempts(t *testing.T) {
	p := mock.New(testLogger(), mock.Reply{Err: errors.New("boom")})
	sleeps := &recordedSleeps{}

	req := basicRequest()
	req.MaxAttempts = 5
	_, err := newTestOrchestrator(p, sleeps).Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 5, p.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, sleeps.delays)
}

func TestOrchestrator_CanceledDuringBackoff(t *testing.T) {
	p := mock.New(testLogger(), mock.Reply{Err: ai.EAIUnavailable})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := NewOrchestrator(p, OrchestratorConfig{
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}, testLogger())

	_, err := o.Run(ctx, basicRequest())
	require.Error(t, err)
	assert.Equal(t, domain.ECANCELED, domain.ErrorCode(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.Calls())
}

func TestOrchestrator_AlreadyCanceled(t *testing.T) {
	p := mock.New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOrchestrator(p, &recordedSleeps{}).Run(ctx, basicRequest())
	require.Error(t, err)
	assert.Equal(t, domain.ECANCELED, domain.ErrorCode(err))
	assert.Equal(t, 0, p.Calls())
}

func TestOrchestrator_RealSleepObservesCancel(t *testing.T) {
	p := mock.New(testLogger(), mock.Reply{Err: ai.EAIUnavailable})
	o := NewOrchestrator(p, OrchestratorConfig{BaseDelay: time.Hour}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := o.Run(ctx, basicRequest())
	require.Error(t, err)
	assert.Equal(t, domain.ECANCELED, domain.ErrorCode(err))
	assert.Less(t, time.Since(start), time.Minute)
}

func TestOrchestrator_DegradedReply(t *testing.T) {
	p := mock.New(testLogger(), mock.Reply{Text: "Sorry, here are some ideas without JSON."})

	res, err := newTestOrchestrator(p, &recordedSleeps{}).Run(context.Background(), basicRequest())
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "Error parsing AI response", res.Output[KeyShort])
	assert.Equal(t, res.Raw, res.Output[KeyDetailed])
}

func TestOrchestrator_PromptMatchesTier(t *testing.T) {
	p := mock.New(testLogger())

	req := basicRequest()
	req.ModelTier = domain.ModelTierPremium
	req.TargetModel = ""
	_, err := newTestOrchestrator(p, &recordedSleeps{}).Run(context.Background(), req)
	require.NoError(t, err)

	prompts := p.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Generate 5 variations")
	assert.Contains(t, prompts[0], "Target AI: chatgpt")
}

func TestAttemptStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errEmptyReply, "empty"},
		{ai.WrapError("execute request", ai.EAIUnauthorized), "permanent"},
		{fmt.Errorf("%w: bad prompt", ai.EAIInvalidRequest), "permanent"},
		{ai.WrapError("execute request", ai.EAIRateLimit), "transient"},
		{ai.EAITimeout, "transient"},
		{errors.New("unmarshal response: unexpected EOF"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, attemptStatus(tt.err))
		})
	}
}
