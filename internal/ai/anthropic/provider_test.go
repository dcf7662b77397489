package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/DukeRupert/promptgate/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(Config{
		APIKey:         "test-key",
		ProviderConfig: ai.ProviderConfig{BaseURL: srv.URL},
	}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	return p
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	assert.Error(t, err)
}

func TestGenerate_Success(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, APIVersion, r.Header.Get("anthropic-version"))

		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "write a haiku", req.Messages[0].Content[0].Text)

		_ = json.NewEncoder(w).Encode(apiResponse{
			Model: DefaultModel,
			Content: []apiContentOutput{
				{Type: "text", Text: `{"short":`},
				{Type: "text", Text: `"ok"}`},
			},
		})
	})

	text, err := p.Generate(context.Background(), "write a haiku")
	require.NoError(t, err)
	assert.Equal(t, `{"short":"ok"}`, text)
}

func TestGenerate_MapsHTTPErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		want      error
		retryable bool
		permanent bool
	}{
		{"unauthorized", http.StatusUnauthorized, ai.EAIUnauthorized, false, true},
		{"rate limited", http.StatusTooManyRequests, ai.EAIRateLimit, true, false},
		{"overloaded", 529, ai.EAIUnavailable, true, false},
		{"bad gateway", http.StatusBadGateway, ai.EAIUnavailable, true, false},
		{"bad request", http.StatusBadRequest, ai.EAIInvalidRequest, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"x","message":"nope"}}`))
			})

			_, err := p.Generate(context.Background(), "hi")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, tt.retryable, ai.IsRetryable(err))
			assert.Equal(t, tt.permanent, ai.IsPermanent(err))
		})
	}
}

func TestGenerate_ContextCanceled(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
