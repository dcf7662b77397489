// Package gemini implements ai.Provider over the Google Generative Language
// REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/promptgate/internal/ai"
)

const (
	// APIBaseURL is the model collection endpoint.
	APIBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	// DefaultModel is the default Gemini model to use
	DefaultModel = "gemini-2.0-flash"
)

// Config contains configuration for the Gemini provider
type Config struct {
	APIKey         string
	Model          string
	ProviderConfig ai.ProviderConfig
}

// Provider calls models/{model}:generateContent once per Generate call.
type Provider struct {
	config   Config
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a new Gemini provider
func New(config Config, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	config.ProviderConfig = config.ProviderConfig.WithDefaults()
	base := config.ProviderConfig.BaseURL
	if base == "" {
		base = APIBaseURL
	}

	return &Provider{
		config:   config,
		endpoint: fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(base, "/"), url.PathEscape(config.Model)),
		client: &http.Client{
			Timeout: config.ProviderConfig.RequestTimeout,
		},
		logger: logger,
	}, nil
}

// Name implements ai.Provider.
func (p *Provider) Name() string {
	return "gemini"
}

// Generate returns the text parts of the first candidate.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			MaxOutputTokens:  p.config.ProviderConfig.MaxTokens,
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return "", ai.WrapError("build request", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", ai.WrapError("build request", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ai.WrapError("execute request", ctxErr)
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", ai.WrapError("execute request", ai.EAITimeout)
		}
		return "", ai.WrapError("execute request", fmt.Errorf("%w: %v", ai.EAIUnavailable, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ai.WrapError("execute request", fmt.Errorf("read response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", ai.WrapError("execute request", mapHTTPError(resp.StatusCode, raw))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", ai.WrapError("parse response", fmt.Errorf("unmarshal response: %w", err))
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", ai.WrapError("generate", fmt.Errorf("%w: %s", ai.EAIContentPolicy, out.PromptFeedback.BlockReason))
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, pt := range out.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}

	p.logger.Debug("Gemini completion received",
		"model", p.config.Model,
		"finish_reason", out.Candidates[0].FinishReason,
		"total_tokens", out.UsageMetadata.TotalTokenCount,
	)
	return sb.String(), nil
}

func mapHTTPError(statusCode int, body []byte) error {
	var errResp errorResponse
	_ = json.Unmarshal(body, &errResp)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ai.EAIUnauthorized
	case http.StatusTooManyRequests:
		return ai.EAIRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ai.EAITimeout
	case http.StatusBadRequest, http.StatusNotFound:
		return fmt.Errorf("%w: %s", ai.EAIInvalidRequest, errResp.Error.Message)
	case http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusBadGateway:
		return ai.EAIUnavailable
	default:
		return fmt.Errorf("API error (status %d): %s", statusCode, errResp.Error.Message)
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens  int    `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  usageMetadata   `json:"usageMetadata"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
