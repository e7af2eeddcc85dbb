package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"quizgen/internal/domain"
	"quizgen/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// OpenRouterConfig configures the OpenAI-compatible chat endpoint.
type OpenRouterConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	Referer     string
	Title       string
}

// OpenRouterModel calls an OpenAI-compatible chat-completions endpoint
// (OpenRouter by default) through langchaingo.
type OpenRouterModel struct {
	llm         llms.Model
	model       string
	temperature float64
}

// NewOpenRouterModel creates the langchaingo client. The API key is resolved
// once by the caller and injected here.
func NewOpenRouterModel(cfg OpenRouterConfig) (*OpenRouterModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openrouter model name cannot be empty")
	}

	doer := newUpstreamDoer(&http.Client{Timeout: cfg.Timeout}, map[string]string{
		"HTTP-Referer": cfg.Referer,
		"Referer":      cfg.Referer,
		"X-Title":      cfg.Title,
	})

	client, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(doer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
	}

	return &OpenRouterModel{
		llm:         client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends the conversation and returns the first choice's text.
func (m *OpenRouterModel) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	ctx, capture := withUpstreamCapture(ctx)

	resp, err := m.llm.GenerateContent(ctx, toLangchainMessages(messages), llms.WithTemperature(m.temperature))
	if err != nil {
		if upErr := capture.get(); upErr != nil {
			return "", upErr
		}
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return "", domainErr
		}
		logger.FromContext(ctx).Error("OpenRouter call failed", zap.String("model", m.model), zap.Error(err))
		return "", domain.NewUpstreamError(http.StatusBadGateway, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func toLangchainMessages(messages []domain.ChatMessage) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := schema.ChatMessageTypeHuman
		if msg.Role == domain.RoleSystem {
			role = schema.ChatMessageTypeSystem
		}
		parts := []llms.ContentPart{llms.TextPart(msg.Text)}
		if msg.Image != nil {
			parts = append(parts, llms.ImageURLPart(msg.Image.DataURL()))
		}
		out = append(out, llms.MessageContent{Role: role, Parts: parts})
	}
	return out
}

var _ domain.ChatModel = (*OpenRouterModel)(nil)
