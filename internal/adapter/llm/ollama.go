package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quizgen/internal/domain"
	"quizgen/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// OllamaConfig configures a local Ollama server, used for development
// without a hosted credential.
type OllamaConfig struct {
	ServerURL   string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type OllamaModel struct {
	llm         llms.Model
	model       string
	temperature float64
}

func NewOllamaModel(cfg OllamaConfig) (*OllamaModel, error) {
	opts := []ollama.Option{
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(&http.Client{
			Timeout:   cfg.Timeout,
			Transport: newUpstreamDoer(&http.Client{}, nil),
		}),
	}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &OllamaModel{llm: client, model: cfg.Model, temperature: cfg.Temperature}, nil
}

func (m *OllamaModel) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	ctx, capture := withUpstreamCapture(ctx)

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := schema.ChatMessageTypeHuman
		if msg.Role == domain.RoleSystem {
			role = schema.ChatMessageTypeSystem
		}
		parts := []llms.ContentPart{llms.TextPart(msg.Text)}
		if msg.Image != nil {
			parts = append(parts, llms.BinaryPart(msg.Image.MIMEType, msg.Image.Data))
		}
		content = append(content, llms.MessageContent{Role: role, Parts: parts})
	}

	resp, err := m.llm.GenerateContent(ctx, content, llms.WithTemperature(m.temperature))
	if err != nil {
		if upErr := capture.get(); upErr != nil {
			return "", upErr
		}
		logger.FromContext(ctx).Error("Ollama call failed", zap.String("model", m.model), zap.Error(err))
		return "", domain.NewUpstreamError(http.StatusBadGateway, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no choices")
	}
	return resp.Choices[0].Content, nil
}

var _ domain.ChatModel = (*OllamaModel)(nil)
