package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"quizgen/internal/domain"
	"quizgen/internal/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig configures the go-openai backed provider.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAIModel calls the chat-completions API with the go-openai SDK. It is
// used when the endpoint is OpenAI itself or a compatible gateway.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAIModel(cfg OpenAIConfig) (*OpenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model name cannot be empty")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = newUpstreamDoer(&http.Client{Timeout: cfg.Timeout}, nil)

	return &OpenAIModel{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (m *OpenAIModel) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	ctx, capture := withUpstreamCapture(ctx)

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: m.temperature,
	})
	if err != nil {
		if upErr := capture.get(); upErr != nil {
			return "", upErr
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", domain.NewUpstreamError(apiErr.HTTPStatusCode, apiErr.Message)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", domain.NewUpstreamError(reqErr.HTTPStatusCode, string(reqErr.Body))
		}
		logger.FromContext(ctx).Error("OpenAI call failed", zap.String("model", m.model), zap.Error(err))
		return "", domain.NewUpstreamError(http.StatusBadGateway, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == domain.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		if msg.Image == nil {
			out = append(out, openai.ChatCompletionMessage{Role: role, Content: msg.Text})
			continue
		}
		out = append(out, openai.ChatCompletionMessage{
			Role: role,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: msg.Text},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: msg.Image.DataURL()},
				},
			},
		})
	}
	return out
}

var _ domain.ChatModel = (*OpenAIModel)(nil)
