package llm

import (
	"fmt"

	"quizgen/internal/config"
	"quizgen/internal/domain"
)

// NewChatModel builds the provider selected by llm.provider.
func NewChatModel(cfg config.LLMConfig) (domain.ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return NewOpenRouterModel(OpenRouterConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			Referer:     cfg.Referer,
			Title:       cfg.Title,
		})
	case config.ProviderOpenAI:
		return NewOpenAIModel(OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	case config.ProviderOllama:
		return NewOllamaModel(OllamaConfig{
			ServerURL:   cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}
