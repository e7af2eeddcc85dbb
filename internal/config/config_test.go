package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func clearCredentials(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")
}

func TestFromViper_Defaults(t *testing.T) {
	clearCredentials(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := fromViper(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Server.BodyLimitMB)
	assert.Equal(t, ProviderOpenRouter, cfg.LLM.Provider)
	assert.Equal(t, DefaultOpenRouterURL, cfg.LLM.BaseURL)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 180*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 25000, cfg.Extraction.MaxChars)
	assert.Equal(t, time.Hour, cfg.Extraction.CacheTTL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestFromViper_MissingAPIKeyIsFatal(t *testing.T) {
	clearCredentials(t)

	cfg, err := fromViper(newTestViper())
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestFromViper_OllamaNeedsNoKey(t *testing.T) {
	clearCredentials(t)
	t.Setenv("LLM_PROVIDER", "ollama")

	cfg, err := fromViper(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
}

func TestFromViper_UnsupportedProvider(t *testing.T) {
	clearCredentials(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")

	_, err := fromViper(newTestViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestFromViper_EnvOverrides(t *testing.T) {
	clearCredentials(t)
	t.Setenv("LLM_API_KEY", "from-llm-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("EXTRACTION_MAX_CHARS", "100")

	cfg, err := fromViper(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, "from-llm-key", cfg.LLM.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 100, cfg.Extraction.MaxChars)
}
