package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speakersite/internal/config"
)

func TestResolvePicksProviderAndModelOverride(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "Claude"
	cfg.Providers["claude"] = config.ProviderConfig{Model: "claude-default", APIKey: "k", MaxTokens: 512}

	s, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, s.Provider)
	assert.Equal(t, "claude-default", s.Model)
	assert.Equal(t, 512, s.MaxTokens)

	cfg.LLM.Model = "claude-override"
	s, err = Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, "claude-override", s.Model)
}

func TestResolveRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "mistral"
	_, err := Resolve(cfg)
	assert.Error(t, err)
}

func TestNewChatModelRequiresAPIKey(t *testing.T) {
	_, err := NewChatModel(context.Background(), Settings{Provider: ProviderOpenAI, Model: "gpt-4o-mini"})
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestNewChatModelRejectsUnknownProvider(t *testing.T) {
	_, err := NewChatModel(context.Background(), Settings{Provider: "other", Model: "m", APIKey: "k"})
	assert.Error(t, err)
}

func TestNewChatModelBuildsOpenAIClient(t *testing.T) {
	m, err := NewChatModel(context.Background(), Settings{
		Provider: ProviderOpenAI,
		BaseURL:  "http://127.0.0.1:1/v1",
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
