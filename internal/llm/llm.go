package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"speakersite/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"

	defaultClaudeMaxTokens = 3000
)

var ErrMissingAPIKey = errors.New("api key not configured")

// Settings is the resolved configuration of one provider.
type Settings struct {
	Provider  string
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
}

// Resolve picks the active provider from the config. The llm.model override
// wins over the provider's default model.
func Resolve(cfg *config.Config) (Settings, error) {
	if cfg == nil {
		return Settings{}, errors.New("config required")
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	provCfg, ok := cfg.Providers[provider]
	if !ok {
		return Settings{}, fmt.Errorf("provider %s not configured", provider)
	}
	modelName := provCfg.Model
	if m := strings.TrimSpace(cfg.LLM.Model); m != "" {
		modelName = m
	}
	if modelName == "" {
		return Settings{}, fmt.Errorf("provider %s: model not configured", provider)
	}
	return Settings{
		Provider:  provider,
		BaseURL:   provCfg.BaseURL,
		Model:     modelName,
		APIKey:    provCfg.APIKey,
		MaxTokens: provCfg.MaxTokens,
	}, nil
}

// NewChatModel builds the hosted completion client for the given settings.
func NewChatModel(ctx context.Context, s Settings) (model.BaseChatModel, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, fmt.Errorf("provider %s: %w", s.Provider, ErrMissingAPIKey)
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch s.Provider {
	case ProviderOpenAI:
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: s.BaseURL,
			Model:   s.Model,
			APIKey:  s.APIKey,
		})
	case ProviderGemini:
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: s.APIKey,
		})
		if cerr != nil {
			return nil, fmt.Errorf("new gemini client: %w", cerr)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  s.Model,
		})
	case ProviderClaude:
		var baseURLPtr *string
		if s.BaseURL != "" {
			baseURL := s.BaseURL
			baseURLPtr = &baseURL
		}
		maxTokens := s.MaxTokens
		if maxTokens <= 0 {
			maxTokens = defaultClaudeMaxTokens
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    s.APIKey,
			Model:     s.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: maxTokens,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", s.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", s.Provider, err)
	}
	return chatModel, nil
}
