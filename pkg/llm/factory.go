package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/config"
)

// NewFromConfig creates the configured text-generation client.
func NewFromConfig(cfg *config.LLMConfig, logger *zap.Logger) (TextClient, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(&AnthropicConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}, logger)
	case "openai":
		return NewOpenAIClient(&OpenAIConfig{
			Endpoint:    cfg.Endpoint,
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			Temperature: cfg.Temperature,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
