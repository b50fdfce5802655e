package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashureev/bloomify/internal/config"
)

// NewProvider creates the configured Provider wrapped with logging.
func NewProvider(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case config.ProviderGemini:
		base, err = NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.GoogleAPIKey, Model: cfg.Model})
	case config.ProviderAnthropic:
		base, err = NewAnthropicProvider(AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.Model})
	case config.ProviderOpenAI:
		base, err = NewOpenAIProvider(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.Model, BaseURL: cfg.OpenAIBaseURL})
	case config.ProviderMock:
		base = NewEchoProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, logger), nil
}
