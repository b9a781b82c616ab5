package factory

import (
	"fmt"

	"edu-assistant-be/pkg/llm"
	"edu-assistant-be/pkg/llm/ollama"
	"edu-assistant-be/pkg/llm/openai"
)

type Config struct {
	Provider      string
	Model         string
	OllamaBaseURL string
	OpenAIBaseURL string
	OpenAIAPIKey  string
}

// NewLLMProvider returns nil without error when the provider is "none"; callers treat that as an unavailable
// completion capability.
func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		return openai.NewProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model), nil
	case "ollama":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
