package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/comigor/asistente-agro/internal/config"
	"github.com/comigor/asistente-agro/internal/logger"
)

// NewClient creates an OpenAI-compatible client; Groq unless base_url says otherwise.
func NewClient(cfg config.LLMConfig) *openai.Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	logger.L.Debug("llm client configured", "base_url", oc.BaseURL)
	return openai.NewClientWithConfig(oc)
}
