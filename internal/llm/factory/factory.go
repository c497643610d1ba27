// Package factory builds the configured llm.Provider.
package factory

import (
	"fmt"

	"github.com/newthinker/tradando/internal/config"
	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/llm"
	"github.com/newthinker/tradando/internal/llm/claude"
	"github.com/newthinker/tradando/internal/llm/ollama"
	"github.com/newthinker/tradando/internal/llm/openai"
)

// New creates an LLM provider from configuration. An empty provider name
// returns nil, nil: descriptions then use the static fallback.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "claude":
		return claude.New(claude.Config{
			APIKey:     cfg.Claude.APIKey,
			Model:      cfg.Claude.Model,
			BaseURL:    cfg.Claude.BaseURL,
			MaxRetries: cfg.Claude.MaxRetries,
		})
	case "openai":
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	case "ollama":
		return ollama.New(ollama.Config{
			Endpoint: cfg.Ollama.Endpoint,
			Model:    cfg.Ollama.Model,
			Timeout:  cfg.Timeout,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown LLM provider: %s", cfg.Provider))
	}
}
