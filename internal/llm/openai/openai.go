// Package openai adapts the OpenAI chat completions API to llm.Provider.
package openai

import (
	"context"
	"fmt"

	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/llm"
	"github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o"

// Config configures the OpenAI provider. BaseURL targets compatible gateways.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Provider implements llm.Provider for OpenAI
type Provider struct {
	client *openai.Client
	model  string
}

// New creates an OpenAI provider; an API key is required
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("openai api_key required"))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{client: openai.NewClientWithConfig(clientCfg), model: model}, nil
}

func (p *Provider) Name() string { return "openai" }

// Model returns the configured model id
func (p *Provider) Model() string { return p.model }

// Chat sends req as a chat completion
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == llm.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokensOrDefault(),
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrLLMFailed, fmt.Errorf("openai: %w", err))
	}

	out := &llm.ChatResponse{
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return out, nil
}
