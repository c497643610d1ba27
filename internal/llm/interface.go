package llm

import "context"

// Roles accepted in Message.Role
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxTokens applies when ChatRequest.MaxTokens is not positive
const DefaultMaxTokens = 512

// Provider is a chat-completion backend
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds the request parameters
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
}

// Message is a single chat turn
type Message struct {
	Role    string
	Content string
}

// ChatResponse holds the model answer
type ChatResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// MaxTokensOrDefault returns the effective token limit
func (req ChatRequest) MaxTokensOrDefault() int {
	if req.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return req.MaxTokens
}

// Ask sends a single user prompt and returns the answer text
func Ask(ctx context.Context, p Provider, system, prompt string, maxTokens int) (string, error) {
	resp, err := p.Chat(ctx, ChatRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
