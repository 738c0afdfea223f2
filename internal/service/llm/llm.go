package llm

import "context"

// Message is one conversation turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider defines the interface for LLM backends.
type Provider interface {
	// ChatWithHistory sends the conversation history plus a system prompt and
	// returns the model's full reply text.
	ChatWithHistory(ctx context.Context, messages []Message, systemPrompt, modelOverride string) (string, error)

	// GetDefaultModel returns the default model for this provider.
	GetDefaultModel() string
}
