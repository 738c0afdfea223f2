package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"pricing-chat/internal/config"
	"pricing-chat/internal/logger"
)

// OpenAIProvider implements Provider over any OpenAI-compatible chat
// completions endpoint (OpenRouter by default).
type OpenAIProvider struct {
	client *openai.Client
	config *config.LLMConfig
	models *config.ModelsConfig
}

// NewOpenAIProvider creates a provider from LLM and model configuration.
func NewOpenAIProvider(llmConfig *config.LLMConfig, modelsConfig *config.ModelsConfig) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(llmConfig.APIKey)
	if llmConfig.BaseURL != "" {
		clientConfig.BaseURL = llmConfig.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: llmConfig,
		models: modelsConfig,
	}
}

// ChatWithHistory sends a chat request with conversation history and returns
// the full response text.
func (p *OpenAIProvider) ChatWithHistory(ctx context.Context, messages []Message, systemPrompt, modelOverride string) (string, error) {
	if p.config.APIKey == "" {
		return "", fmt.Errorf("LLM_API_KEY not configured")
	}

	model := modelOverride
	if model == "" {
		model = p.GetDefaultModel()
	}

	logger.Log.WithFields(logrus.Fields{
		"model":         model,
		"message_count": len(messages),
	}).Info("Calling LLM API")

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  chatMessages,
		MaxTokens: p.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("error calling LLM API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GetDefaultModel returns the default model from the allowlist.
func (p *OpenAIProvider) GetDefaultModel() string {
	return p.models.GetDefaultModel()
}
