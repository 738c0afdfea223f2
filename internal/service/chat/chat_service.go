package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"pricing-chat/internal/app"
	"pricing-chat/internal/extract"
	"pricing-chat/internal/logger"
	"pricing-chat/internal/repository/db"
	"pricing-chat/internal/service/llm"
	"pricing-chat/internal/service/pricing"
)

// ScriptedGreeting is injected as the first assistant turn of every
// conversation so the model always sees the intended framing, even when the
// user's opening message is terse.
const ScriptedGreeting = "Hi — I can recommend the right plan. Which blockchains do you need, roughly how many requests per month, do you need archive/historical data, any region preference (US/EU/APAC/global), and what's your monthly budget?"

// extractionSystemPrompt instructs the model to always emit a user-facing
// reply plus a machine-readable answers block.
const extractionSystemPrompt = `You are a helpful assistant that recommends a subscription tier for a blockchain data product.

You MUST return two parts:
1) A user-facing reply.
2) A machine-readable JSON object wrapped in <answers>...</answers> tags.

The JSON schema is:
{
  "blockchains": string[],
  "request_volume_per_month": number|null,
  "archive_needs": "none"|"partial"|"full"|null,
  "geo_preference": string|null,
  "budget_monthly_cents": number|null
}

Return null when a field cannot be inferred.
Do not include any other keys.`

// historyLimit caps how many prior turns are replayed to the model.
const historyLimit = 20

// SendMessageRequest contains all the parameters needed to send a message.
type SendMessageRequest struct {
	Message        string
	ConversationID string
	Model          string
	UserID         string // Extracted from auth context
}

// SendMessageResponse contains the chat outcome returned to the handler.
type SendMessageResponse struct {
	ConversationID   string
	AssistantMessage string
	ExtractedAnswers extract.Answers
	Recommendation   *pricing.Recommendation
	Model            string
}

// ChatService handles the business logic for chat operations.
type ChatService struct {
	db          db.Database
	config      *app.Config
	llmProvider llm.Provider
}

// NewChatService creates a new ChatService.
func NewChatService(database db.Database, config *app.Config) *ChatService {
	llmProvider := llm.NewOpenAIProvider(
		&config.AppConfig.LLM,
		config.AppConfig.Models,
	)

	return &ChatService{
		db:          database,
		config:      config,
		llmProvider: llmProvider,
	}
}

// SendMessage runs one full chat turn: greeting injection on a fresh
// conversation, LLM call, answer extraction, and pricing recommendation.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	if err := s.validateModel(req.Model); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}

	conversation, err := s.getOrCreateConversation(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create conversation: %w", err)
	}

	history, err := s.db.GetConversationMessages(conversation.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversation history: %w", err)
	}

	turns := toTurns(history)

	// Fresh conversation: record the scripted greeting as an assistant turn
	// before the user's first message. The transition is one-way; once any
	// turn exists the greeting is never injected again.
	if len(turns) == 0 {
		if _, err := s.db.AddMessage(conversation.ID, req.UserID, "assistant", ScriptedGreeting, conversation.Model, db.Metadata{"type": "greeting"}); err != nil {
			return nil, fmt.Errorf("failed to save greeting message: %w", err)
		}
		turns = append(turns, llm.Message{Role: "assistant", Content: ScriptedGreeting})
	}

	if _, err := s.db.AddMessage(conversation.ID, req.UserID, "user", req.Message, "", nil); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}
	turns = append(turns, llm.Message{Role: "user", Content: req.Message})

	usedModel := req.Model
	if usedModel == "" {
		usedModel = conversation.Model
	}
	if usedModel == "" {
		usedModel = s.llmProvider.GetDefaultModel()
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": conversation.ID,
		"turn_count":      len(turns),
		"model":           usedModel,
	}).Debug("Prepared for LLM call")

	rawReply, err := s.llmProvider.ChatWithHistory(ctx, turns, s.buildSystemPrompt(conversation), usedModel)
	if err != nil {
		return nil, fmt.Errorf("LLM error: %w", err)
	}

	result := extract.Parse(rawReply)

	tiers, err := s.db.GetActivePricingTiers()
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing tiers: %w", err)
	}

	recommendation, err := pricing.Recommend(result.Answers, tiers)
	if err != nil {
		return nil, fmt.Errorf("failed to compute recommendation: %w", err)
	}

	metadata := db.Metadata{
		"extracted_answers": result.Answers,
		"pricing_snapshot": db.Metadata{
			"computed_at":       time.Now().UTC().Format(time.RFC3339),
			"tier_name":         recommendation.Tier.TierName,
			"display_name":      recommendation.Tier.DisplayName,
			"selection_reasons": recommendation.SelectionReasons,
		},
	}

	if _, err := s.db.AddMessage(conversation.ID, req.UserID, "assistant", result.AssistantText, usedModel, metadata); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return &SendMessageResponse{
		ConversationID:   conversation.ID,
		AssistantMessage: result.AssistantText,
		ExtractedAnswers: result.Answers,
		Recommendation:   recommendation,
		Model:            usedModel,
	}, nil
}

// getOrCreateConversation retrieves an existing conversation (enforcing
// ownership) or creates a new one with the default title.
func (s *ChatService) getOrCreateConversation(req SendMessageRequest) (*db.Conversation, error) {
	if req.ConversationID != "" {
		return s.db.GetConversation(req.ConversationID, req.UserID)
	}

	model := req.Model
	if model == "" {
		model = s.llmProvider.GetDefaultModel()
	}
	return s.db.CreateConversation(req.UserID, "", model, "")
}

// validateModel checks if the provided model ID is in the allowlist.
func (s *ChatService) validateModel(modelID string) error {
	if modelID != "" && !s.config.ModelsConfig().IsValidModel(modelID) {
		return fmt.Errorf("invalid model specified")
	}
	return nil
}

// buildSystemPrompt appends a conversation's custom prompt, if any, to the
// fixed extraction instructions.
func (s *ChatService) buildSystemPrompt(conversation *db.Conversation) string {
	if conversation.SystemPrompt != "" {
		return extractionSystemPrompt + "\n\n" + conversation.SystemPrompt
	}
	return extractionSystemPrompt
}

// toTurns converts stored messages to LLM turns, dropping system rows.
func toTurns(messages []db.Message) []llm.Message {
	var turns []llm.Message
	for _, msg := range messages {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		turns = append(turns, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	return turns
}
