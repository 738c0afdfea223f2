package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"pricing-chat/internal/app"
	"pricing-chat/internal/auth"
	"pricing-chat/internal/config"
	"pricing-chat/internal/logger"
	chatService "pricing-chat/internal/service/chat"
	conversationService "pricing-chat/internal/service/conversation"
	"pricing-chat/pkg/validation"
)

// Request/Response types

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Model          string `json:"model,omitempty"`
}

type RecommendationData struct {
	Summary    string            `json:"summary"`
	Benefits   []string          `json:"benefits"`
	Tier       string            `json:"tier"`
	PaymentCTA RecommendationCTA `json:"payment_cta"`
}

type RecommendationCTA struct {
	Provider          string `json:"provider"`
	TierName          string `json:"tier_name"`
	DisplayName       string `json:"display_name"`
	PriceMonthlyCents int64  `json:"price_monthly_cents"`
	PriceYearlyCents  *int64 `json:"price_yearly_cents,omitempty"`
	CheckoutPath      string `json:"checkout_path"`
}

type ChatData struct {
	ConversationID   string              `json:"conversation_id"`
	AssistantMessage string              `json:"assistant_message"`
	Model            string              `json:"model,omitempty"`
	ExtractedAnswers interface{}         `json:"extracted_answers"`
	Recommendation   *RecommendationData `json:"recommendation,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	// Detail carries the underlying error outside production.
	Detail string `json:"detail,omitempty"`
}

type MessageData struct {
	ID        string      `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	Model     string      `json:"model,omitempty"`
	Metadata  interface{} `json:"metadata,omitempty"`
	CreatedAt string      `json:"created_at"`
}

type ModelsResponse struct {
	Models []config.Model `json:"models"`
}

// ChatHandlers uses the service layer for better separation of concerns
type ChatHandlers struct {
	config              *app.Config
	validator           *validation.ChatRequestValidator
	chatService         *chatService.ChatService
	conversationService *conversationService.ConversationService
}

// NewChatHandlers creates a new ChatHandlers with service layer
func NewChatHandlers(config *app.Config) *ChatHandlers {
	return &ChatHandlers{
		config:              config,
		validator:           validation.NewChatRequestValidator(),
		chatService:         chatService.NewChatService(config.DB, config),
		conversationService: conversationService.NewConversationService(config.DB),
	}
}

// ChatHandler is the REST endpoint for one chat turn
func (ch *ChatHandlers) ChatHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ch.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ch.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := ch.validator.ValidateChatRequest(req.Message, req.ConversationID); err != nil {
		ch.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Log.WithFields(logrus.Fields{
		"username":      claims.Username,
		"message_chars": len(req.Message),
	}).Info("Chat request received")

	serviceReq := chatService.SendMessageRequest{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		Model:          req.Model,
		UserID:         claims.UserID,
	}

	response, err := ch.chatService.SendMessage(r.Context(), serviceReq)
	if err != nil {
		logger.Log.WithError(err).Error("Error from chat service")
		switch {
		case strings.Contains(err.Error(), "invalid model"):
			ch.sendError(w, http.StatusBadRequest, "Invalid model specified")
		case strings.Contains(err.Error(), "not found"):
			ch.sendError(w, http.StatusNotFound, "Conversation not found")
		default:
			ch.sendServerError(w, "Error processing message", err)
		}
		return
	}

	data := ChatData{
		ConversationID:   response.ConversationID,
		AssistantMessage: response.AssistantMessage,
		Model:            response.Model,
		ExtractedAnswers: response.ExtractedAnswers,
	}
	if rec := response.Recommendation; rec != nil {
		data.Recommendation = &RecommendationData{
			Summary:  rec.Summary,
			Benefits: rec.Benefits,
			Tier:     rec.Tier.TierName,
			PaymentCTA: RecommendationCTA{
				Provider:          rec.PaymentCTA.Provider,
				TierName:          rec.PaymentCTA.TierName,
				DisplayName:       rec.PaymentCTA.DisplayName,
				PriceMonthlyCents: rec.PaymentCTA.PriceMonthlyCents,
				PriceYearlyCents:  rec.PaymentCTA.PriceYearlyCents,
				CheckoutPath:      rec.PaymentCTA.CheckoutPath,
			},
		}
	}

	ch.sendSuccess(w, http.StatusOK, data)
}

// GetConversationsHandler returns all conversations for the authenticated user
func (ch *ChatHandlers) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ch.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	includeArchived := r.URL.Query().Get("include_archived") == "true"

	conversations, err := ch.conversationService.GetUserConversations(claims.UserID, includeArchived)
	if err != nil {
		logger.Log.WithError(err).Error("Error retrieving conversations")
		ch.sendServerError(w, "Error retrieving conversations", err)
		return
	}

	ch.sendSuccess(w, http.StatusOK, map[string]interface{}{
		"conversations": conversations,
	})
}

// GetConversationMessagesHandler returns the message history of a conversation
func (ch *ChatHandlers) GetConversationMessagesHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ch.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	convID := r.PathValue("id")

	messages, err := ch.conversationService.GetConversationMessages(convID, claims.UserID)
	if err != nil {
		logger.Log.WithError(err).Error("Error retrieving messages")
		if strings.Contains(err.Error(), "not found") {
			ch.sendError(w, http.StatusNotFound, "Conversation not found")
		} else {
			ch.sendServerError(w, "Error retrieving messages", err)
		}
		return
	}

	result := make([]MessageData, 0, len(messages))
	for _, msg := range messages {
		data := MessageData{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Model:     msg.Model,
			CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if len(msg.Metadata) > 0 {
			data.Metadata = msg.Metadata
		}
		result = append(result, data)
	}

	ch.sendSuccess(w, http.StatusOK, map[string]interface{}{
		"conversation_id": convID,
		"messages":        result,
	})
}

// ArchiveConversationHandler hides a conversation from the default list
func (ch *ChatHandlers) ArchiveConversationHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ch.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	convID := r.PathValue("id")
	logger.Log.WithFields(logrus.Fields{"username": claims.Username, "conversation_id": convID}).Info("Archive conversation request")

	if err := ch.conversationService.ArchiveConversation(convID, claims.UserID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			ch.sendError(w, http.StatusNotFound, "Conversation not found")
		} else {
			ch.sendServerError(w, "Error archiving conversation", err)
		}
		return
	}

	ch.sendSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Conversation archived successfully",
	})
}

// DeleteConversationHandler deletes a specific conversation
func (ch *ChatHandlers) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ch.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	convID := r.PathValue("id")
	logger.Log.WithFields(logrus.Fields{"username": claims.Username, "conversation_id": convID}).Info("Delete conversation request")

	if err := ch.conversationService.DeleteConversation(convID, claims.UserID); err != nil {
		logger.Log.WithError(err).Error("Error from conversation service")
		if strings.Contains(err.Error(), "not found") {
			ch.sendError(w, http.StatusNotFound, "Conversation not found")
		} else {
			ch.sendServerError(w, "Error deleting conversation", err)
		}
		return
	}

	ch.sendSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Conversation deleted successfully",
	})
}

// GetModelsHandler returns the list of available models
func (ch *ChatHandlers) GetModelsHandler(w http.ResponseWriter, r *http.Request) {
	models := ch.config.ModelsConfig().GetAvailableModels()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ModelsResponse{
		Models: models,
	})
}

// sendSuccess sends a standardized JSON success envelope
func (ch *ChatHandlers) sendSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SuccessResponse{Success: true, Data: data})
}

// sendError sends a standardized JSON error response
func (ch *ChatHandlers) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: message})
}

// sendServerError sends a 500 with a generic message; the underlying error
// is attached as detail outside production.
func (ch *ChatHandlers) sendServerError(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Success: false, Error: message}
	if err != nil && !ch.config.AppConfig.IsProduction() {
		resp.Detail = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(resp)
}
