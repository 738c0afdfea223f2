package conversation

import (
	"fmt"

	"pricing-chat/internal/repository/db"
)

// ConversationSummary is the list-view shape for a conversation.
type ConversationSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Model         string `json:"model"`
	PaymentStatus string `json:"payment_status"`
	IsArchived    bool   `json:"is_archived"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// ConversationService handles the business logic for conversation management
type ConversationService struct {
	db db.Database
}

// NewConversationService creates a new ConversationService
func NewConversationService(database db.Database) *ConversationService {
	return &ConversationService{
		db: database,
	}
}

// GetUserConversations retrieves the user's conversations, newest first.
func (s *ConversationService) GetUserConversations(userID string, includeArchived bool) ([]ConversationSummary, error) {
	conversations, err := s.db.GetConversationsByUser(userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversations: %w", err)
	}

	result := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		result = append(result, ConversationSummary{
			ID:            conv.ID,
			Title:         conv.Title,
			Model:         conv.Model,
			PaymentStatus: conv.PaymentStatus,
			IsArchived:    conv.IsArchived,
			CreatedAt:     conv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:     conv.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return result, nil
}

// GetConversationMessages retrieves all messages from a conversation the
// user owns.
func (s *ConversationService) GetConversationMessages(conversationID, userID string) ([]db.Message, error) {
	if _, err := s.db.GetConversation(conversationID, userID); err != nil {
		return nil, fmt.Errorf("conversation not found: %w", err)
	}

	messages, err := s.db.GetConversationMessages(conversationID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	return messages, nil
}

// ArchiveConversation hides a conversation from the default list without
// deleting its history.
func (s *ConversationService) ArchiveConversation(conversationID, userID string) error {
	if err := s.db.ArchiveConversation(conversationID, userID); err != nil {
		return fmt.Errorf("failed to archive conversation: %w", err)
	}
	return nil
}

// DeleteConversation soft-deletes a conversation the user owns.
func (s *ConversationService) DeleteConversation(conversationID, userID string) error {
	if err := s.db.DeleteConversation(conversationID, userID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
