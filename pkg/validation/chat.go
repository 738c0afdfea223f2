package validation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// maxMessageLength bounds a single chat message.
const maxMessageLength = 8000

// ChatRequestValidator validates chat-related requests
type ChatRequestValidator struct{}

// NewChatRequestValidator creates a new ChatRequestValidator
func NewChatRequestValidator() *ChatRequestValidator {
	return &ChatRequestValidator{}
}

// ValidateMessage validates a chat message
func (v *ChatRequestValidator) ValidateMessage(message string) error {
	if message == "" {
		return errors.New("message cannot be empty")
	}
	if len(message) > maxMessageLength {
		return fmt.Errorf("message must be at most %d characters long, got %d", maxMessageLength, len(message))
	}
	return nil
}

// ValidateConversationID validates an optional conversation identifier
func (v *ChatRequestValidator) ValidateConversationID(conversationID string) error {
	if conversationID == "" {
		return nil // A new conversation is created when no ID is given
	}

	if _, err := uuid.Parse(conversationID); err != nil {
		return errors.New("conversation_id must be a valid UUID")
	}
	return nil
}

// ValidateTierName validates a pricing tier name for checkout
func (v *ChatRequestValidator) ValidateTierName(tierName string) error {
	if tierName == "" {
		return errors.New("tier cannot be empty")
	}
	return nil
}

// ValidateChatRequest validates a complete chat request
func (v *ChatRequestValidator) ValidateChatRequest(message, conversationID string) error {
	if err := v.ValidateMessage(message); err != nil {
		return err
	}

	if err := v.ValidateConversationID(conversationID); err != nil {
		return err
	}

	return nil
}
