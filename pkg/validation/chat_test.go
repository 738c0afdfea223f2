package validation

import (
	"strings"
	"testing"
)

func TestChatRequestValidator_ValidateMessage(t *testing.T) {
	validator := NewChatRequestValidator()

	tests := []struct {
		name    string
		message string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid message",
			message: "I need archive data access",
			wantErr: false,
		},
		{
			name:    "empty message",
			message: "",
			wantErr: true,
			errMsg:  "message cannot be empty",
		},
		{
			name:    "message too long",
			message: strings.Repeat("a", 8001),
			wantErr: true,
			errMsg:  "message must be at most 8000 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateMessage(tt.message)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && tt.errMsg != "" {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateMessage() error message = %v, want to contain %v", err.Error(), tt.errMsg)
				}
			}
		})
	}
}

func TestChatRequestValidator_ValidateConversationID(t *testing.T) {
	validator := NewChatRequestValidator()

	tests := []struct {
		name           string
		conversationID string
		wantErr        bool
	}{
		{
			name:           "empty ID starts a new conversation",
			conversationID: "",
			wantErr:        false,
		},
		{
			name:           "valid UUID",
			conversationID: "2f4a9c1e-8d35-4e6b-9f20-b71c3a5d8e90",
			wantErr:        false,
		},
		{
			name:           "not a UUID",
			conversationID: "conversation-42",
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateConversationID(tt.conversationID)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConversationID() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChatRequestValidator_ValidateChatRequest(t *testing.T) {
	validator := NewChatRequestValidator()

	if err := validator.ValidateChatRequest("hello", ""); err != nil {
		t.Errorf("ValidateChatRequest() unexpected error: %v", err)
	}

	if err := validator.ValidateChatRequest("", ""); err == nil {
		t.Error("ValidateChatRequest() expected error for empty message")
	}

	if err := validator.ValidateChatRequest("hello", "not-a-uuid"); err == nil {
		t.Error("ValidateChatRequest() expected error for malformed conversation ID")
	}
}
