package conversation

import (
	"errors"
	"testing"
	"time"

	"pricing-chat/internal/repository/db"
	"pricing-chat/internal/testutil"
)

func TestGetUserConversations(t *testing.T) {
	now := time.Now()
	mockDB := &testutil.MockDatabase{
		GetConversationsByUserFunc: func(userID string, includeArchived bool) ([]db.Conversation, error) {
			if userID != "user-1" {
				t.Errorf("Expected query for user-1, got %q", userID)
			}
			if includeArchived {
				t.Error("Expected archived conversations to be excluded by default")
			}
			return []db.Conversation{
				{ID: "conv-2", UserID: userID, Title: "Pricing chat", PaymentStatus: "paid", CreatedAt: now, UpdatedAt: now},
				{ID: "conv-1", UserID: userID, Title: "New Conversation", PaymentStatus: "unpaid", CreatedAt: now, UpdatedAt: now},
			}, nil
		},
	}

	service := NewConversationService(mockDB)
	conversations, err := service.GetUserConversations("user-1", false)
	if err != nil {
		t.Fatalf("GetUserConversations failed: %v", err)
	}

	if len(conversations) != 2 {
		t.Fatalf("Expected 2 conversations, got %d", len(conversations))
	}
	if conversations[0].ID != "conv-2" {
		t.Errorf("Expected conv-2 first, got %q", conversations[0].ID)
	}
	if conversations[0].PaymentStatus != "paid" {
		t.Errorf("Expected payment status paid, got %q", conversations[0].PaymentStatus)
	}
}

func TestGetConversationMessagesOwnership(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id, userID string) (*db.Conversation, error) {
			return nil, errors.New("conversation not found")
		},
	}

	service := NewConversationService(mockDB)
	if _, err := service.GetConversationMessages("conv-1", "intruder"); err == nil {
		t.Error("Expected error when the user does not own the conversation")
	}
}

func TestGetConversationMessages(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetConversationFunc: func(id, userID string) (*db.Conversation, error) {
			return &db.Conversation{ID: id, UserID: userID}, nil
		},
		GetConversationMessagesFunc: func(conversationID string, limit int) ([]db.Message, error) {
			if limit != 0 {
				t.Errorf("Expected full history (limit 0), got limit %d", limit)
			}
			return []db.Message{
				{ID: "msg-1", Role: "assistant", Content: "Hello"},
				{ID: "msg-2", Role: "user", Content: "Hi"},
			}, nil
		},
	}

	service := NewConversationService(mockDB)
	messages, err := service.GetConversationMessages("conv-1", "user-1")
	if err != nil {
		t.Fatalf("GetConversationMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(messages))
	}
}

func TestDeleteConversationPropagatesNotFound(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		DeleteConversationFunc: func(id, userID string) error {
			return errors.New("conversation not found")
		},
	}

	service := NewConversationService(mockDB)
	if err := service.DeleteConversation("missing", "user-1"); err == nil {
		t.Error("Expected error when conversation does not exist")
	}
}
