package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"pricing-chat/internal/config"
	"pricing-chat/internal/repository/db"
	"pricing-chat/internal/service/apikey"
	"pricing-chat/internal/testutil"
)

func checkoutCompletedEvent(t *testing.T, sessionID, userID, conversationID string) stripe.Event {
	t.Helper()

	sess := map[string]interface{}{
		"id":           sessionID,
		"amount_total": 4900,
		"metadata": map[string]string{
			"user_id":         userID,
			"conversation_id": conversationID,
		},
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("Failed to marshal session: %v", err)
	}

	return stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}
}

func newTestService(mockDB db.Database, webhookSecret string) *Service {
	return &Service{
		db:          mockDB,
		stripeCfg:   config.StripeConfig{WebhookSecret: webhookSecret},
		frontendURL: "http://localhost:3000",
		keys:        apikey.NewService(mockDB),
	}
}

func TestHandleCheckoutCompleted(t *testing.T) {
	var orderSession string
	var paidConversation string
	var mintedFor string

	mockDB := &testutil.MockDatabase{
		CreateOrderFunc: func(userID string, conversationID *string, stripeSessionID string, amountCents int64, status string) (bool, error) {
			orderSession = stripeSessionID
			if userID != "user-1" {
				t.Errorf("Expected order for user-1, got %q", userID)
			}
			if amountCents != 4900 {
				t.Errorf("Expected amount 4900, got %d", amountCents)
			}
			if status != "completed" {
				t.Errorf("Expected status completed, got %q", status)
			}
			return true, nil
		},
		MarkConversationPaidFunc: func(id, userID string) error {
			paidConversation = id
			return nil
		},
		CreateAPIKeyFunc: func(userID, keyHash, keyPrefix, name string) (*db.APIKey, error) {
			mintedFor = userID
			return &db.APIKey{ID: "key-1", UserID: userID, KeyPrefix: keyPrefix}, nil
		},
	}

	service := newTestService(mockDB, "whsec_test")
	event := checkoutCompletedEvent(t, "cs_test_123", "user-1", "conv-1")

	if err := service.HandleEvent(event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	if orderSession != "cs_test_123" {
		t.Errorf("Expected order for session cs_test_123, got %q", orderSession)
	}
	if paidConversation != "conv-1" {
		t.Errorf("Expected conversation conv-1 marked paid, got %q", paidConversation)
	}
	if mintedFor != "user-1" {
		t.Errorf("Expected key minted for user-1, got %q", mintedFor)
	}
}

func TestDuplicateDeliveryMintsNoSecondKey(t *testing.T) {
	keysMinted := 0
	ordersSeen := make(map[string]bool)

	mockDB := &testutil.MockDatabase{
		CreateOrderFunc: func(userID string, conversationID *string, stripeSessionID string, amountCents int64, status string) (bool, error) {
			if ordersSeen[stripeSessionID] {
				return false, nil
			}
			ordersSeen[stripeSessionID] = true
			return true, nil
		},
		MarkConversationPaidFunc: func(id, userID string) error { return nil },
		CreateAPIKeyFunc: func(userID, keyHash, keyPrefix, name string) (*db.APIKey, error) {
			keysMinted++
			return &db.APIKey{ID: "key-1", UserID: userID}, nil
		},
	}

	service := newTestService(mockDB, "whsec_test")
	event := checkoutCompletedEvent(t, "cs_test_dup", "user-1", "conv-1")

	if err := service.HandleEvent(event); err != nil {
		t.Fatalf("First delivery failed: %v", err)
	}
	if err := service.HandleEvent(event); err != nil {
		t.Fatalf("Second delivery failed: %v", err)
	}

	if keysMinted != 1 {
		t.Errorf("Expected exactly 1 key minted across retries, got %d", keysMinted)
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	service := newTestService(mockDB, "whsec_test")

	event := stripe.Event{Type: "invoice.paid", Data: &stripe.EventData{Raw: []byte(`{}`)}}
	if err := service.HandleEvent(event); err != nil {
		t.Errorf("Expected unknown event types to be acknowledged, got %v", err)
	}
}

func TestHandleCheckoutMissingUserID(t *testing.T) {
	mockDB := &testutil.MockDatabase{}
	service := newTestService(mockDB, "whsec_test")

	event := checkoutCompletedEvent(t, "cs_test_nouser", "", "")
	if err := service.HandleEvent(event); err == nil {
		t.Error("Expected error for session without user_id metadata")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test_secret"
	service := newTestService(&testutil.MockDatabase{}, secret)

	payload := []byte(`{"id": "evt_1", "api_version": "2023-10-16", "type": "checkout.session.completed", "data": {"object": {}}}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	event, err := service.VerifyWebhook(signed.Payload, signed.Header)
	if err != nil {
		t.Fatalf("Expected valid signature to verify, got %v", err)
	}
	if event.Type != "checkout.session.completed" {
		t.Errorf("Expected event type checkout.session.completed, got %q", event.Type)
	}

	if _, err := service.VerifyWebhook(payload, "t=1,v1=bogus"); err == nil {
		t.Error("Expected invalid signature to be rejected")
	}
}

func TestVerifyWebhookFailsClosedWithoutSecret(t *testing.T) {
	service := newTestService(&testutil.MockDatabase{}, "")

	if _, err := service.VerifyWebhook([]byte(`{}`), "t=1,v1=sig"); err == nil {
		t.Error("Expected verification to fail when no secret is configured")
	}
}
