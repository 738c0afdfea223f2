package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricing-chat/internal/auth"
	"pricing-chat/internal/repository/db"
	"pricing-chat/internal/testutil"
)

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	claims := &auth.Claims{UserID: "user-1", Username: "testuser"}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestChatHandlerRequiresAuth(t *testing.T) {
	cfg := testutil.NewMockConfig()
	cfg.DB = &testutil.MockDatabase{}
	handlers := NewChatHandlers(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	handlers.ChatHandler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Success {
		t.Error("Expected success=false in error response")
	}
}

func TestChatHandlerRejectsEmptyMessage(t *testing.T) {
	cfg := testutil.NewMockConfig()
	cfg.DB = &testutil.MockDatabase{}
	handlers := NewChatHandlers(cfg)

	req := authedRequest(http.MethodPost, "/api/chat", `{"message":""}`)
	rec := httptest.NewRecorder()
	handlers.ChatHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestChatHandlerRejectsMalformedConversationID(t *testing.T) {
	cfg := testutil.NewMockConfig()
	cfg.DB = &testutil.MockDatabase{}
	handlers := NewChatHandlers(cfg)

	req := authedRequest(http.MethodPost, "/api/chat", `{"message":"hi","conversation_id":"nope"}`)
	rec := httptest.NewRecorder()
	handlers.ChatHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetConversationsHandler(t *testing.T) {
	cfg := testutil.NewMockConfig()
	cfg.DB = &testutil.MockDatabase{
		GetConversationsByUserFunc: func(userID string, includeArchived bool) ([]db.Conversation, error) {
			return []db.Conversation{{ID: "conv-1", UserID: userID, Title: "New Conversation"}}, nil
		},
	}
	handlers := NewChatHandlers(cfg)

	req := authedRequest(http.MethodGet, "/api/conversations", "")
	rec := httptest.NewRecorder()
	handlers.GetConversationsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Conversations []struct {
				ID string `json:"id"`
			} `json:"conversations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success=true")
	}
	if len(resp.Data.Conversations) != 1 || resp.Data.Conversations[0].ID != "conv-1" {
		t.Errorf("Unexpected conversations payload: %+v", resp.Data.Conversations)
	}
}

func TestServerErrorDetailHiddenInProduction(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		wantDetail bool
	}{
		{"test env exposes detail", "test", true},
		{"production hides detail", "production", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.NewMockConfig()
			cfg.AppConfig.Env = tt.env
			cfg.DB = &testutil.MockDatabase{
				GetConversationsByUserFunc: func(userID string, includeArchived bool) ([]db.Conversation, error) {
					return nil, errors.New("pq: relation does not exist")
				},
			}
			handlers := NewChatHandlers(cfg)

			req := authedRequest(http.MethodGet, "/api/conversations", "")
			rec := httptest.NewRecorder()
			handlers.GetConversationsHandler(rec, req)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("Expected status 500, got %d", rec.Code)
			}
			resp := decodeError(t, rec)
			if resp.Error != "Error retrieving conversations" {
				t.Errorf("Unexpected error message: %q", resp.Error)
			}
			if tt.wantDetail && !strings.Contains(resp.Detail, "relation does not exist") {
				t.Errorf("Expected underlying error in detail, got %q", resp.Detail)
			}
			if !tt.wantDetail && resp.Detail != "" {
				t.Errorf("Expected no detail in production, got %q", resp.Detail)
			}
		})
	}
}

func TestDeleteConversationNotFound(t *testing.T) {
	cfg := testutil.NewMockConfig()
	cfg.DB = &testutil.MockDatabase{
		DeleteConversationFunc: func(id, userID string) error {
			return errors.New("conversation not found")
		},
	}
	handlers := NewChatHandlers(cfg)

	req := authedRequest(http.MethodDelete, "/api/conversations/missing", "")
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	handlers.DeleteConversationHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	handlers := NewHealthHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handlers.HealthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

type failingPinger struct{}

func (failingPinger) Ping() error { return errors.New("connection refused") }

func TestReadinessHandlerUnavailable(t *testing.T) {
	handlers := NewHealthHandlers(failingPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	handlers.ReadinessHandler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}
