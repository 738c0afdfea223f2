package testutil

import (
	"context"
	"errors"

	"pricing-chat/internal/app"
	"pricing-chat/internal/config"
	"pricing-chat/internal/repository/db"
	"pricing-chat/internal/service/llm"
)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// User mocks
	CreateUserFunc        func(username, email, password string) (*db.User, error)
	GetUserByUsernameFunc func(username string) (*db.User, error)
	GetUserByIDFunc       func(id string) (*db.User, error)

	// Conversation mocks
	CreateConversationFunc     func(userID, title, model, systemPrompt string) (*db.Conversation, error)
	GetConversationFunc        func(id, userID string) (*db.Conversation, error)
	GetConversationsByUserFunc func(userID string, includeArchived bool) ([]db.Conversation, error)
	ArchiveConversationFunc    func(id, userID string) error
	DeleteConversationFunc     func(id, userID string) error
	MarkConversationPaidFunc   func(id, userID string) error
	SetConversationSessionFunc func(id, userID, sessionID string) error

	// Message mocks
	AddMessageFunc              func(conversationID, userID, role, content, model string, metadata db.Metadata) (*db.Message, error)
	GetConversationMessagesFunc func(conversationID string, limit int) ([]db.Message, error)

	// Pricing tier mocks
	GetActivePricingTiersFunc func() ([]db.PricingTier, error)
	GetPricingTierByNameFunc  func(tierName string) (*db.PricingTier, error)

	// API key mocks
	CreateAPIKeyFunc     func(userID, keyHash, keyPrefix, name string) (*db.APIKey, error)
	GetAPIKeysByUserFunc func(userID string) ([]db.APIKey, error)
	FindAPIKeyByHashFunc func(keyHash string) (*db.APIKey, error)
	TouchAPIKeyFunc      func(keyHash string) error
	DeleteAPIKeyFunc     func(id, userID string) (bool, error)

	// Order mocks
	CreateOrderFunc       func(userID string, conversationID *string, stripeSessionID string, amountCents int64, status string) (bool, error)
	HasCompletedOrderFunc func(userID string) (bool, error)
}

// User methods
func (m *MockDatabase) CreateUser(username, email, password string) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(username, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetUserByUsername(username string) (*db.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(username)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetUserByID(id string) (*db.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(id)
	}
	return nil, errors.New("not implemented")
}

// Conversation methods
func (m *MockDatabase) CreateConversation(userID, title, model, systemPrompt string) (*db.Conversation, error) {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(userID, title, model, systemPrompt)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversation(id, userID string) (*db.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(id, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationsByUser(userID string, includeArchived bool) ([]db.Conversation, error) {
	if m.GetConversationsByUserFunc != nil {
		return m.GetConversationsByUserFunc(userID, includeArchived)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) ArchiveConversation(id, userID string) error {
	if m.ArchiveConversationFunc != nil {
		return m.ArchiveConversationFunc(id, userID)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) DeleteConversation(id, userID string) error {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(id, userID)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) MarkConversationPaid(id, userID string) error {
	if m.MarkConversationPaidFunc != nil {
		return m.MarkConversationPaidFunc(id, userID)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) SetConversationSession(id, userID, sessionID string) error {
	if m.SetConversationSessionFunc != nil {
		return m.SetConversationSessionFunc(id, userID, sessionID)
	}
	return errors.New("not implemented")
}

// Message methods
func (m *MockDatabase) AddMessage(conversationID, userID, role, content, model string, metadata db.Metadata) (*db.Message, error) {
	if m.AddMessageFunc != nil {
		return m.AddMessageFunc(conversationID, userID, role, content, model, metadata)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetConversationMessages(conversationID string, limit int) ([]db.Message, error) {
	if m.GetConversationMessagesFunc != nil {
		return m.GetConversationMessagesFunc(conversationID, limit)
	}
	return nil, errors.New("not implemented")
}

// Pricing tier methods
func (m *MockDatabase) GetActivePricingTiers() ([]db.PricingTier, error) {
	if m.GetActivePricingTiersFunc != nil {
		return m.GetActivePricingTiersFunc()
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetPricingTierByName(tierName string) (*db.PricingTier, error) {
	if m.GetPricingTierByNameFunc != nil {
		return m.GetPricingTierByNameFunc(tierName)
	}
	return nil, errors.New("not implemented")
}

// API key methods
func (m *MockDatabase) CreateAPIKey(userID, keyHash, keyPrefix, name string) (*db.APIKey, error) {
	if m.CreateAPIKeyFunc != nil {
		return m.CreateAPIKeyFunc(userID, keyHash, keyPrefix, name)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) GetAPIKeysByUser(userID string) ([]db.APIKey, error) {
	if m.GetAPIKeysByUserFunc != nil {
		return m.GetAPIKeysByUserFunc(userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) FindAPIKeyByHash(keyHash string) (*db.APIKey, error) {
	if m.FindAPIKeyByHashFunc != nil {
		return m.FindAPIKeyByHashFunc(keyHash)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDatabase) TouchAPIKey(keyHash string) error {
	if m.TouchAPIKeyFunc != nil {
		return m.TouchAPIKeyFunc(keyHash)
	}
	return errors.New("not implemented")
}

func (m *MockDatabase) DeleteAPIKey(id, userID string) (bool, error) {
	if m.DeleteAPIKeyFunc != nil {
		return m.DeleteAPIKeyFunc(id, userID)
	}
	return false, errors.New("not implemented")
}

// Order methods
func (m *MockDatabase) CreateOrder(userID string, conversationID *string, stripeSessionID string, amountCents int64, status string) (bool, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(userID, conversationID, stripeSessionID, amountCents, status)
	}
	return false, errors.New("not implemented")
}

func (m *MockDatabase) HasCompletedOrder(userID string) (bool, error) {
	if m.HasCompletedOrderFunc != nil {
		return m.HasCompletedOrderFunc(userID)
	}
	return false, errors.New("not implemented")
}

func (m *MockDatabase) Close() error {
	return nil
}

// MockLLMProvider is a mock implementation of llm.Provider for testing
type MockLLMProvider struct {
	ChatWithHistoryFunc func(ctx context.Context, messages []llm.Message, systemPrompt, modelOverride string) (string, error)
	GetDefaultModelFunc func() string
}

func (m *MockLLMProvider) ChatWithHistory(ctx context.Context, messages []llm.Message, systemPrompt, modelOverride string) (string, error) {
	if m.ChatWithHistoryFunc != nil {
		return m.ChatWithHistoryFunc(ctx, messages, systemPrompt, modelOverride)
	}
	return "", errors.New("not implemented")
}

func (m *MockLLMProvider) GetDefaultModel() string {
	if m.GetDefaultModelFunc != nil {
		return m.GetDefaultModelFunc()
	}
	return "default-model"
}

// NewMockConfig creates a mock app.Config for testing
func NewMockConfig() *app.Config {
	return &app.Config{
		AppConfig: &config.Config{
			Env: "test",
			Server: config.ServerConfig{
				FrontendURL: "http://localhost:3000",
			},
			LLM: config.LLMConfig{
				APIKey:    "test-api-key",
				BaseURL:   "https://openrouter.ai/api/v1",
				MaxTokens: 800,
			},
			Models: &config.ModelsConfig{},
		},
	}
}
