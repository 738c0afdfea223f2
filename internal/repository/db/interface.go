package db

// Database defines the interface for data persistence operations.
type Database interface {
	// User operations
	CreateUser(username, email, password string) (*User, error)
	GetUserByUsername(username string) (*User, error)
	GetUserByID(id string) (*User, error)

	// Conversation operations
	CreateConversation(userID, title, model, systemPrompt string) (*Conversation, error)
	GetConversation(id, userID string) (*Conversation, error)
	GetConversationsByUser(userID string, includeArchived bool) ([]Conversation, error)
	ArchiveConversation(id, userID string) error
	DeleteConversation(id, userID string) error
	MarkConversationPaid(id, userID string) error
	SetConversationSession(id, userID, sessionID string) error

	// Message operations. GetConversationMessages returns messages oldest
	// first; a positive limit keeps only the most recent ones.
	AddMessage(conversationID, userID, role, content, model string, metadata Metadata) (*Message, error)
	GetConversationMessages(conversationID string, limit int) ([]Message, error)

	// Pricing tier operations
	GetActivePricingTiers() ([]PricingTier, error)
	GetPricingTierByName(tierName string) (*PricingTier, error)

	// API key operations
	CreateAPIKey(userID, keyHash, keyPrefix, name string) (*APIKey, error)
	GetAPIKeysByUser(userID string) ([]APIKey, error)
	FindAPIKeyByHash(keyHash string) (*APIKey, error)
	TouchAPIKey(keyHash string) error
	DeleteAPIKey(id, userID string) (bool, error)

	// Order operations
	CreateOrder(userID string, conversationID *string, stripeSessionID string, amountCents int64, status string) (bool, error)
	HasCompletedOrder(userID string) (bool, error)

	// Close closes the underlying connection
	Close() error
}
