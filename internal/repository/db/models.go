package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata is a free-form JSON object column.
type Metadata map[string]interface{}

// Value implements driver.Valuer for JSONB columns.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB columns.
func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported metadata source type %T", src)
	}
	return json.Unmarshal(data, m)
}

// StringList is a JSON array of strings column.
type StringList []string

// Value implements driver.Valuer for JSONB columns.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB columns.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported string list source type %T", src)
	}
	return json.Unmarshal(data, l)
}

// User represents an account in the database.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Conversation represents a conversation in the database.
type Conversation struct {
	ID              string
	UserID          string
	Title           string
	Model           string
	SystemPrompt    string
	PaymentStatus   string
	StripeSessionID *string
	IsArchived      bool
	IsDeleted       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Message represents a message in a conversation. Messages are append-only;
// created_at ordering defines the turn sequence fed back to the LLM.
type Message struct {
	ID             string
	ConversationID string
	UserID         string
	Role           string
	Content        string
	Model          string
	Metadata       Metadata
	CreatedAt      time.Time
}

// PricingTier is read-only reference data describing a purchasable plan.
// Limits is an open attribute map; requests_per_month of -1 means unlimited.
type PricingTier struct {
	ID                string
	TierName          string
	DisplayName       string
	Description       string
	PriceMonthlyCents int64
	PriceYearlyCents  *int64
	Features          StringList
	Limits            Metadata
	IsActive          bool
	CreatedAt         time.Time
}

// APIKey holds the hash and display prefix of an issued credential. The raw
// secret is never persisted.
type APIKey struct {
	ID         string
	UserID     string
	KeyHash    string
	KeyPrefix  string
	Name       string
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Order records a completed checkout. StripeSessionID is unique and acts as
// the webhook idempotency key.
type Order struct {
	ID              string
	UserID          string
	ConversationID  *string
	StripeSessionID string
	AmountCents     int64
	Status          string
	CreatedAt       time.Time
}
