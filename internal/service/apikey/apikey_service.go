// Package apikey issues and validates API credentials minted after purchase.
package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"pricing-chat/internal/repository/db"
)

// Prefix marks every issued key so raw keys are recognizable in configs.
const Prefix = "sk_"

const rawKeyBytes = 32

// displayPrefixLen is how much of the raw key is stored for display.
const displayPrefixLen = 20

// IssuedKey carries the raw secret exactly once, at issuance. Only the
// hash is persisted.
type IssuedKey struct {
	Raw string
	Key *db.APIKey
}

// Service manages API key lifecycle.
type Service struct {
	db db.Database
}

// NewService creates an API key service.
func NewService(database db.Database) *Service {
	return &Service{db: database}
}

// HashKey returns the hex sha256 digest of a raw key.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// generateRawKey produces a new random key string.
func generateRawKey() (string, error) {
	buf := make([]byte, rawKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return Prefix + hex.EncodeToString(buf), nil
}

// Issue mints a new API key for the user. The raw secret is returned only
// here and never stored.
func (s *Service) Issue(userID, name string) (*IssuedKey, error) {
	raw, err := generateRawKey()
	if err != nil {
		return nil, err
	}

	key, err := s.db.CreateAPIKey(userID, HashKey(raw), raw[:displayPrefixLen], name)
	if err != nil {
		return nil, fmt.Errorf("failed to store API key: %w", err)
	}

	return &IssuedKey{Raw: raw, Key: key}, nil
}

// Validate looks up a raw key by its hash. A miss returns (nil, nil);
// on a hit the key's last-used timestamp is updated.
func (s *Service) Validate(raw string) (*db.APIKey, error) {
	key, err := s.db.FindAPIKeyByHash(HashKey(raw))
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, nil
	}

	if err := s.db.TouchAPIKey(key.KeyHash); err != nil {
		return nil, err
	}

	return key, nil
}

// List returns the user's keys. Raw secrets are not recoverable.
func (s *Service) List(userID string) ([]db.APIKey, error) {
	return s.db.GetAPIKeysByUser(userID)
}

// Delete revokes a key owned by the user. Returns false when the key does
// not exist or belongs to someone else.
func (s *Service) Delete(keyID, userID string) (bool, error) {
	return s.db.DeleteAPIKey(keyID, userID)
}
