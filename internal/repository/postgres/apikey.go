package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pricing-chat/internal/logger"
	"pricing-chat/internal/repository/db"
)

// CreateAPIKey stores a new credential. Only the hash and display prefix are
// persisted; the raw secret never reaches this layer.
func (p *PostgresDB) CreateAPIKey(userID, keyHash, keyPrefix, name string) (*db.APIKey, error) {
	keyID := uuid.New().String()
	var createdAt time.Time

	query := `
	INSERT INTO api_keys (id, user_id, key_hash, key_prefix, name)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`

	err := p.conn.QueryRow(query, keyID, userID, keyHash, keyPrefix, name).Scan(&keyID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("error creating api key: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"user_id": userID, "key_prefix": keyPrefix}).Info("Created API key")

	return &db.APIKey{
		ID:        keyID,
		UserID:    userID,
		KeyHash:   keyHash,
		KeyPrefix: keyPrefix,
		Name:      name,
		CreatedAt: createdAt,
	}, nil
}

// GetAPIKeysByUser retrieves a user's keys, newest first.
func (p *PostgresDB) GetAPIKeysByUser(userID string) ([]db.APIKey, error) {
	query := `
	SELECT id, user_id, key_hash, key_prefix, COALESCE(name, ''), last_used_at, created_at
	FROM api_keys
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := p.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying api keys: %w", err)
	}
	defer rows.Close()

	var keys []db.APIKey
	for rows.Next() {
		var key db.APIKey
		if err := rows.Scan(&key.ID, &key.UserID, &key.KeyHash, &key.KeyPrefix, &key.Name, &key.LastUsedAt, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning api key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// FindAPIKeyByHash looks up a key by its hash. A missing key yields
// (nil, nil): presenting an unknown credential is a normal outcome.
func (p *PostgresDB) FindAPIKeyByHash(keyHash string) (*db.APIKey, error) {
	var key db.APIKey
	query := `
	SELECT id, user_id, key_hash, key_prefix, COALESCE(name, ''), last_used_at, created_at
	FROM api_keys
	WHERE key_hash = $1
	`

	err := p.conn.QueryRow(query, keyHash).Scan(&key.ID, &key.UserID, &key.KeyHash, &key.KeyPrefix, &key.Name, &key.LastUsedAt, &key.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving api key: %w", err)
	}

	return &key, nil
}

// TouchAPIKey updates the last-used timestamp for a key.
func (p *PostgresDB) TouchAPIKey(keyHash string) error {
	query := `UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE key_hash = $1`
	if _, err := p.conn.Exec(query, keyHash); err != nil {
		return fmt.Errorf("error updating api key usage: %w", err)
	}
	return nil
}

// DeleteAPIKey removes a key owned by the given user. Returns false when no
// matching key exists.
func (p *PostgresDB) DeleteAPIKey(id, userID string) (bool, error) {
	query := `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`
	result, err := p.conn.Exec(query, id, userID)
	if err != nil {
		return false, fmt.Errorf("error deleting api key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error deleting api key: %w", err)
	}
	return rows > 0, nil
}
