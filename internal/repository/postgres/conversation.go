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

// CreateConversation creates a new conversation for a user
func (p *PostgresDB) CreateConversation(userID, title, model, systemPrompt string) (*db.Conversation, error) {
	convID := uuid.New().String()
	var createdAt, updatedAt time.Time

	if title == "" {
		title = "New Conversation"
	}

	query := `
	INSERT INTO conversations (id, user_id, title, model, system_prompt)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`

	err := p.conn.QueryRow(query, convID, userID, title, model, systemPrompt).Scan(&convID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"conversation_id": convID, "user_id": userID, "model": model}).Info("Created new conversation")

	return &db.Conversation{
		ID:            convID,
		UserID:        userID,
		Title:         title,
		Model:         model,
		SystemPrompt:  systemPrompt,
		PaymentStatus: "unpaid",
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

// GetConversation retrieves a conversation owned by the given user. Deleted
// conversations are treated as absent.
func (p *PostgresDB) GetConversation(id, userID string) (*db.Conversation, error) {
	var conv db.Conversation
	query := `
	SELECT id, user_id, title, COALESCE(model, ''), COALESCE(system_prompt, ''),
	       payment_status, stripe_session_id, is_archived, is_deleted, created_at, updated_at
	FROM conversations
	WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE
	`

	err := p.conn.QueryRow(query, id, userID).Scan(
		&conv.ID, &conv.UserID, &conv.Title, &conv.Model, &conv.SystemPrompt,
		&conv.PaymentStatus, &conv.StripeSessionID, &conv.IsArchived, &conv.IsDeleted,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation not found")
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}

	return &conv, nil
}

// GetConversationsByUser retrieves a user's conversations, newest activity first.
func (p *PostgresDB) GetConversationsByUser(userID string, includeArchived bool) ([]db.Conversation, error) {
	query := `
	SELECT id, user_id, title, COALESCE(model, ''), COALESCE(system_prompt, ''),
	       payment_status, stripe_session_id, is_archived, is_deleted, created_at, updated_at
	FROM conversations
	WHERE user_id = $1 AND is_deleted = FALSE AND (is_archived = FALSE OR $2)
	ORDER BY updated_at DESC
	`

	rows, err := p.conn.Query(query, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []db.Conversation
	for rows.Next() {
		var conv db.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.UserID, &conv.Title, &conv.Model, &conv.SystemPrompt,
			&conv.PaymentStatus, &conv.StripeSessionID, &conv.IsArchived, &conv.IsDeleted,
			&conv.CreatedAt, &conv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

// ArchiveConversation marks a conversation as archived
func (p *PostgresDB) ArchiveConversation(id, userID string) error {
	query := `UPDATE conversations SET is_archived = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE`
	result, err := p.conn.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("error archiving conversation: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("conversation not found")
	}

	logger.Log.WithField("conversation_id", id).Info("Archived conversation")
	return nil
}

// DeleteConversation soft-deletes a conversation. Its messages are kept.
func (p *PostgresDB) DeleteConversation(id, userID string) error {
	query := `UPDATE conversations SET is_deleted = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND user_id = $2 AND is_deleted = FALSE`
	result, err := p.conn.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting conversation: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("conversation not found")
	}

	logger.Log.WithField("conversation_id", id).Info("Deleted conversation")
	return nil
}

// MarkConversationPaid records a completed payment against a conversation.
func (p *PostgresDB) MarkConversationPaid(id, userID string) error {
	query := `UPDATE conversations SET payment_status = 'paid', updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND user_id = $2`
	if _, err := p.conn.Exec(query, id, userID); err != nil {
		return fmt.Errorf("error marking conversation paid: %w", err)
	}
	return nil
}

// SetConversationSession stores the checkout session id on a conversation.
func (p *PostgresDB) SetConversationSession(id, userID, sessionID string) error {
	query := `UPDATE conversations SET stripe_session_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 AND user_id = $3`
	if _, err := p.conn.Exec(query, sessionID, id, userID); err != nil {
		return fmt.Errorf("error storing checkout session: %w", err)
	}
	return nil
}

// AddMessage appends a message to a conversation
func (p *PostgresDB) AddMessage(conversationID, userID, role, content, model string, metadata db.Metadata) (*db.Message, error) {
	msgID := uuid.New().String()
	var createdAt time.Time

	if metadata == nil {
		metadata = db.Metadata{}
	}

	query := `
	INSERT INTO messages (id, conversation_id, user_id, role, content, model, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at
	`

	err := p.conn.QueryRow(query, msgID, conversationID, userID, role, content, model, metadata).Scan(&msgID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("error adding message: %w", err)
	}

	// Bump conversation activity timestamp; a failure here only affects list ordering.
	updateQuery := `UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := p.conn.Exec(updateQuery, conversationID); err != nil {
		logger.Log.WithError(err).Warn("Error updating conversation timestamp")
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"role":            role,
		"content_chars":   len(content),
	}).Debug("Added message to conversation")

	return &db.Message{
		ID:             msgID,
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		Model:          model,
		Metadata:       metadata,
		CreatedAt:      createdAt,
	}, nil
}

// GetConversationMessages retrieves messages in turn order (oldest first).
// A positive limit keeps only the most recent messages; the window always
// ends at the newest turn so replayed history never has a gap before the
// current message. seq breaks created_at ties in insertion order.
func (p *PostgresDB) GetConversationMessages(conversationID string, limit int) ([]db.Message, error) {
	query := `
	SELECT id, conversation_id, user_id, role, content, COALESCE(model, ''), metadata, created_at
	FROM messages
	WHERE conversation_id = $1
	ORDER BY created_at ASC, seq ASC
	`
	args := []interface{}{conversationID}
	if limit > 0 {
		query = `
		SELECT id, conversation_id, user_id, role, content, model, metadata, created_at
		FROM (
			SELECT id, conversation_id, user_id, role, content, COALESCE(model, '') AS model, metadata, created_at, seq
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, seq ASC
		`
		args = append(args, limit)
	}

	rows, err := p.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []db.Message
	for rows.Next() {
		var msg db.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.UserID, &msg.Role, &msg.Content, &msg.Model, &msg.Metadata, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
