package postgres

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pricing-chat/internal/logger"
)

// CreateOrder records a completed checkout. The unique constraint on
// stripe_session_id makes retried webhook deliveries no-ops: the return value
// reports whether a new row was actually inserted.
func (p *PostgresDB) CreateOrder(userID string, conversationID *string, stripeSessionID string, amountCents int64, status string) (bool, error) {
	orderID := uuid.New().String()

	query := `
	INSERT INTO orders (id, user_id, conversation_id, stripe_session_id, amount_cents, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (stripe_session_id) DO NOTHING
	`

	result, err := p.conn.Exec(query, orderID, userID, conversationID, stripeSessionID, amountCents, status)
	if err != nil {
		return false, fmt.Errorf("error creating order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error creating order: %w", err)
	}

	if rows == 0 {
		logger.Log.WithField("stripe_session_id", stripeSessionID).Info("Order already recorded, skipping")
		return false, nil
	}

	logger.Log.WithFields(logrus.Fields{
		"order_id":          orderID,
		"user_id":           userID,
		"stripe_session_id": stripeSessionID,
		"amount_cents":      amountCents,
	}).Info("Recorded order")

	return true, nil
}

// HasCompletedOrder reports whether the user has at least one completed order.
func (p *PostgresDB) HasCompletedOrder(userID string) (bool, error) {
	var orderID string
	query := `SELECT id FROM orders WHERE user_id = $1 AND status = 'completed' LIMIT 1`

	err := p.conn.QueryRow(query, userID).Scan(&orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("error querying orders: %w", err)
	}

	return true, nil
}
