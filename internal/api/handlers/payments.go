package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"pricing-chat/internal/app"
	"pricing-chat/internal/auth"
	"pricing-chat/internal/logger"
	apikeyService "pricing-chat/internal/service/apikey"
	paymentService "pricing-chat/internal/service/payment"
	"pricing-chat/pkg/validation"
)

// maxWebhookBody bounds the raw webhook payload read from Stripe.
const maxWebhookBody = 1 << 16

type CheckoutLinkData struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type APIKeyData struct {
	ID         string `json:"id"`
	KeyPrefix  string `json:"key_prefix"`
	Name       string `json:"name"`
	LastUsedAt string `json:"last_used_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// PaymentHandlers serves checkout links, the Stripe webhook, and key
// management for paying users.
type PaymentHandlers struct {
	config         *app.Config
	validator      *validation.ChatRequestValidator
	paymentService *paymentService.Service
	keyService     *apikeyService.Service
}

// NewPaymentHandlers creates payment handlers from the app config.
func NewPaymentHandlers(config *app.Config) *PaymentHandlers {
	return &PaymentHandlers{
		config:         config,
		validator:      validation.NewChatRequestValidator(),
		paymentService: paymentService.NewService(config.DB, config.AppConfig.Stripe, config.AppConfig.Server.FrontendURL),
		keyService:     apikeyService.NewService(config.DB),
	}
}

// PaymentLinkHandler creates a Stripe checkout session for a pricing tier
func (ph *PaymentHandlers) PaymentLinkHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ph.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	tierName := r.URL.Query().Get("tier")
	if err := ph.validator.ValidateTierName(tierName); err != nil {
		ph.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	conversationID := r.URL.Query().Get("conversation_id")
	if err := ph.validator.ValidateConversationID(conversationID); err != nil {
		ph.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := ph.paymentService.CreateCheckoutLink(claims.UserID, tierName, conversationID)
	if err != nil {
		logger.Log.WithError(err).WithField("tier", tierName).Error("Error creating checkout link")
		switch {
		case strings.Contains(err.Error(), "unknown pricing tier"):
			ph.sendError(w, http.StatusNotFound, "Unknown pricing tier")
		case strings.Contains(err.Error(), "no purchasable price"):
			ph.sendError(w, http.StatusBadRequest, "Tier cannot be purchased")
		default:
			ph.sendServerError(w, "Error creating checkout link", err)
		}
		return
	}

	ph.sendSuccess(w, http.StatusOK, CheckoutLinkData{
		SessionID: link.SessionID,
		URL:       link.URL,
	})
}

// StripeWebhookHandler receives Stripe events. The body is read raw because
// signature verification covers the exact bytes Stripe sent.
func (ph *PaymentHandlers) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.Log.WithError(err).Error("Error reading webhook body")
		ph.sendError(w, http.StatusBadRequest, "Error reading request body")
		return
	}

	event, err := ph.paymentService.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Log.WithError(err).Warn("Webhook signature verification failed")
		ph.sendError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	if err := ph.paymentService.HandleEvent(event); err != nil {
		logger.Log.WithError(err).WithField("event_type", event.Type).Error("Error handling webhook event")
		ph.sendServerError(w, "Error handling event", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

// ListAPIKeysHandler returns the user's API keys. Access requires at least
// one completed purchase.
func (ph *PaymentHandlers) ListAPIKeysHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ph.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	paid, err := ph.config.DB.HasCompletedOrder(claims.UserID)
	if err != nil {
		logger.Log.WithError(err).Error("Error checking purchase history")
		ph.sendServerError(w, "Error retrieving API keys", err)
		return
	}
	if !paid {
		ph.sendError(w, http.StatusForbidden, "A completed purchase is required")
		return
	}

	keys, err := ph.keyService.List(claims.UserID)
	if err != nil {
		logger.Log.WithError(err).Error("Error listing API keys")
		ph.sendServerError(w, "Error retrieving API keys", err)
		return
	}

	result := make([]APIKeyData, 0, len(keys))
	for _, key := range keys {
		data := APIKeyData{
			ID:        key.ID,
			KeyPrefix: key.KeyPrefix,
			Name:      key.Name,
			CreatedAt: key.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if key.LastUsedAt != nil {
			data.LastUsedAt = key.LastUsedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		result = append(result, data)
	}

	ph.sendSuccess(w, http.StatusOK, map[string]interface{}{
		"api_keys": result,
	})
}

// DeleteAPIKeyHandler revokes one of the user's API keys
func (ph *PaymentHandlers) DeleteAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		ph.sendError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	keyID := r.PathValue("id")

	deleted, err := ph.keyService.Delete(keyID, claims.UserID)
	if err != nil {
		logger.Log.WithError(err).Error("Error deleting API key")
		ph.sendServerError(w, "Error deleting API key", err)
		return
	}
	if !deleted {
		ph.sendError(w, http.StatusNotFound, "API key not found")
		return
	}

	logger.Log.WithFields(logrus.Fields{"username": claims.Username, "key_id": keyID}).Info("API key deleted")

	ph.sendSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "API key deleted successfully",
	})
}

// sendSuccess sends a standardized JSON success envelope
func (ph *PaymentHandlers) sendSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SuccessResponse{Success: true, Data: data})
}

// sendError sends a standardized JSON error response
func (ph *PaymentHandlers) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: message})
}

// sendServerError sends a 500 with a generic message; the underlying error
// is attached as detail outside production.
func (ph *PaymentHandlers) sendServerError(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Success: false, Error: message}
	if err != nil && !ph.config.AppConfig.IsProduction() {
		resp.Detail = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(resp)
}
