// Package payment creates Stripe checkout sessions and processes webhook
// events, minting API credentials when a purchase completes.
package payment

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"pricing-chat/internal/config"
	"pricing-chat/internal/logger"
	"pricing-chat/internal/repository/db"
	"pricing-chat/internal/service/apikey"
)

const checkoutCurrency = "usd"

// CheckoutLink is the result of creating a checkout session.
type CheckoutLink struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Service drives the purchase flow.
type Service struct {
	db          db.Database
	stripeCfg   config.StripeConfig
	frontendURL string
	keys        *apikey.Service
}

// NewService creates a payment service and configures the Stripe client key.
func NewService(database db.Database, stripeCfg config.StripeConfig, frontendURL string) *Service {
	stripe.Key = stripeCfg.SecretKey

	return &Service{
		db:          database,
		stripeCfg:   stripeCfg,
		frontendURL: frontendURL,
		keys:        apikey.NewService(database),
	}
}

// CreateCheckoutLink creates a Stripe checkout session for the given tier
// and records the session on the conversation when one is supplied.
func (s *Service) CreateCheckoutLink(userID, tierName, conversationID string) (*CheckoutLink, error) {
	tier, err := s.db.GetPricingTierByName(tierName)
	if err != nil {
		return nil, fmt.Errorf("unknown pricing tier %q: %w", tierName, err)
	}
	if tier.PriceMonthlyCents <= 0 {
		return nil, fmt.Errorf("tier %q has no purchasable price", tierName)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.frontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.frontendURL + "/checkout/cancel"),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{s.lineItem(tier)},
	}
	if user, err := s.db.GetUserByID(userID); err == nil && user.Email != "" {
		params.CustomerEmail = stripe.String(user.Email)
	}
	params.AddMetadata("user_id", userID)
	if conversationID != "" {
		params.AddMetadata("conversation_id", conversationID)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("error creating checkout session: %w", err)
	}

	if conversationID != "" {
		if err := s.db.SetConversationSession(conversationID, userID, sess.ID); err != nil {
			logger.Log.WithError(err).WithField("conversation_id", conversationID).Warn("Failed to record checkout session on conversation")
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"tier":       tierName,
		"session_id": sess.ID,
	}).Info("Created checkout session")

	return &CheckoutLink{SessionID: sess.ID, URL: sess.URL}, nil
}

// lineItem builds the checkout line item. A preconfigured Stripe price wins
// over ad hoc price data.
func (s *Service) lineItem(tier *db.PricingTier) *stripe.CheckoutSessionLineItemParams {
	if s.stripeCfg.PriceID != "" {
		return &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(s.stripeCfg.PriceID),
			Quantity: stripe.Int64(1),
		}
	}

	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(checkoutCurrency),
			UnitAmount: stripe.Int64(tier.PriceMonthlyCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(tier.DisplayName + " plan"),
			},
		},
		Quantity: stripe.Int64(1),
	}
}

// VerifyWebhook checks the Stripe signature on a raw webhook payload. It
// fails closed when no webhook secret is configured.
func (s *Service) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	if s.stripeCfg.WebhookSecret == "" {
		return stripe.Event{}, fmt.Errorf("webhook secret not configured")
	}
	return webhook.ConstructEvent(payload, signatureHeader, s.stripeCfg.WebhookSecret)
}

// HandleEvent dispatches a verified webhook event. Unrecognized event types
// are acknowledged without action so Stripe does not retry them.
func (s *Service) HandleEvent(event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(event)
	default:
		logger.Log.WithField("event_type", event.Type).Debug("Ignoring webhook event")
		return nil
	}
}

// handleCheckoutCompleted records the order and mints an API key. Stripe
// retries deliveries, so the order insert is the idempotency gate: a
// duplicate session mints nothing.
func (s *Service) handleCheckoutCompleted(event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("error parsing checkout session: %w", err)
	}

	userID := sess.Metadata["user_id"]
	if userID == "" {
		return fmt.Errorf("checkout session %s has no user_id metadata", sess.ID)
	}

	var conversationID *string
	if cid := sess.Metadata["conversation_id"]; cid != "" {
		conversationID = &cid
	}

	created, err := s.db.CreateOrder(userID, conversationID, sess.ID, sess.AmountTotal, "completed")
	if err != nil {
		return fmt.Errorf("error recording order: %w", err)
	}
	if !created {
		logger.Log.WithField("session_id", sess.ID).Info("Duplicate webhook delivery, order already recorded")
		return nil
	}

	if conversationID != nil {
		if err := s.db.MarkConversationPaid(*conversationID, userID); err != nil {
			logger.Log.WithError(err).WithField("conversation_id", *conversationID).Warn("Failed to mark conversation paid")
		}
	}

	issued, err := s.keys.Issue(userID, "Purchased key")
	if err != nil {
		return fmt.Errorf("error issuing API key: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": sess.ID,
		"key_prefix": issued.Key.KeyPrefix,
	}).Info("Checkout completed, API key issued")

	return nil
}
