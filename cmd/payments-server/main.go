package main

import (
	"net/http"

	"github.com/rs/cors"

	"pricing-chat/internal/api/handlers"
	"pricing-chat/internal/app"
	"pricing-chat/internal/auth"
	"pricing-chat/internal/config"
	"pricing-chat/internal/logger"
	"pricing-chat/internal/repository/postgres"
)

func main() {
	appConfig, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}
	if err := appConfig.ValidatePayments(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	database, err := postgres.NewPostgresDB(appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	cfg := app.NewConfig(database, appConfig)

	authManager := auth.NewManager(appConfig.Auth)
	paymentHandlers := handlers.NewPaymentHandlers(cfg)
	healthHandlers := handlers.NewHealthHandlers(database)

	mux := http.NewServeMux()

	// The webhook authenticates via the Stripe signature, not a bearer token.
	mux.HandleFunc("POST /api/webhooks/stripe", paymentHandlers.StripeWebhookHandler)
	mux.HandleFunc("GET /api/health", healthHandlers.HealthHandler)
	mux.HandleFunc("GET /health", healthHandlers.HealthHandler)
	mux.HandleFunc("GET /health/live", healthHandlers.LivenessHandler)
	mux.HandleFunc("GET /health/ready", healthHandlers.ReadinessHandler)

	// Protected routes
	mux.HandleFunc("POST /api/payments/link", authManager.Middleware(paymentHandlers.PaymentLinkHandler))
	mux.HandleFunc("GET /api/api-keys", authManager.Middleware(paymentHandlers.ListAPIKeysHandler))
	mux.HandleFunc("DELETE /api/api-keys/{id}", authManager.Middleware(paymentHandlers.DeleteAPIKeyHandler))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   appConfig.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
	})

	addr := ":" + appConfig.Server.PaymentsPort
	logger.Log.WithField("addr", addr).Info("Payments server starting")

	if err := http.ListenAndServe(addr, corsMiddleware.Handler(mux)); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
