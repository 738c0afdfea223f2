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
	if err := appConfig.ValidateChat(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	database, err := postgres.NewPostgresDB(appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	cfg := app.NewConfig(database, appConfig)

	authManager := auth.NewManager(appConfig.Auth)
	authHandlers := auth.NewHandlers(database, authManager)
	chatHandlers := handlers.NewChatHandlers(cfg)
	healthHandlers := handlers.NewHealthHandlers(database)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/register", authHandlers.RegisterHandler)
	mux.HandleFunc("POST /api/login", authHandlers.LoginHandler)
	mux.HandleFunc("GET /api/models", chatHandlers.GetModelsHandler)
	mux.HandleFunc("GET /health", healthHandlers.HealthHandler)
	mux.HandleFunc("GET /health/live", healthHandlers.LivenessHandler)
	mux.HandleFunc("GET /health/ready", healthHandlers.ReadinessHandler)

	// Protected routes (Go 1.22+ method and path parameter routing)
	mux.HandleFunc("POST /api/chat", authManager.Middleware(chatHandlers.ChatHandler))
	mux.HandleFunc("GET /api/conversations", authManager.Middleware(chatHandlers.GetConversationsHandler))
	mux.HandleFunc("GET /api/conversations/{id}/messages", authManager.Middleware(chatHandlers.GetConversationMessagesHandler))
	mux.HandleFunc("POST /api/conversations/{id}/archive", authManager.Middleware(chatHandlers.ArchiveConversationHandler))
	mux.HandleFunc("DELETE /api/conversations/{id}", authManager.Middleware(chatHandlers.DeleteConversationHandler))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   appConfig.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	addr := ":" + appConfig.Server.ChatPort
	logger.Log.WithField("addr", addr).Info("Chat server starting")

	if err := http.ListenAndServe(addr, corsMiddleware.Handler(mux)); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
