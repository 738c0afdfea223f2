package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration for both servers.
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Models   *ModelsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	ChatPort     string
	PaymentsPort string
	CORSOrigins  []string
	FrontendURL  string
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret       []byte
	TokenExpiration time.Duration
}

// StripeConfig holds payment provider configuration.
type StripeConfig struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	// Fallback price when a checkout is requested without a tier.
	PriceID string
}

// Load reads configuration from the process environment. Values that are
// service-specific are validated later by ValidateChat/ValidatePayments so
// each binary only hard-fails on what it actually needs.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CHAT_PORT", "8080")
	v.SetDefault("PAYMENTS_PORT", "8081")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("DB_HOST", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pricingchat")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MIGRATIONS_PATH", "migrations")
	v.SetDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("LLM_MAX_TOKENS", 800)
	v.SetDefault("JWT_TOKEN_EXPIRATION", "24h")
	v.SetDefault("MODELS_CONFIG_PATH", filepath.Join("config", "models.json"))

	v.AutomaticEnv()

	config := &Config{
		Env: v.GetString("APP_ENV"),
		Server: ServerConfig{
			ChatPort:     v.GetString("CHAT_PORT"),
			PaymentsPort: v.GetString("PAYMENTS_PORT"),
			CORSOrigins:  splitOrigins(v.GetString("CORS_ORIGINS")),
			FrontendURL:  v.GetString("FRONTEND_URL"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MigrationsPath: v.GetString("DB_MIGRATIONS_PATH"),
		},
		LLM: LLMConfig{
			APIKey:    v.GetString("LLM_API_KEY"),
			BaseURL:   v.GetString("LLM_BASE_URL"),
			MaxTokens: v.GetInt("LLM_MAX_TOKENS"),
		},
		Stripe: StripeConfig{
			SecretKey:      v.GetString("STRIPE_SECRET_KEY"),
			PublishableKey: v.GetString("STRIPE_PUBLISHABLE_KEY"),
			WebhookSecret:  v.GetString("STRIPE_WEBHOOK_SECRET"),
			PriceID:        v.GetString("STRIPE_PRICE_ID"),
		},
	}

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters (current length: %d)", len(jwtSecret))
	}

	expiration, err := time.ParseDuration(v.GetString("JWT_TOKEN_EXPIRATION"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TOKEN_EXPIRATION: %w", err)
	}

	config.Auth = AuthConfig{
		JWTSecret:       []byte(jwtSecret),
		TokenExpiration: expiration,
	}

	modelsConfig, err := NewModelsConfig(v.GetString("MODELS_CONFIG_PATH"))
	if err != nil {
		return nil, fmt.Errorf("failed to load models config: %w", err)
	}
	config.Models = modelsConfig

	return config, nil
}

// ValidateChat checks the values the chat server cannot run without.
func (c *Config) ValidateChat() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY environment variable must be set")
	}
	return nil
}

// ValidatePayments checks the values the payments server cannot run without.
func (c *Config) ValidatePayments() error {
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY environment variable must be set")
	}
	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET environment variable must be set")
	}
	return nil
}

// IsProduction reports whether generic error messages should be returned to
// clients instead of upstream detail.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetDSN returns the database connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
