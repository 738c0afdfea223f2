package app

import (
	"pricing-chat/internal/config"
	"pricing-chat/internal/repository/db"
)

// Config holds all application dependencies and configuration.
type Config struct {
	// Database interface for data persistence
	DB db.Database
	// Centralized application configuration
	AppConfig *config.Config
}

// NewConfig creates a new application configuration.
func NewConfig(database db.Database, appConfig *config.Config) *Config {
	return &Config{
		DB:        database,
		AppConfig: appConfig,
	}
}

// ModelsConfig returns the LLM model allowlist.
func (c *Config) ModelsConfig() *config.ModelsConfig {
	return c.AppConfig.Models
}
