package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewModelsConfig_ValidConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "models.json")

	validJSON := `[
		{
			"id": "anthropic/claude-3.5-sonnet",
			"name": "Claude 3.5 Sonnet",
			"provider": "Anthropic"
		},
		{
			"id": "openai/gpt-4o-mini",
			"name": "GPT-4o Mini",
			"provider": "OpenAI"
		}
	]`

	err := os.WriteFile(configPath, []byte(validJSON), 0644)
	if err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config, err := NewModelsConfig(configPath)
	if err != nil {
		t.Errorf("NewModelsConfig() error = %v, want nil", err)
		return
	}

	models := config.GetAvailableModels()
	if len(models) != 2 {
		t.Errorf("GetAvailableModels() returned %d models, want 2", len(models))
	}

	if !config.IsValidModel("openai/gpt-4o-mini") {
		t.Error("IsValidModel() = false for a configured model")
	}
	if config.IsValidModel("unknown/model") {
		t.Error("IsValidModel() = true for an unconfigured model")
	}

	if got := config.GetDefaultModel(); got != "anthropic/claude-3.5-sonnet" {
		t.Errorf("GetDefaultModel() = %q, want first configured model", got)
	}
}

func TestNewModelsConfig_FileNotFound(t *testing.T) {
	config, err := NewModelsConfig("/nonexistent/path/models.json")
	if err == nil {
		t.Error("NewModelsConfig() error = nil, want error for nonexistent file")
	}

	if config != nil {
		t.Error("NewModelsConfig() returned non-nil config for nonexistent file")
	}
}

func TestNewModelsConfig_InvalidJSON(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.json")

	invalidJSON := `{ this is not valid json }`

	err := os.WriteFile(configPath, []byte(invalidJSON), 0644)
	if err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config, err := NewModelsConfig(configPath)
	if err == nil {
		t.Error("NewModelsConfig() error = nil, want error for invalid JSON")
	}

	if config != nil {
		t.Error("NewModelsConfig() returned non-nil config for invalid JSON")
	}
}

func TestModelsConfig_EmptyList(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "empty.json")

	if err := os.WriteFile(configPath, []byte(`[]`), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config, err := NewModelsConfig(configPath)
	if err != nil {
		t.Fatalf("NewModelsConfig() error = %v, want nil", err)
	}

	if config.GetDefaultModel() == "" {
		t.Error("GetDefaultModel() returned empty string, want fallback model")
	}
}
