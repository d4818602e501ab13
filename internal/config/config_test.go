package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pantry/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "${PANTRY_TEST_TOKEN}"
database:
  path: "test.db"
pantry:
  location: "Kitchen"
  timezone: "Europe/Warsaw"
  default_categories: ["Dairy", "Snacks"]
notifications:
  chat_ids: [42]
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	t.Setenv("PANTRY_TEST_TOKEN", "test_token")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "test_token" {
		t.Errorf("expected bot_token test_token, got %s", cfg.Telegram.BotToken)
	}
	if cfg.Pantry.Location != "Kitchen" {
		t.Errorf("expected location Kitchen, got %s", cfg.Pantry.Location)
	}
	if len(cfg.Pantry.DefaultCategories) != 2 {
		t.Errorf("expected 2 default categories, got %d", len(cfg.Pantry.DefaultCategories))
	}
	if !cfg.Notifications.Enabled {
		t.Errorf("expected notifications enabled by default")
	}
	if cfg.Pantry.Loc().String() != "Europe/Warsaw" {
		t.Errorf("expected Europe/Warsaw location, got %s", cfg.Pantry.Loc())
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Pantry:   PantryConfig{CheckInterval: time.Hour, DefaultCategories: []string{"A"}},
			},
			wantErr: false,
		},
		{
			name: "placeholder token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "YOUR_BOT_TOKEN_HERE"},
				Database: DatabaseConfig{Path: "path"},
				Pantry:   PantryConfig{CheckInterval: time.Hour},
			},
			wantErr: true,
		},
		{
			name: "missing database",
			cfg: Config{
				Pantry: PantryConfig{CheckInterval: time.Hour},
			},
			wantErr: true,
		},
		{
			name: "duplicate default category",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Pantry:   PantryConfig{CheckInterval: time.Hour, DefaultCategories: []string{"A", "A"}},
			},
			wantErr: true,
		},
		{
			name: "spreadsheet without credentials",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Pantry:   PantryConfig{CheckInterval: time.Hour},
				Google:   GoogleConfig{InventorySpreadsheet: "sheet"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Pantry.CheckInterval != 24*time.Hour {
		t.Errorf("expected default check interval 24h, got %s", cfg.Pantry.CheckInterval)
	}
	if cfg.Pantry.Location != models.DefaultLocation {
		t.Errorf("expected default location %q, got %q", models.DefaultLocation, cfg.Pantry.Location)
	}
	if len(cfg.Pantry.DefaultCategories) != len(models.DefaultCategories) {
		t.Errorf("expected %d default categories, got %d", len(models.DefaultCategories), len(cfg.Pantry.DefaultCategories))
	}
	if cfg.API.GRPC.Port != 8081 {
		t.Errorf("expected default gRPC port 8081, got %d", cfg.API.GRPC.Port)
	}
	if cfg.Bot.RateLimitMessages != models.RateLimitMessages {
		t.Errorf("expected default rate limit messages %d, got %d", models.RateLimitMessages, cfg.Bot.RateLimitMessages)
	}
}

func TestValidateCategories(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantErr bool
	}{
		{name: "Valid", names: []string{"Dairy", "Meat"}, wantErr: false},
		{name: "Duplicate", names: []string{"Dairy", "Dairy"}, wantErr: true},
		{name: "Blank", names: []string{"  "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategories(tt.names)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCategories() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
