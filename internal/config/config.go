package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"pantry/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Backup        BackupConfig        `yaml:"backup"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
	API           APIConfig           `yaml:"api"`
	Pantry        PantryConfig        `yaml:"pantry"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Barcode       BarcodeConfig       `yaml:"barcode"`
	Exports       ExportConfig        `yaml:"exports"`
	Google        GoogleConfig        `yaml:"google"`
	Bot           BotConfig           `yaml:"bot"`
}

type PantryConfig struct {
	Location          string        `yaml:"location"`
	Timezone          string        `yaml:"timezone"`
	CheckInterval     time.Duration `yaml:"check_interval"`
	DefaultCategories []string      `yaml:"default_categories"`
}

// Loc resolves the configured timezone, falling back to time.Local.
func (p PantryConfig) Loc() *time.Location {
	if strings.TrimSpace(p.Timezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type NotificationsConfig struct {
	Enabled bool    `yaml:"enabled"`
	ChatIDs []int64 `yaml:"chat_ids"`
}

type BarcodeConfig struct {
	OpenFoodFactsURL string        `yaml:"openfoodfacts_url"`
	Timeout          time.Duration `yaml:"timeout"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	Disabled         bool          `yaml:"disabled"`
}

type BotConfig struct {
	RateLimitMessages int `yaml:"rate_limit_messages"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken     string  `yaml:"bot_token"`
	Debug        bool    `yaml:"debug"`
	AllowedUsers []int64 `yaml:"allowed_users"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Prefix   string `yaml:"prefix"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	InventorySpreadsheet string `yaml:"inventory_spreadsheet_id"`
	InventorySheet       string `yaml:"inventory_sheet"`
}

// Enabled reports whether the Sheets mirror is configured.
func (g GoogleConfig) Enabled() bool {
	return g.CredentialsFile != "" && g.InventorySpreadsheet != ""
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	config := Config{Notifications: NotificationsConfig{Enabled: true}}
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token placeholder must be replaced")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Pantry.CheckInterval < time.Minute {
		return fmt.Errorf("pantry.check_interval %s is too short", c.Pantry.CheckInterval)
	}

	if c.Google.InventorySpreadsheet != "" && c.Google.CredentialsFile == "" {
		return errors.New("google.credentials_file is required for the inventory spreadsheet")
	}

	return ValidateCategories(c.Pantry.DefaultCategories)
}

// ValidateCategories rejects blank and duplicate category names.
func ValidateCategories(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return errors.New("category name must not be blank")
		}
		if seen[name] {
			return fmt.Errorf("duplicate category found: %s", name)
		}
		seen[name] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}

	if c.Pantry.Location == "" {
		c.Pantry.Location = models.DefaultLocation
	}
	if c.Pantry.CheckInterval == 0 {
		c.Pantry.CheckInterval = models.ExpirationCheckHours * time.Hour
	}
	if len(c.Pantry.DefaultCategories) == 0 {
		c.Pantry.DefaultCategories = append([]string(nil), models.DefaultCategories...)
	}

	if c.Barcode.Timeout == 0 {
		c.Barcode.Timeout = 12 * time.Second
	}
	if c.Barcode.CacheTTL == 0 {
		c.Barcode.CacheTTL = time.Duration(models.BarcodeCacheTTL) * time.Second
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Google.InventorySheet == "" {
		c.Google.InventorySheet = "Inventory"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "pantry:"
	}

	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
}
