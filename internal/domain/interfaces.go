package domain

import (
	"context"
	"time"

	"pantry/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ItemRepository is the item store boundary.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ConsumeItem(ctx context.Context, id int64) (*models.Item, bool, error)
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetAllItems(ctx context.Context) ([]*models.Item, error)
	GetItemsByLocation(ctx context.Context, location string) ([]*models.Item, error)
	GetNameByBarcode(ctx context.Context, barcode string) (string, error)
	DeleteItemsByCategoryAndLocation(ctx context.Context, category, location string) (int64, error)
}

// SettingsStore is a string key-value store. Get reports ok=false for absent keys.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// NotificationSink delivers slot notifications. Notify is only called when Allowed is true.
type NotificationSink interface {
	Allowed(ctx context.Context) bool
	Notify(ctx context.Context, n models.Notification) error
}

// ProductLookup resolves a barcode to a product name from an external catalogue.
type ProductLookup interface {
	LookupName(ctx context.Context, barcode string) (string, error)
}

// BarcodeResolver never fails: an unknown barcode resolves to "".
type BarcodeResolver interface {
	ResolveName(ctx context.Context, barcode string) string
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// InventoryMirror receives full inventory snapshots.
type InventoryMirror interface {
	ReplaceInventory(ctx context.Context, items []*models.Item) error
}

type CategoryRegistry interface {
	Load(ctx context.Context) error
	Categories() []string
	Contains(name string) bool
	Reorder(ctx context.Context, from, to int) error
	SyncWithItems(ctx context.Context, items []*models.Item) error
	AddCategory(ctx context.Context, name string, color models.ARGB, icon *models.IconID) error
	UpdateColor(ctx context.Context, name string, color models.ARGB) error
	RemoveCategory(ctx context.Context, name string) error
	ColorOf(name string) models.ARGB
	IconOf(name string) models.IconID
}

// PantryService is what the bot and the API drive.
type PantryService interface {
	ListItems(ctx context.Context) ([]*models.Item, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	AddItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	Consume(ctx context.Context, id int64) (*models.Item, bool, error)
	Timeline(ctx context.Context) ([]*models.Item, error)
	Expiring(ctx context.Context, now time.Time) (dueToday, dueSoon []models.ExpiringEntry, err error)
	ResolveBarcode(ctx context.Context, barcode string) string

	CategorySummaries(ctx context.Context) ([]models.CategorySummary, error)
	AddCategory(ctx context.Context, name string, color models.ARGB, icon *models.IconID) error
	UpdateCategoryColor(ctx context.Context, name string, color models.ARGB) error
	MoveCategory(ctx context.Context, from, to int) error
	DeleteCategory(ctx context.Context, name string, cascade bool) (int64, error)
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendDocument(chatID int64, path, caption string) (tgbotapi.Message, error)
	DeleteMessage(chatID int64, messageID int) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}
