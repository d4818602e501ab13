package models

const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// Notification slots. A notification sent to a slot replaces the previous one.
const (
	SlotDueToday = 1
	SlotDueSoon  = 2
)

const (
	TitleDueToday = "eat this today"
	TitleDueSoon  = "expiring soon"
)

// Notification is what the expiration job hands to a sink.
type Notification struct {
	Slot  int
	Title string
	Body  string
}

// Settings keys.
const (
	KeyCategoriesOrder      = "categories_order_list"
	KeyCategoryAttributes   = "category_attributes"
	KeyNotificationsEnabled = "notifications_enabled"
	KeyNotifyChats          = "notify_chats"
	KeyNotifyMuted          = "notify_muted_chats"
	KeyNotifySlotPrefix     = "notify_slot_"
	KeyJobLastRunPrefix     = "job_last_run_"

	// Legacy per-category keys, imported once into KeyCategoryAttributes.
	LegacyColorPrefix = "color_"
	LegacyIconPrefix  = "icon_idx_"
)

const (
	// DefaultLocation is the storage location every item is filed under.
	DefaultLocation = "My Pantry"

	// ExpirationJobName identifies the periodic expiration check.
	ExpirationJobName = "ExpirationCheck"

	// ExpirationCheckHours is the period of the expiration check.
	ExpirationCheckHours = 24

	// SoonWindowDays is the furthest day difference reported as "soon".
	SoonWindowDays = 2

	// DefaultStateTTL is the lifetime of service keys in Redis.
	DefaultStateTTL = 24 * 60 * 60

	// RateLimitMessages is the number of messages allowed per window.
	RateLimitMessages = 20

	// RateLimitWindow is the message rate limit window.
	RateLimitWindow = 60

	// BarcodeCacheTTL is the in-memory barcode cache lifetime.
	BarcodeCacheTTL = 30 * 60
)
