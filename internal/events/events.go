package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventItemCreated     = "item_created"
	EventItemUpdated     = "item_updated"
	EventItemConsumed    = "item_consumed"
	EventItemDeleted     = "item_deleted"
	EventCategoryDeleted = "category_deleted"
)

// InventoryEvents lists every event that changes the set of stored items.
var InventoryEvents = []string{
	EventItemCreated,
	EventItemUpdated,
	EventItemConsumed,
	EventItemDeleted,
	EventCategoryDeleted,
}

// ItemEventPayload is the item snapshot carried by item events.
type ItemEventPayload struct {
	ItemID         int64      `json:"item_id"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Count          int64      `json:"count"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	Removed        bool       `json:"removed,omitempty"`
}

// CategoryEventPayload is carried by EventCategoryDeleted.
type CategoryEventPayload struct {
	Name         string `json:"name"`
	ItemsRemoved int64  `json:"items_removed"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors are logged to logger when set.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for the given event types.
func (b *EventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
