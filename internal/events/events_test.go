package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(nil)

	var received *Event
	var callCount int

	bus.Subscribe(func(event *Event) error {
		received = event
		callCount++
		return nil
	}, EventItemCreated)

	err := bus.PublishJSON(EventItemCreated, ItemEventPayload{ItemID: 7, Name: "Milk", Category: "Dairy", Count: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, EventItemCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded ItemEventPayload
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, int64(7), decoded.ItemID)
	assert.Equal(t, "Milk", decoded.Name)
}

func TestEventBusMultipleTypesAndSubscribers(t *testing.T) {
	bus := NewEventBus(nil)
	var inventory, deletes int

	bus.Subscribe(func(_ *Event) error { inventory++; return nil }, InventoryEvents...)
	bus.Subscribe(func(_ *Event) error { deletes++; return errors.New("ignored") }, EventItemDeleted)

	for _, typ := range InventoryEvents {
		require.NoError(t, bus.PublishJSON(typ, map[string]string{}))
	}
	require.NoError(t, bus.PublishJSON("unrelated", nil))

	assert.Equal(t, len(InventoryEvents), inventory)
	assert.Equal(t, 1, deletes)
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventItemDeleted, nil))
}

func TestPublishJSONMarshalError(t *testing.T) {
	bus := NewEventBus(nil)
	assert.Error(t, bus.PublishJSON(EventItemCreated, make(chan int)))
}
