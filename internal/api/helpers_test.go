package api

import (
	"context"
	"io"
	"testing"
	"time"

	"pantry/internal/category"
	"pantry/internal/config"
	"pantry/internal/database"
	"pantry/internal/repository"
	"pantry/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type barcodeStub map[string]string

func (b barcodeStub) ResolveName(_ context.Context, code string) string {
	return b[code]
}

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func testDay(offset int) time.Time {
	return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func newTestService(t *testing.T) *service.ItemService {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry := category.NewRegistry(repository.NewMemorySettingsStore(), []string{"Dairy", "Bread"}, &logger)
	require.NoError(t, registry.Load(context.Background()))

	barcodes := barcodeStub{"4000417025005": "Sparkling Water"}
	return service.NewItemService(db, registry, barcodes, nil, config.PantryConfig{Timezone: "UTC"}, &logger)
}
