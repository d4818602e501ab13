package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pantry/internal/database"
	"pantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) LookupName(ctx context.Context, barcode string) (string, error) {
	args := m.Called(ctx, barcode)
	return args.String(0), args.Error(1)
}

func TestBarcodeService_ResolveName(t *testing.T) {
	db, err := database.NewDB(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Home milk", Category: "Dairy", Count: 1, Barcode: "111"}))

	lookup := new(mockLookup)
	svc := NewBarcodeService(db, lookup, time.Minute, time.Second, nil)

	t.Run("LocalFirst", func(t *testing.T) {
		assert.Equal(t, "Home milk", svc.ResolveName(ctx, " 111 "))
		lookup.AssertNotCalled(t, "LookupName", mock.Anything, "111")
	})

	t.Run("ExternalThenCached", func(t *testing.T) {
		lookup.On("LookupName", mock.Anything, "222").Return("Oat Drink", nil).Once()

		assert.Equal(t, "Oat Drink", svc.ResolveName(ctx, "222"))
		assert.Equal(t, "Oat Drink", svc.ResolveName(ctx, "222"))
		lookup.AssertExpectations(t)
	})

	t.Run("FailureIsSilent", func(t *testing.T) {
		lookup.On("LookupName", mock.Anything, "333").Return("", errors.New("timeout")).Once()

		assert.Equal(t, "", svc.ResolveName(ctx, "333"))
		lookup.AssertExpectations(t)
	})

	t.Run("Blank", func(t *testing.T) {
		assert.Equal(t, "", svc.ResolveName(ctx, "  "))
	})
}

func TestBarcodeService_NoExternalLookup(t *testing.T) {
	db, err := database.NewDB(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	svc := NewBarcodeService(db, nil, 0, 0, nil)
	assert.Equal(t, "", svc.ResolveName(context.Background(), "999"))
}
