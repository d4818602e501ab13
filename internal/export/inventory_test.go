package export

import (
	"testing"
	"time"

	"pantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteInventory(t *testing.T) {
	dir := t.TempDir()
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	exp := today.AddDate(0, 0, 1)

	items := []*models.Item{
		{ID: 1, Name: "Milk", Category: "Dairy", Count: 2, ExpirationDate: &exp, StorageLocation: models.DefaultLocation},
		{ID: 2, Name: "Rice", Category: "Other", Count: 1, StorageLocation: models.DefaultLocation},
	}
	cats := []models.CategorySummary{{Name: "Dairy", Color: models.TileColorDairy, Icon: "egg", Count: 1}}

	path, err := WriteInventory(dir, items, cats, today)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetInventory, sheetCategories}, f.GetSheetList())

	rows, err := f.GetRows(sheetInventory)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, []string{"1", "Milk", "Dairy", "2", "2024-03-11", "tomorrow", "", "My Pantry"}, rows[1])
	assert.Equal(t, "no expiry", rows[2][5])

	color, err := f.GetCellValue(sheetCategories, "D2")
	require.NoError(t, err)
	assert.Equal(t, "#FFFFE0B2", color)
}
