// Package export writes the inventory to XLSX workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pantry/internal/expiry"
	"pantry/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	sheetInventory  = "Inventory"
	sheetCategories = "Categories"
)

var severityFill = map[expiry.Severity]string{
	expiry.SeverityExpired: "#F8CBAD",
	expiry.SeverityWarning: "#FFE699",
	expiry.SeverityFresh:   "#E2EFDA",
}

// WriteInventory saves items and category tiles to a new workbook in dir
// and returns its path. today decides the status column.
func WriteInventory(dir string, items []*models.Item, categories []models.CategorySummary, today time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetInventory)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeItems(f, items, today); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(sheetCategories); err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	if err := writeCategories(f, categories); err != nil {
		return "", err
	}

	_ = f.DeleteSheet("Sheet1")

	path := filepath.Join(dir, fmt.Sprintf("pantry_%s.xlsx", today.Format("2006-01-02")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func writeItems(f *excelize.File, items []*models.Item, today time.Time) error {
	headers := []interface{}{"ID", "Name", "Category", "Count", "Expires", "Status", "Barcode", "Location"}
	if err := f.SetSheetRow(sheetInventory, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	header, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetInventory, "A1", "H1", header)

	styles := make(map[expiry.Severity]int)
	for sev, color := range severityFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[sev] = id
		}
	}

	for i, item := range items {
		row := i + 2
		status := expiry.StatusOf(item, today)
		expires := ""
		if item.HasExpiration() {
			expires = item.ExpirationDate.In(today.Location()).Format("2006-01-02")
		}
		values := []interface{}{item.ID, item.Name, item.Category, item.Count, expires, status.Label, item.Barcode, item.StorageLocation}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetInventory, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if id, ok := styles[status.Severity]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(6, row)
			_ = f.SetCellStyle(sheetInventory, statusCell, statusCell, id)
		}
	}

	_ = f.SetColWidth(sheetInventory, "B", "C", 25)
	_ = f.SetColWidth(sheetInventory, "E", "H", 15)
	return nil
}

func writeCategories(f *excelize.File, categories []models.CategorySummary) error {
	headers := []interface{}{"Category", "Items", "Icon", "Color"}
	if err := f.SetSheetRow(sheetCategories, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range categories {
		row := i + 2
		values := []interface{}{c.Name, c.Count, c.Icon, c.Color.Hex()}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetCategories, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{c.Color.RGBHex()}, Pattern: 1},
		})
		if err == nil {
			_ = f.SetCellStyle(sheetCategories, cell, cell, style)
		}
	}

	_ = f.SetColWidth(sheetCategories, "A", "A", 25)
	return nil
}
