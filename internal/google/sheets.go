package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pantry/internal/expiry"
	"pantry/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var inventoryHeaders = []interface{}{"ID", "Name", "Category", "Count", "Expires", "Status", "Barcode", "Updated"}

// InventorySheets mirrors the inventory into one sheet of a spreadsheet.
type InventorySheets struct {
	service       *sheets.Service
	spreadsheetID string
	sheet         string
	loc           *time.Location
	now           func() time.Time
}

func NewInventorySheets(ctx context.Context, credentialsFile, spreadsheetID, sheet string, loc *time.Location) (*InventorySheets, error) {
	// Service account credentials.
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newInventorySheets(srv, spreadsheetID, sheet, loc), nil
}

func newInventorySheets(srv *sheets.Service, spreadsheetID, sheet string, loc *time.Location) *InventorySheets {
	if sheet == "" {
		sheet = "Inventory"
	}
	if loc == nil {
		loc = time.Local
	}
	return &InventorySheets{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		loc:           loc,
		now:           time.Now,
	}
}

// TestConnection checks that the spreadsheet is reachable.
func (s *InventorySheets) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail returns the address the spreadsheet must be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// ReplaceInventory clears the sheet and writes the full item list.
func (s *InventorySheets) ReplaceInventory(ctx context.Context, items []*models.Item) error {
	clearRange := s.sheet + "!A:H"
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear inventory sheet: %w", err)
	}

	values := s.rows(items)
	rangeData := fmt.Sprintf("%s!A1:H%d", s.sheet, len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write inventory sheet: %w", err)
	}
	return nil
}

func (s *InventorySheets) rows(items []*models.Item) [][]interface{} {
	today := expiry.Normalize(s.now().In(s.loc))
	values := make([][]interface{}, 0, len(items)+1)
	values = append(values, inventoryHeaders)
	for _, item := range items {
		expires := ""
		if item.HasExpiration() {
			expires = item.ExpirationDate.In(s.loc).Format("2006-01-02")
		}
		values = append(values, []interface{}{
			item.ID,
			item.Name,
			item.Category,
			item.Count,
			expires,
			expiry.StatusOf(item, today).Label,
			item.Barcode,
			item.UpdatedAt.In(s.loc).Format("2006-01-02 15:04:05"),
		})
	}
	return values
}
