package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockServer(ctx context.Context, t *testing.T) (*http.ServeMux, *InventorySheets) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	s := newInventorySheets(srv, "sid", "Inventory", time.UTC)
	s.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) }
	return mux, s
}

func TestInventorySheets_TestConnection(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/sid/values/Inventory!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	assert.NoError(t, s.TestConnection(ctx))
}

func TestInventorySheets_ReplaceInventory(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)

	var cleared bool
	var written sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/sid/values/Inventory!A:H:clear", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		_ = json.NewEncoder(w).Encode(sheets.ClearValuesResponse{})
	})
	mux.HandleFunc("/v4/spreadsheets/sid/values/Inventory!A1:H3", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &written)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	exp := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	items := []*models.Item{
		{ID: 1, Name: "Milk", Category: "Dairy", Count: 1, ExpirationDate: &exp},
		{ID: 2, Name: "Rice", Category: "Other", Count: 3},
	}
	require.NoError(t, s.ReplaceInventory(ctx, items))

	assert.True(t, cleared)
	require.Len(t, written.Values, 3)
	assert.Equal(t, "Milk", written.Values[1][1])
	assert.Equal(t, "2024-03-09", written.Values[1][4])
	assert.Equal(t, "expired", written.Values[1][5])
	assert.Equal(t, "no expiry", written.Values[2][5])
}

func TestServiceAccountEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email":"bot@project.iam.gserviceaccount.com"}`), 0o600))

	email, err := ServiceAccountEmail(path)
	require.NoError(t, err)
	assert.Equal(t, "bot@project.iam.gserviceaccount.com", email)

	_, err = ServiceAccountEmail(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
