package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupBarcodeParsesResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/5900000000000.json", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "product_name": " Oat Drink ",
    "brands": "Brand Co",
    "quantity": "1 l"
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	p, err := c.LookupBarcode(context.Background(), "5900000000000")
	require.NoError(t, err)
	assert.Equal(t, "Oat Drink", p.Name)
	assert.Equal(t, "Brand Co", p.Brand)
	assert.Equal(t, "1 l", p.Quantity)

	name, err := c.LookupName(context.Background(), "5900000000000")
	require.NoError(t, err)
	assert.Equal(t, "Oat Drink", name)
}

func TestLookupBarcodeNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.LookupBarcode(context.Background(), "000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.LookupBarcode(context.Background(), " ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupBarcodeServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.LookupBarcode(context.Background(), "123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
