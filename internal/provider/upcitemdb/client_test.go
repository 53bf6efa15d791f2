package upcitemdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GokhanOfficial/CaloriX/internal/provider/openfoodfacts"
)

func TestLookupBarcodeConvertsServingToPer100(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prod/trial/lookup" || r.URL.Query().Get("upc") != "123456789012" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "code": "OK",
  "items": [
    {
      "title": "Test Cereal",
      "brand": "Test Brand",
      "size": "40 g",
      "nutrition_facts": {
        "Calories": "150",
        "Protein": "3g",
        "Total Carbohydrate": "30g",
        "Total Fat": "2g",
        "Dietary Fiber": "5g",
        "Total Sugars": "8g",
        "Sodium": "120mg"
      }
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	p, err := c.LookupBarcode(context.Background(), "123456789012")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	n := p.Nutrition
	if p.Name != "Test Cereal" || p.Brand != "Test Brand" || p.Barcode != "123456789012" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if n.Kcal != 375 || n.ProteinG != 7.5 || n.CarbsG != 75 || n.FatG != 5 {
		t.Fatalf("unexpected per-100 nutrition: %+v", n)
	}
	if n.FiberG == nil || *n.FiberG != 12.5 || n.SugarG == nil || *n.SugarG != 20 || n.SaltG == nil || *n.SaltG != 0.8 {
		t.Fatalf("unexpected optional nutrients: %+v", n)
	}
	if p.ServingSizeG == nil || *p.ServingSizeG != 40 {
		t.Fatalf("expected 40 g serving, got %v", p.ServingSizeG)
	}
}

func TestLookupBarcodeWithoutUsableNutrition(t *testing.T) {
	t.Parallel()
	for name, body := range map[string]string{
		"no items":   `{"code":"OK","items":[]}`,
		"count size": `{"code":"OK","items":[{"title":"Gum","size":"12 ct","nutrition_facts":{"Calories":"5"}}]}`,
		"no energy":  `{"code":"OK","items":[{"title":"Water","size":"500 ml","nutrition_facts":{}}]}`,
	} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
		_, err := c.LookupBarcode(context.Background(), "12345678")
		ts.Close()
		if !errors.Is(err, openfoodfacts.ErrNoProduct) {
			t.Fatalf("%s: expected ErrNoProduct, got %v", name, err)
		}
	}
}

func TestLookupBarcodeSendsKeyHeaders(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prod/v1/lookup" || r.Header.Get("user_key") != "secret" || r.Header.Get("key_type") != "3scale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, APIKey: "secret", HTTPClient: ts.Client()}
	if _, err := c.LookupBarcode(context.Background(), "12345678"); !errors.Is(err, openfoodfacts.ErrNoProduct) {
		t.Fatalf("expected not found with key headers, got %v", err)
	}
}
