package openfoodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupBarcodeParsesPer100Nutrition(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/product/8690504000016.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "code": "8690504000016",
    "product_name": "Ayran",
    "brands": "Sütaş, Other",
    "serving_quantity": 200,
    "serving_quantity_unit": "ml",
    "serving_size": "200 ml",
    "nova_group": 1,
    "nutriscore_grade": "b",
    "nutriments": {
      "energy-kcal_100g": 36,
      "energy-kcal_serving": 72,
      "proteins_100g": 1.7,
      "carbohydrates_100g": "2.5",
      "fat_100g": 2,
      "salt_100g": 0.6
    }
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	p, err := c.LookupBarcode(context.Background(), "8690504000016")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if p.Name != "Ayran" || p.Brand != "Sütaş" || p.Nutrition.Kcal != 36 || p.Nutrition.CarbsG != 2.5 {
		t.Fatalf("unexpected parsed product: %+v", p)
	}
	if p.ServingSizeG == nil || *p.ServingSizeG != 200 {
		t.Fatalf("expected 200 ml serving, got %v", p.ServingSizeG)
	}
	if p.Nutrition.NovaScore == nil || *p.Nutrition.NovaScore != 1 || p.Nutrition.NutriScore != "B" {
		t.Fatalf("unexpected scores: %+v", p.Nutrition)
	}
	if p.Nutrition.SaltG == nil || p.Nutrition.SugarG != nil {
		t.Fatalf("expected only reported extended fields, got %+v", p.Nutrition)
	}
	food := p.Food("u1")
	if food.Source != "barcode" || food.CreatedBy != "u1" || food.Nutrition == nil {
		t.Fatalf("unexpected catalog food: %+v", food)
	}
}

func TestLookupBarcodeUnknownProduct(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.LookupBarcode(context.Background(), "0000000000000"); !errors.Is(err, ErrNoProduct) {
		t.Fatalf("expected ErrNoProduct, got %v", err)
	}
}

func TestSearchFoodsSkipsUnnamedProducts(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_terms") != "simit" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"products": [
  {"product_name": "Simit", "nutriments": {"energy_100g": 1150}},
  {"product_name": "  "}
]}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.SearchFoods(context.Background(), "simit", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || int(got[0].Nutrition.Kcal) != 274 {
		t.Fatalf("unexpected results: %+v", got)
	}
}
