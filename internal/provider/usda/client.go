// Package usda looks up branded foods in USDA FoodData Central by GTIN.
package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
	"github.com/GokhanOfficial/CaloriX/internal/provider/openfoodfacts"
)

const defaultBaseURL = "https://api.nal.usda.gov"

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// LookupBarcode finds the branded food whose GTIN matches barcode. Branded
// search results carry nutrients per 100 g.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return openfoodfacts.Product{}, fmt.Errorf("missing USDA API key")
	}
	barcode = strings.TrimSpace(barcode)
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	payload, err := json.Marshal(map[string]any{
		"query":    barcode,
		"dataType": []string{"Branded"},
		"pageSize": 20,
	})
	if err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("marshal USDA search payload: %w", err)
	}
	u := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return openfoodfacts.Product{}, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("decode USDA response: %w", err)
	}
	food, ok := selectBarcodeMatch(parsed.Foods, barcode)
	if !ok {
		return openfoodfacts.Product{}, fmt.Errorf("barcode %q: %w", barcode, openfoodfacts.ErrNoProduct)
	}
	return toProduct(food, barcode), nil
}

func toProduct(food usdaFood, barcode string) openfoodfacts.Product {
	var n model.Nutrition
	optional := func(v float64) *float64 {
		r := nutrition.Round1(v)
		return &r
	}
	for _, fn := range food.FoodNutrients {
		switch strings.ToLower(strings.TrimSpace(fn.NutrientName)) {
		case "energy":
			if strings.EqualFold(fn.UnitName, "kj") {
				n.Kcal = nutrition.Round(fn.Value / 4.184)
			} else {
				n.Kcal = nutrition.Round(fn.Value)
			}
		case "protein":
			n.ProteinG = nutrition.Round1(fn.Value)
		case "carbohydrate, by difference":
			n.CarbsG = nutrition.Round1(fn.Value)
		case "total lipid (fat)":
			n.FatG = nutrition.Round1(fn.Value)
		case "fatty acids, total saturated":
			n.SaturatedFatG = optional(fn.Value)
		case "fatty acids, total trans":
			n.TransFatG = optional(fn.Value)
		case "fiber, total dietary":
			n.FiberG = optional(fn.Value)
		case "sugars, total including nlea", "sugars, total", "total sugars":
			n.SugarG = optional(fn.Value)
		case "sodium, na":
			n.SaltG = optional(fn.Value * 2.5 / 1000)
		}
	}
	p := openfoodfacts.Product{
		Barcode:   barcode,
		Name:      strings.TrimSpace(food.Description),
		Brand:     strings.TrimSpace(food.BrandOwner),
		Nutrition: n,
	}
	if unit := strings.ToLower(strings.TrimSpace(food.ServingSizeUnit)); food.ServingSize > 0 && (unit == "g" || unit == "ml" || unit == "grm" || unit == "mlt") {
		size := food.ServingSize
		p.ServingSizeG = &size
		p.ServingDescription = strings.TrimSpace(food.HouseholdServing)
	}
	return p
}

// selectBarcodeMatch accepts only an exact GTIN match, ignoring leading
// zeros, so a text hit on the digits is never mistaken for the product.
func selectBarcodeMatch(foods []usdaFood, barcode string) (usdaFood, bool) {
	want := strings.TrimLeft(barcode, "0")
	for _, f := range foods {
		if strings.TrimLeft(strings.TrimSpace(f.GTINUPC), "0") == want && strings.TrimSpace(f.Description) != "" {
			return f, true
		}
	}
	return usdaFood{}, false
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID            int64          `json:"fdcId"`
	Description      string         `json:"description"`
	BrandOwner       string         `json:"brandOwner"`
	GTINUPC          string         `json:"gtinUpc"`
	ServingSize      float64        `json:"servingSize"`
	ServingSizeUnit  string         `json:"servingSizeUnit"`
	HouseholdServing string         `json:"householdServingFullText"`
	FoodNutrients    []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}
