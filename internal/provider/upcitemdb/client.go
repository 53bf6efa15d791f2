// Package upcitemdb looks up packaged products the Open Food Facts
// catalog does not know.
package upcitemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
	"github.com/GokhanOfficial/CaloriX/internal/provider/openfoodfacts"
)

const defaultBaseURL = "https://api.upcitemdb.com"

// Client uses the free trial endpoint unless APIKey is set.
type Client struct {
	BaseURL    string
	APIKey     string
	APIKeyType string
	HTTPClient *http.Client
}

// LookupBarcode returns the product with nutrition converted to per 100 g.
// Items without calories or a gram/ml serving size are reported as
// openfoodfacts.ErrNoProduct.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, error) {
	barcode = strings.TrimSpace(barcode)
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	path := "/prod/trial/lookup"
	if strings.TrimSpace(c.APIKey) != "" {
		path = "/prod/v1/lookup"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s?upc=%s", base, path, url.QueryEscape(barcode)), nil)
	if err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("create upcitemdb request: %w", err)
	}
	if key := strings.TrimSpace(c.APIKey); key != "" {
		keyType := strings.TrimSpace(c.APIKeyType)
		if keyType == "" {
			keyType = "3scale"
		}
		req.Header.Set("key_type", keyType)
		req.Header.Set("user_key", key)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("execute upcitemdb request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("read upcitemdb response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return openfoodfacts.Product{}, fmt.Errorf("barcode %q: %w", barcode, openfoodfacts.ErrNoProduct)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return openfoodfacts.Product{}, fmt.Errorf("upcitemdb request failed with status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return openfoodfacts.Product{}, fmt.Errorf("decode upcitemdb response: %w", err)
	}
	if strings.ToUpper(parsed.Code) != "OK" || len(parsed.Items) == 0 {
		return openfoodfacts.Product{}, fmt.Errorf("barcode %q: %w", barcode, openfoodfacts.ErrNoProduct)
	}
	it := parsed.Items[0]
	amount, ok := parseServingGrams(it.Size)
	calories := parseNutrient(it.NutritionFacts, "calories")
	if strings.TrimSpace(it.Title) == "" || !ok || calories <= 0 {
		return openfoodfacts.Product{}, fmt.Errorf("barcode %q has no usable nutrition: %w", barcode, openfoodfacts.ErrNoProduct)
	}

	per := func(v float64) float64 { return nutrition.Round1(v / amount * 100) }
	n := model.Nutrition{
		Kcal:     nutrition.Round(calories / amount * 100),
		ProteinG: per(parseNutrient(it.NutritionFacts, "protein")),
		CarbsG:   per(parseNutrient(it.NutritionFacts, "carbohydrate")),
		FatG:     per(parseNutrient(it.NutritionFacts, "total fat")),
	}
	if v := parseNutrient(it.NutritionFacts, "fiber"); v > 0 {
		f := per(v)
		n.FiberG = &f
	}
	if v := parseNutrient(it.NutritionFacts, "sugar"); v > 0 {
		s := per(v)
		n.SugarG = &s
	}
	if v := parseNutrient(it.NutritionFacts, "sodium"); v > 0 {
		// Listed in mg; salt is 2.5x sodium.
		salt := nutrition.Round1(v * 2.5 / 1000 / amount * 100)
		n.SaltG = &salt
	}
	return openfoodfacts.Product{
		Barcode:            barcode,
		Name:               strings.TrimSpace(it.Title),
		Brand:              strings.TrimSpace(it.Brand),
		ServingSizeG:       &amount,
		ServingDescription: strings.TrimSpace(it.Size),
		Nutrition:          n,
	}, nil
}

// parseServingGrams reads sizes like "40 g" or "330 ml".
func parseServingGrams(size string) (float64, bool) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(size)))
	if len(parts) < 2 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Trim(parts[0], ","), 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	switch strings.TrimSuffix(parts[1], ".") {
	case "g", "gr", "gram", "grams", "ml":
		return f, true
	default:
		return 0, false
	}
}

func parseNutrient(n map[string]any, keyContains string) float64 {
	for k, v := range n {
		if strings.Contains(strings.ToLower(k), keyContains) {
			s := fmt.Sprintf("%v", v)
			var filtered strings.Builder
			for _, r := range s {
				if (r >= '0' && r <= '9') || r == '.' {
					filtered.WriteRune(r)
				}
			}
			if f, err := strconv.ParseFloat(filtered.String(), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

type response struct {
	Code  string `json:"code"`
	Items []item `json:"items"`
}

type item struct {
	Title          string         `json:"title"`
	Brand          string         `json:"brand"`
	Size           string         `json:"size"`
	NutritionFacts map[string]any `json:"nutrition_facts"`
}
