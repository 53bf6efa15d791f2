package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
)

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	userAgent      = "calorix/1.0 (+https://github.com/GokhanOfficial/CaloriX)"
)

// ErrNoProduct means the service answered but knows no usable product.
var ErrNoProduct = errors.New("no openfoodfacts product")

// Product is a catalog candidate with nutrition per 100 g or 100 ml.
type Product struct {
	Barcode            string
	Name               string
	Brand              string
	ServingSizeG       *float64
	ServingDescription string
	Nutrition          model.Nutrition
}

// Food converts p into an unsaved catalog row.
func (p Product) Food(createdBy string) model.Food {
	n := p.Nutrition
	return model.Food{
		Name:               p.Name,
		Brand:              p.Brand,
		Barcode:            p.Barcode,
		ServingSizeG:       p.ServingSizeG,
		ServingDescription: p.ServingDescription,
		Source:             model.SourceBarcode,
		CreatedBy:          createdBy,
		Nutrition:          &n,
	}
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: 12 * time.Second}
	}
	return c.HTTPClient
}

func (c *Client) get(ctx context.Context, u, what string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts %s request: %w", what, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts %s request: %w", what, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts %s response: %w", what, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return body, ErrNoProduct
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("openfoodfacts %s request failed with status %d", what, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	body, err := c.get(ctx, fmt.Sprintf("%s/api/v2/product/%s.json", c.base(), url.PathEscape(barcode)), "barcode")
	if err != nil {
		if errors.Is(err, ErrNoProduct) {
			return Product{}, fmt.Errorf("barcode %q: %w", barcode, ErrNoProduct)
		}
		return Product{}, err
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, fmt.Errorf("barcode %q: %w", barcode, ErrNoProduct)
	}
	p := toProduct(parsed.Product)
	if p.Barcode == "" {
		p.Barcode = barcode
	}
	return p, nil
}

func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.base(),
		url.QueryEscape(strings.TrimSpace(query)),
		limit,
	)
	body, err := c.get(ctx, u, "search")
	if err != nil {
		return nil, err
	}
	var parsed offSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	out := make([]Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, toProduct(p))
	}
	return out, nil
}

func toProduct(p offProduct) Product {
	n := p.Nutriments
	out := Product{
		Barcode: strings.TrimSpace(p.Code),
		Name:    strings.TrimSpace(p.ProductName),
		Brand:   firstBrand(p.Brands),
		Nutrition: model.Nutrition{
			Kcal:          per100(n, "energy-kcal"),
			ProteinG:      per100(n, "proteins"),
			CarbsG:        per100(n, "carbohydrates"),
			FatG:          per100(n, "fat"),
			SaturatedFatG: optionalPer100(n, "saturated-fat"),
			TransFatG:     optionalPer100(n, "trans-fat"),
			SugarG:        optionalPer100(n, "sugars"),
			FiberG:        optionalPer100(n, "fiber"),
			SaltG:         optionalPer100(n, "salt"),
			NutriScore:    strings.ToUpper(strings.TrimSpace(p.NutriscoreGrade)),
		},
		ServingDescription: strings.TrimSpace(p.ServingSize),
	}
	if out.Nutrition.Kcal == 0 {
		if kj, ok := parseFloatAny(n["energy_100g"]); ok {
			out.Nutrition.Kcal = kj / 4.184
		}
	}
	if p.NovaGroup >= 1 && p.NovaGroup <= 4 {
		nova := p.NovaGroup
		out.Nutrition.NovaScore = &nova
	}
	if len(out.Nutrition.NutriScore) != 1 || !strings.Contains("ABCDE", out.Nutrition.NutriScore) {
		out.Nutrition.NutriScore = ""
	}
	if grams, ok := parseServingGrams(p); ok {
		out.ServingSizeG = &grams
	}
	return out
}

func firstBrand(v string) string {
	brand, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(brand)
}

func per100(n map[string]any, base string) float64 {
	v, _ := parseFloatAny(n[base+"_100g"])
	return v
}

func optionalPer100(n map[string]any, base string) *float64 {
	v, ok := parseFloatAny(n[base+"_100g"])
	if !ok {
		return nil
	}
	return &v
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func parseServingGrams(p offProduct) (float64, bool) {
	if p.ServingQuantity > 0 {
		unit := strings.ToLower(strings.TrimSpace(p.ServingQuantityUnit))
		if unit == "" || unit == "g" || unit == "ml" {
			return p.ServingQuantity, true
		}
	}
	parts := strings.Fields(strings.TrimSpace(p.ServingSize))
	if len(parts) >= 2 {
		unit := strings.ToLower(strings.Trim(parts[1], "()"))
		if unit != "g" && unit != "ml" {
			return 0, false
		}
		if val, err := strconv.ParseFloat(strings.ReplaceAll(parts[0], ",", "."), 64); err == nil && val > 0 {
			return val, true
		}
	}
	return 0, false
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     float64        `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	NovaGroup           int            `json:"nova_group"`
	NutriscoreGrade     string         `json:"nutriscore_grade"`
	Nutriments          map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}
