package foods

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/provider/openfoodfacts"
)

var (
	barcodePattern = regexp.MustCompile(`^[0-9]{8,14}$`)

	ErrUnknownBarcode = errors.New("unknown barcode")
)

// ProductLookup finds packaged products outside the catalog.
type ProductLookup interface {
	LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, error)
}

// Lookups tries each lookup in order. A lookup that does not know the
// product or fails passes the barcode on to the next one.
type Lookups []ProductLookup

func (l Lookups) LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, error) {
	var firstErr error
	for _, lookup := range l {
		product, err := lookup.LookupBarcode(ctx, barcode)
		if err == nil {
			return product, nil
		}
		if ctx.Err() != nil {
			return openfoodfacts.Product{}, ctx.Err()
		}
		if firstErr == nil && !errors.Is(err, openfoodfacts.ErrNoProduct) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return openfoodfacts.Product{}, firstErr
	}
	return openfoodfacts.Product{}, fmt.Errorf("barcode %q: %w", barcode, openfoodfacts.ErrNoProduct)
}

type BarcodeResult struct {
	Food        model.Food `json:"food"`
	FromCatalog bool       `json:"from_catalog"`
}

func ValidBarcode(code string) bool {
	return barcodePattern.MatchString(strings.TrimSpace(code))
}

// Barcode resolves code against the catalog and then the product lookup.
// A product found online is returned unsaved; see SaveScanned.
func (r *Resolver) Barcode(ctx context.Context, code string) (BarcodeResult, error) {
	code = strings.TrimSpace(code)
	if !ValidBarcode(code) {
		return BarcodeResult{}, fmt.Errorf("invalid barcode %q (expected 8-14 digits)", code)
	}

	food, err := r.store.FindFood(ctx, gateway.FoodFilter{Barcode: code, WithNutrition: true})
	if err != nil {
		return BarcodeResult{}, fmt.Errorf("find catalog barcode: %w", err)
	}
	if food != nil {
		return BarcodeResult{Food: *food, FromCatalog: true}, nil
	}
	if r.products == nil {
		return BarcodeResult{}, fmt.Errorf("barcode %s: %w", code, ErrUnknownBarcode)
	}

	product, err := r.products.LookupBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, openfoodfacts.ErrNoProduct) {
			return BarcodeResult{}, fmt.Errorf("barcode %s: %w", code, ErrUnknownBarcode)
		}
		return BarcodeResult{}, fmt.Errorf("lookup barcode %s: %w", code, err)
	}
	r.log.Debug("barcode resolved online", "barcode", code, "name", product.Name)
	return BarcodeResult{Food: product.Food(r.userID)}, nil
}

// SaveScanned adds an online result to the catalog so later scans and
// searches find it there.
func (r *Resolver) SaveScanned(ctx context.Context, res BarcodeResult) (model.Food, error) {
	if res.FromCatalog {
		return res.Food, nil
	}
	food := res.Food
	food.CreatedBy = r.userID
	food.Source = model.SourceBarcode
	saved, err := r.store.InsertFood(ctx, food)
	if err != nil {
		return model.Food{}, fmt.Errorf("save scanned food: %w", err)
	}
	return saved, nil
}

// Candidate converts a catalog food for logging.
func (res BarcodeResult) Candidate() (Candidate, error) {
	if res.Food.Nutrition == nil {
		return Candidate{}, fmt.Errorf("food %q has no nutrition", res.Food.Name)
	}
	return fromFood(res.Food), nil
}
