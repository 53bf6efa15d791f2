package foods

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

const (
	MinQueryLength = 2
	catalogLimit   = 10
	historyLimit   = 50
	resultLimit    = 15
)

type Origin string

const (
	OriginCatalog Origin = "catalog"
	OriginHistory Origin = "history"
)

// Candidate is a food a meal can be logged from. Values are per 100 g or ml.
type Candidate struct {
	ID           string           `json:"id"`
	FoodID       string           `json:"food_id,omitempty"`
	Name         string           `json:"name"`
	Brand        string           `json:"brand,omitempty"`
	ServingSizeG *float64         `json:"serving_size_g,omitempty"`
	Per100       nutrition.Per100 `json:"per_100"`
	Nutrition    *model.Nutrition `json:"nutrition,omitempty"`
	Origin       Origin           `json:"origin"`
	UseCount     int              `json:"use_count,omitempty"`
}

// Entry builds an unsaved meal of amount from c.
func (c Candidate) Entry(slot model.MealType, amount float64, source model.Source) model.MealEntry {
	e := model.MealEntry{
		FoodID:     c.FoodID,
		CustomName: c.DisplayName(),
		MealType:   slot,
		AmountGMl:  amount,
		Source:     source,
	}
	e.SetTotals(nutrition.Scale(c.Per100, amount))
	return e
}

func (c Candidate) DisplayName() string {
	if c.Brand == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Brand)
}

// Store is the part of the gateway food resolution reads from.
type Store interface {
	gateway.FoodStore
	gateway.MealStore
}

// Resolver merges the shared catalog with one user's free-text history.
type Resolver struct {
	store    Store
	userID   string
	products ProductLookup
	log      *slog.Logger
}

type Option func(*Resolver)

func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithProductLookup enables the online fallback for unknown barcodes.
func WithProductLookup(p ProductLookup) Option {
	return func(r *Resolver) { r.products = p }
}

func NewResolver(store Store, userID string, opts ...Option) *Resolver {
	r := &Resolver{store: store, userID: userID, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search returns catalog matches first, then the user's own free-text
// entries whose names the catalog does not already cover.
func (r *Resolver) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []Candidate{}, nil
	}

	catalog, err := r.store.ListFoods(ctx, gateway.FoodFilter{NameContains: query, WithNutrition: true, Limit: catalogLimit})
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	var history []model.MealEntry
	if r.userID != "" {
		history, err = r.store.ListMeals(ctx, gateway.MealFilter{
			UserID:       r.userID,
			CustomOnly:   true,
			NameContains: query,
			Order:        gateway.OrderDesc,
			Limit:        historyLimit,
		})
		if err != nil {
			r.log.Warn("food history search failed", "query", query, "err", err)
			history = nil
		}
	}

	return merge(catalog, history), nil
}

func merge(catalog []model.Food, history []model.MealEntry) []Candidate {
	seen := map[string]struct{}{}
	out := make([]Candidate, 0, len(catalog)+len(history))
	for _, f := range catalog {
		if f.Nutrition == nil {
			continue
		}
		key := nameKey(f.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, fromFood(f))
	}
	for _, e := range history {
		if strings.TrimSpace(e.CustomName) == "" {
			continue
		}
		key := nameKey(e.CustomName)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, fromHistory(e, e.CustomName))
	}
	if len(out) > resultLimit {
		out = out[:resultLimit]
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func fromFood(f model.Food) Candidate {
	n := *f.Nutrition
	return Candidate{
		ID:           f.ID,
		FoodID:       f.ID,
		Name:         f.Name,
		Brand:        f.Brand,
		ServingSizeG: f.ServingSizeG,
		Per100:       n.Per100(),
		Nutrition:    &n,
		Origin:       OriginCatalog,
	}
}

// fromHistory inverts stored totals back to per-100 values.
func fromHistory(e model.MealEntry, name string) Candidate {
	amount := e.AmountGMl
	if amount <= 0 {
		amount = 100
	}
	return Candidate{
		ID:           "custom_" + e.ID,
		Name:         name,
		ServingSizeG: &amount,
		Per100:       nutrition.Per100FromTotals(e.Totals(), amount),
		Origin:       OriginHistory,
	}
}
