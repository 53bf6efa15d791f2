package foods_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/GokhanOfficial/CaloriX/internal/db"
	"github.com/GokhanOfficial/CaloriX/internal/foods"
	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
	"github.com/GokhanOfficial/CaloriX/internal/provider/openfoodfacts"
	"github.com/GokhanOfficial/CaloriX/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "calorix.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	return store.New(sqldb)
}

func logMeal(t *testing.T, s *store.Store, user, name string, amount float64, per100 nutrition.Per100) model.MealEntry {
	t.Helper()
	e := model.MealEntry{UserID: user, CustomName: name, MealType: model.MealLunch, AmountGMl: amount, EntryDate: "2026-10-18", Source: model.SourceManual}
	e.SetTotals(nutrition.Scale(per100, amount))
	saved, err := s.InsertMeal(context.Background(), e)
	if err != nil {
		t.Fatalf("insert meal %s: %v", name, err)
	}
	return saved
}

func addFood(t *testing.T, s *store.Store, f model.Food) model.Food {
	t.Helper()
	saved, err := s.InsertFood(context.Background(), f)
	if err != nil {
		t.Fatalf("insert food %s: %v", f.Name, err)
	}
	return saved
}

func TestSearchCatalogShadowsHistoryWithSameName(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	addFood(t, s, model.Food{Name: "Elma", Nutrition: &model.Nutrition{Kcal: 52, ProteinG: 0.3, CarbsG: 14, FatG: 0.2}})
	logMeal(t, s, "u1", "elma", 200, nutrition.Per100{Kcal: 60, CarbsG: 15})

	got, err := foods.NewResolver(s, "u1").Search(context.Background(), "elm")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one deduplicated result, got %+v", got)
	}
	if got[0].Origin != foods.OriginCatalog || got[0].Per100.Kcal != 52 || got[0].Nutrition == nil {
		t.Fatalf("expected catalog entry to win, got %+v", got[0])
	}
}

func TestSearchInvertsHistoryTotalsAndOrdersCatalogFirst(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	logMeal(t, s, "u1", "Ev Yapımı Mercimek Çorbası", 250, nutrition.Per100{Kcal: 56, ProteinG: 3.6, CarbsG: 9.2, FatG: 1.1})
	addFood(t, s, model.Food{Name: "Mercimek", Brand: "Duru", Nutrition: &model.Nutrition{Kcal: 350, ProteinG: 24, CarbsG: 60, FatG: 1.5}})
	logMeal(t, s, "u2", "Mercimek Köftesi", 100, nutrition.Per100{Kcal: 180})

	got, err := foods.NewResolver(s, "u1").Search(context.Background(), "Mercimek")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected catalog food plus own history only, got %+v", got)
	}
	if got[0].Origin != foods.OriginCatalog || got[1].Origin != foods.OriginHistory {
		t.Fatalf("expected catalog first, got %+v", got)
	}
	h := got[1]
	if h.Per100.Kcal != 56 || h.Per100.ProteinG != 3.6 || h.Per100.CarbsG != 9.2 || h.Per100.FatG != 1.1 {
		t.Fatalf("unexpected inverted per-100 values: %+v", h.Per100)
	}
	if h.ServingSizeG == nil || *h.ServingSizeG != 250 || h.FoodID != "" {
		t.Fatalf("unexpected history candidate: %+v", h)
	}
	if got[0].DisplayName() != "Mercimek (Duru)" {
		t.Fatalf("unexpected display name %q", got[0].DisplayName())
	}
}

func TestSearchShortQueryIsEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	addFood(t, s, model.Food{Name: "Su", Nutrition: &model.Nutrition{}})

	got, err := foods.NewResolver(s, "u1").Search(context.Background(), " s ")
	if err != nil || len(got) != 0 || got == nil {
		t.Fatalf("expected empty non-nil result, got %+v %v", got, err)
	}
}

func TestSearchTruncatesToFifteen(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	for i := 0; i < 12; i++ {
		addFood(t, s, model.Food{Name: "Peynir " + string(rune('A'+i)), Nutrition: &model.Nutrition{Kcal: 300}})
	}
	for i := 0; i < 10; i++ {
		logMeal(t, s, "u1", "Peynirli Tost "+string(rune('A'+i)), 150, nutrition.Per100{Kcal: 280})
	}

	got, err := foods.NewResolver(s, "u1").Search(context.Background(), "peynir")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 15 {
		t.Fatalf("expected 15 results, got %d", len(got))
	}
	catalog := 0
	for _, c := range got {
		if c.Origin == foods.OriginCatalog {
			catalog++
		}
	}
	if catalog != 10 {
		t.Fatalf("expected catalog capped at 10, got %d", catalog)
	}
}

type failingMeals struct {
	*store.Store
}

func (failingMeals) ListMeals(context.Context, gateway.MealFilter) ([]model.MealEntry, error) {
	return nil, errors.New("history offline")
}

func TestSearchSurvivesHistoryFailure(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	addFood(t, s, model.Food{Name: "Ayran", Nutrition: &model.Nutrition{Kcal: 36}})

	got, err := foods.NewResolver(failingMeals{s}, "u1").Search(context.Background(), "ayr")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected catalog results despite history failure, got %+v %v", got, err)
	}
}

func TestCandidateEntryScalesAndNamesWithBrand(t *testing.T) {
	t.Parallel()

	c := foods.Candidate{FoodID: "f1", Name: "Ayran", Brand: "Sütaş", Per100: nutrition.Per100{Kcal: 36, ProteinG: 1.7, CarbsG: 2.5, FatG: 2}}
	e := c.Entry(model.MealLunch, 300, model.SourceBarcode)
	if e.CustomName != "Ayran (Sütaş)" || e.FoodID != "f1" {
		t.Fatalf("unexpected entry identity: %+v", e)
	}
	if e.CalculatedKcal != 108 || e.CalculatedProtein != 5.1 || e.CalculatedCarbs != 7.5 || e.CalculatedFat != 6 {
		t.Fatalf("unexpected scaled totals: %+v", e)
	}
}

func TestRecentUsesCatalogNutritionAndDedupes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	food := addFood(t, s, model.Food{Name: "Simit", Nutrition: &model.Nutrition{Kcal: 275, ProteinG: 9}})
	e := model.MealEntry{UserID: "u1", FoodID: food.ID, CustomName: "Simit", MealType: model.MealBreakfast, AmountGMl: 120, EntryDate: "2026-10-17"}
	if _, err := s.InsertMeal(ctx, e); err != nil {
		t.Fatalf("insert meal: %v", err)
	}
	logMeal(t, s, "u1", "Çay", 200, nutrition.Per100{Kcal: 1})
	logMeal(t, s, "u1", "çay", 200, nutrition.Per100{Kcal: 1})

	got, err := foods.NewResolver(s, "u1").Recent(ctx)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Name != "çay" || got[1].Name != "Simit" {
		t.Fatalf("unexpected recent foods: %+v", got)
	}
	if got[1].FoodID != food.ID || got[1].Per100.Kcal != 275 {
		t.Fatalf("expected catalog nutrition for simit, got %+v", got[1])
	}
}

func TestFavoritesCountsAndBreaksTiesByRecency(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	for _, name := range []string{"Çay", "Çay", "Simit", "Çay", "Peynir", "Peynir", "Peynir"} {
		logMeal(t, s, "u1", name, 100, nutrition.Per100{Kcal: 100})
	}

	got, err := foods.NewResolver(s, "u1").Favorites(context.Background())
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 favorites, got %+v", got)
	}
	if got[0].Name != "Peynir" || got[0].UseCount != 3 || got[1].Name != "Çay" || got[1].UseCount != 3 || got[2].Name != "Simit" {
		t.Fatalf("unexpected favorite order: %+v", got)
	}
}

type fakeProducts struct {
	product openfoodfacts.Product
	err     error
	calls   int
}

func (f *fakeProducts) LookupBarcode(context.Context, string) (openfoodfacts.Product, error) {
	f.calls++
	return f.product, f.err
}

func TestBarcodePrefersCatalogThenFallsBackAndSaves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	products := &fakeProducts{product: openfoodfacts.Product{
		Barcode:   "8690504000016",
		Name:      "Ayran",
		Brand:     "Sütaş",
		Nutrition: model.Nutrition{Kcal: 36, ProteinG: 1.7, CarbsG: 2.5, FatG: 2},
	}}
	r := foods.NewResolver(s, "u1", foods.WithProductLookup(products))

	res, err := r.Barcode(ctx, "8690504000016")
	if err != nil {
		t.Fatalf("barcode: %v", err)
	}
	if res.FromCatalog || res.Food.ID != "" || products.calls != 1 {
		t.Fatalf("expected unsaved online result, got %+v", res)
	}
	saved, err := r.SaveScanned(ctx, res)
	if err != nil {
		t.Fatalf("save scanned: %v", err)
	}
	if saved.ID == "" || saved.CreatedBy != "u1" || saved.Source != model.SourceBarcode {
		t.Fatalf("unexpected saved food: %+v", saved)
	}

	again, err := r.Barcode(ctx, "8690504000016")
	if err != nil {
		t.Fatalf("barcode again: %v", err)
	}
	if !again.FromCatalog || again.Food.ID != saved.ID || products.calls != 1 {
		t.Fatalf("expected catalog hit without online call, got %+v (calls=%d)", again, products.calls)
	}
	c, err := again.Candidate()
	if err != nil || c.Per100.Kcal != 36 {
		t.Fatalf("unexpected candidate: %+v %v", c, err)
	}
}

func TestLookupsFallThroughInOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	missing := &fakeProducts{err: openfoodfacts.ErrNoProduct}
	broken := &fakeProducts{err: errors.New("status 503")}
	found := &fakeProducts{product: openfoodfacts.Product{Name: "Gofret"}}

	p, err := foods.Lookups{missing, broken, found}.LookupBarcode(ctx, "12345678")
	if err != nil || p.Name != "Gofret" {
		t.Fatalf("expected third lookup to answer, got %+v %v", p, err)
	}
	if missing.calls != 1 || broken.calls != 1 || found.calls != 1 {
		t.Fatalf("expected each lookup once, got %d %d %d", missing.calls, broken.calls, found.calls)
	}

	if _, err := (foods.Lookups{missing, missing}).LookupBarcode(ctx, "12345678"); !errors.Is(err, openfoodfacts.ErrNoProduct) {
		t.Fatalf("expected ErrNoProduct when nobody knows the code, got %v", err)
	}
	if _, err := (foods.Lookups{broken, missing}).LookupBarcode(ctx, "12345678"); err == nil || errors.Is(err, openfoodfacts.ErrNoProduct) {
		t.Fatalf("expected the service failure to surface, got %v", err)
	}
}

func TestBarcodeRejectsInvalidAndUnknownCodes(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	r := foods.NewResolver(s, "u1", foods.WithProductLookup(&fakeProducts{err: openfoodfacts.ErrNoProduct}))

	if _, err := r.Barcode(context.Background(), "12ab"); err == nil {
		t.Fatalf("expected invalid barcode error")
	}
	if _, err := r.Barcode(context.Background(), "12345678"); !errors.Is(err, foods.ErrUnknownBarcode) {
		t.Fatalf("expected ErrUnknownBarcode, got %v", err)
	}
}

type gatedStore struct {
	*store.Store
	gates   map[string]chan struct{}
	entered chan string
}

func (g *gatedStore) ListFoods(ctx context.Context, f gateway.FoodFilter) ([]model.Food, error) {
	if gate := g.gates[f.NameContains]; gate != nil {
		g.entered <- f.NameContains
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.NameContains == "fail" {
		return nil, errors.New("catalog offline")
	}
	return g.Store.ListFoods(ctx, f)
}

func TestLiveSearchDiscardsSupersededQuery(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	addFood(t, s, model.Food{Name: "Simit", Nutrition: &model.Nutrition{Kcal: 275}})
	addFood(t, s, model.Food{Name: "Sucuk", Nutrition: &model.Nutrition{Kcal: 450}})
	gs := &gatedStore{Store: s, gates: map[string]chan struct{}{"si": make(chan struct{})}, entered: make(chan string, 1)}
	live := foods.NewLiveSearch(foods.NewResolver(gs, "u1"))

	slow := make(chan error, 1)
	go func() {
		_, err := live.Query(context.Background(), "si")
		slow <- err
	}()
	<-gs.entered

	got, err := live.Query(context.Background(), "su")
	if err != nil || len(got) != 1 || got[0].Name != "Sucuk" {
		t.Fatalf("unexpected newest results: %+v %v", got, err)
	}
	if err := <-slow; !errors.Is(err, foods.ErrSuperseded) {
		t.Fatalf("expected superseded error, got %v", err)
	}
	q, results, _ := live.Results()
	if q != "su" || len(results) != 1 || results[0].Name != "Sucuk" {
		t.Fatalf("stale query overwrote results: %s %+v", q, results)
	}
}

func TestLiveSearchKeepsResultsOnFailure(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	addFood(t, s, model.Food{Name: "Simit", Nutrition: &model.Nutrition{Kcal: 275}})
	live := foods.NewLiveSearch(foods.NewResolver(&gatedStore{Store: s}, "u1"))

	if _, err := live.Query(context.Background(), "sim"); err != nil {
		t.Fatalf("query: %v", err)
	}
	got, err := live.Query(context.Background(), "fail")
	if err == nil || len(got) != 1 || got[0].Name != "Simit" {
		t.Fatalf("expected previous results with error, got %+v %v", got, err)
	}
	q, _, lastErr := live.Results()
	if q != "sim" || lastErr == nil {
		t.Fatalf("expected stale flag on previous query, got %q %v", q, lastErr)
	}
}
