package portability_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/db"
	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/portability"
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

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func seed(t *testing.T, st *store.Store, user string) {
	t.Helper()
	ctx := context.Background()
	if err := st.EnsureProfile(ctx, user); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	food, err := st.InsertFood(ctx, model.Food{
		Name:      "Ev Yoğurdu",
		CreatedBy: user,
		Nutrition: &model.Nutrition{Kcal: 61, ProteinG: 3.5, CarbsG: 4.7, FatG: 3.3},
	})
	if err != nil {
		t.Fatalf("insert food: %v", err)
	}
	meals := []model.MealEntry{
		{UserID: user, FoodID: food.ID, MealType: model.MealBreakfast, AmountGMl: 200, CalculatedKcal: 122, CalculatedProtein: 7, CalculatedCarbs: 9.4, CalculatedFat: 6.6, EntryDate: "2026-10-17", Source: model.SourceManual},
		{UserID: user, CustomName: "Simit", MealType: model.MealBreakfast, AmountGMl: 100, CalculatedKcal: 275, EntryDate: "2026-10-17", Source: model.SourceText},
		{UserID: user, CustomName: "Baklava", MealType: model.MealSnack, AmountGMl: 80, CalculatedKcal: 340, EntryDate: "2026-10-17", Source: model.SourceManual},
	}
	for i, m := range meals {
		saved, err := st.InsertMeal(ctx, m)
		if err != nil {
			t.Fatalf("insert meal: %v", err)
		}
		if i == 2 {
			if err := st.SoftDeleteMeal(ctx, user, saved.ID, time.Now()); err != nil {
				t.Fatalf("delete meal: %v", err)
			}
		}
	}
	for _, hour := range []int{9, 13} {
		at := time.Date(2026, 10, 17, hour, 0, 0, 0, time.UTC)
		if _, err := st.InsertWater(ctx, model.WaterEntry{UserID: user, AmountMl: 250, EntryDate: "2026-10-17", EntryTime: at}); err != nil {
			t.Fatalf("insert water: %v", err)
		}
	}
	if _, err := st.InsertWeight(ctx, model.WeightEntry{UserID: user, WeightKg: 80.4, EntryDate: "2026-10-17"}); err != nil {
		t.Fatalf("insert weight: %v", err)
	}
}

func TestExportIncludesDeletedRowsAndOwnFoods(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	seed(t, st, "u1")
	if _, err := st.InsertFood(context.Background(), model.Food{Name: "Shared", CreatedBy: "someone-else"}); err != nil {
		t.Fatalf("insert food: %v", err)
	}
	exportedAt := time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)

	data, err := portability.NewService(st, "u1", quiet()).WithClock(func() time.Time { return exportedAt }).Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if data.Version != "1.0.0" || !data.ExportedAt.Equal(exportedAt) || data.Profile == nil {
		t.Fatalf("unexpected header: %+v", data)
	}
	if len(data.MealEntries) != 3 || len(data.WaterEntries) != 2 || len(data.WeightEntries) != 1 {
		t.Fatalf("unexpected record counts: %d meals %d water %d weight", len(data.MealEntries), len(data.WaterEntries), len(data.WeightEntries))
	}
	if len(data.Foods) != 1 || data.Foods[0].Nutrition == nil || data.Foods[0].Nutrition.Kcal != 61 {
		t.Fatalf("expected own food with nutrition, got %+v", data.Foods)
	}
	if len(data.NotificationPreferences) != 5 {
		t.Fatalf("expected default preferences, got %d", len(data.NotificationPreferences))
	}

	var buf bytes.Buffer
	if err := data.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, key := range []string{`"exportedAt"`, `"mealEntries"`, `"food_nutrition"`, `"deleted_at"`} {
		if !strings.Contains(buf.String(), key) {
			t.Fatalf("expected %s in backup", key)
		}
	}
}

func TestImportMergesByNaturalKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	seed(t, st, "u1")
	data, err := portability.NewService(st, "u1", quiet()).Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var buf bytes.Buffer
	if err := data.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw := buf.Bytes()

	if err := st.EnsureProfile(ctx, "u2"); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	svc := portability.NewService(st, "u2", quiet())
	backup, err := portability.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	report, err := svc.Import(ctx, backup)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Foods != 1 || report.Meals != 2 || report.Water != 2 || report.Weight != 1 || report.Skipped != 1 || report.Failed != 0 {
		t.Fatalf("unexpected first import report: %+v", report)
	}

	meals, err := st.ListMeals(ctx, gateway.MealFilter{UserID: "u2", WithFood: true})
	if err != nil {
		t.Fatalf("list meals: %v", err)
	}
	var linked bool
	for _, m := range meals {
		if m.Food != nil && m.Food.CreatedBy == "u2" && m.CustomName == "Ev Yoğurdu" {
			linked = true
		}
	}
	if !linked {
		t.Fatalf("expected meal linked to the imported food, got %+v", meals)
	}

	again, err := portability.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	report, err = svc.Import(ctx, again)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if report.Foods+report.Meals+report.Water+report.Weight != 0 || report.Skipped != 7 {
		t.Fatalf("expected everything skipped, got %+v", report)
	}
}

func TestImportAcceptsOlderFieldNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	if err := st.EnsureProfile(ctx, "u1"); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	backup, err := portability.Decode(strings.NewReader(`{
  "version": "1.0.0",
  "exportedAt": "2025-01-02T10:00:00.000Z",
  "foods": [{"id": "f-old", "name": "Lahmacun", "source": "manual", "food_nutrition": [{"kcal": 210, "protein_g": 9, "carbs_g": 30, "fat_g": 6}]}],
  "mealEntries": [
    {"entry_date": "2025-01-01", "meal_type": "lunch", "food_name": "Lahmacun", "amount_g": 150, "calories": 315, "protein_g": 13.5},
    {"entry_date": "2025-01-01", "meal_type": "brunch", "custom_name": "Börek"}
  ],
  "waterEntries": [{"entry_time": "2025-01-01T08:30:00+00:00", "amount_ml": 300}],
  "weightEntries": [{"recorded_at": "2025-01-01T07:00:00Z", "weight_kg": 82.1, "notes": "sabah"}]
}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	report, err := portability.NewService(st, "u1", quiet()).Import(ctx, backup)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Foods != 1 || report.Meals != 1 || report.Water != 1 || report.Weight != 1 || report.Failed != 1 || len(report.Warnings) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	food, err := st.FindFood(ctx, gateway.FoodFilter{Name: "lahmacun", CreatedBy: "u1"})
	if err != nil || food == nil || food.Nutrition == nil || food.Nutrition.Kcal != 210 {
		t.Fatalf("expected food with nutrition, got %+v %v", food, err)
	}
	meal, err := st.FindMeal(ctx, gateway.MealFilter{UserID: "u1", EntryDate: "2025-01-01"})
	if err != nil || meal == nil || meal.CustomName != "Lahmacun" || meal.AmountGMl != 150 || meal.CalculatedKcal != 315 {
		t.Fatalf("unexpected meal: %+v %v", meal, err)
	}
	water, err := st.ListWater(ctx, gateway.WaterFilter{UserID: "u1"})
	if err != nil || len(water) != 1 || water[0].EntryDate != "2025-01-01" {
		t.Fatalf("unexpected water: %+v %v", water, err)
	}
	weight, err := st.FindWeight(ctx, gateway.WeightFilter{UserID: "u1", EntryDate: "2025-01-01"})
	if err != nil || weight == nil || weight.Note != "sabah" {
		t.Fatalf("unexpected weight: %+v %v", weight, err)
	}
}

func TestDecodeRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	_, err := portability.Decode(strings.NewReader(`{"mealEntries": []}`))
	if !errors.Is(err, portability.ErrInvalidBackup) {
		t.Fatalf("expected ErrInvalidBackup, got %v", err)
	}
	_, err = portability.NewService(newTestStore(t), "u1", quiet()).Import(context.Background(), portability.Backup{Version: "1.0.0"})
	if !errors.Is(err, portability.ErrInvalidBackup) {
		t.Fatalf("expected ErrInvalidBackup on import, got %v", err)
	}
}
