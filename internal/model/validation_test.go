package model

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateMealEntryReportsEachField(t *testing.T) {
	t.Parallel()

	err := ValidateMealEntry(MealEntry{MealType: "brunch", AmountGMl: 0, CalculatedFat: -1, EntryDate: "18/10/2026"})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"user_id", "custom_name", "meal_type", "amount_g_ml", "calculated_fat", "entry_date"} {
		if _, ok := ve[field]; !ok {
			t.Fatalf("expected %s to be reported, got %v", field, ve)
		}
	}
	if !strings.Contains(err.Error(), "amount_g_ml must be > 0") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestValidateMealEntryAcceptsCatalogReference(t *testing.T) {
	t.Parallel()

	err := ValidateMealEntry(MealEntry{UserID: "u1", FoodID: "f1", MealType: MealLunch, AmountGMl: 150, EntryDate: "2026-10-18"})
	if err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}
}

func TestMealPatchApplyLeavesMissingFields(t *testing.T) {
	t.Parallel()

	name := "Ayran"
	e := MealEntry{CustomName: "Yogurt", MealType: MealLunch, AmountGMl: 200, Note: "keep"}
	got := MealPatch{CustomName: &name}.ApplyTo(e)
	if got.CustomName != "Ayran" || got.MealType != MealLunch || got.AmountGMl != 200 || got.Note != "keep" {
		t.Fatalf("unexpected patched entry: %+v", got)
	}
}

func TestFoodDisplayNameIncludesBrand(t *testing.T) {
	t.Parallel()

	if got := (Food{Name: "Ayran", Brand: "Sütaş"}).DisplayName(); got != "Ayran (Sütaş)" {
		t.Fatalf("unexpected display name %q", got)
	}
	if got := (Food{Name: "Ayran"}).DisplayName(); got != "Ayran" {
		t.Fatalf("unexpected display name %q", got)
	}
}
