package model

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError maps field names to problems found before any write.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", f, v[f]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v ValidationError) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Err returns nil when no field failed.
func (v ValidationError) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationError) NonNegative(field string, value float64) {
	if value < 0 {
		v.Add(field, "must be >= 0")
	}
}

func (v ValidationError) Positive(field string, value float64) {
	if value <= 0 {
		v.Add(field, "must be > 0")
	}
}

func ValidateMealEntry(e MealEntry) error {
	v := ValidationError{}
	if strings.TrimSpace(e.UserID) == "" {
		v.Add("user_id", "is required")
	}
	if strings.TrimSpace(e.FoodID) == "" && strings.TrimSpace(e.CustomName) == "" {
		v.Add("custom_name", "is required when food_id is empty")
	}
	if _, err := ParseMealType(string(e.MealType)); err != nil {
		v.Add("meal_type", "must be breakfast|lunch|dinner|snack")
	}
	v.Positive("amount_g_ml", e.AmountGMl)
	v.NonNegative("calculated_kcal", float64(e.CalculatedKcal))
	v.NonNegative("calculated_protein", e.CalculatedProtein)
	v.NonNegative("calculated_carbs", e.CalculatedCarbs)
	v.NonNegative("calculated_fat", e.CalculatedFat)
	validateDate(v, "entry_date", e.EntryDate)
	return v.Err()
}

func ValidateMealPatch(p MealPatch) error {
	v := ValidationError{}
	if p.CustomName != nil && strings.TrimSpace(*p.CustomName) == "" {
		v.Add("custom_name", "must not be empty")
	}
	if p.MealType != nil {
		if _, err := ParseMealType(string(*p.MealType)); err != nil {
			v.Add("meal_type", "must be breakfast|lunch|dinner|snack")
		}
	}
	if p.AmountGMl != nil {
		v.Positive("amount_g_ml", *p.AmountGMl)
	}
	if p.CalculatedKcal != nil {
		v.NonNegative("calculated_kcal", float64(*p.CalculatedKcal))
	}
	if p.CalculatedProtein != nil {
		v.NonNegative("calculated_protein", *p.CalculatedProtein)
	}
	if p.CalculatedCarbs != nil {
		v.NonNegative("calculated_carbs", *p.CalculatedCarbs)
	}
	if p.CalculatedFat != nil {
		v.NonNegative("calculated_fat", *p.CalculatedFat)
	}
	return v.Err()
}

func ValidateWaterEntry(e WaterEntry) error {
	v := ValidationError{}
	if strings.TrimSpace(e.UserID) == "" {
		v.Add("user_id", "is required")
	}
	v.Positive("amount_ml", float64(e.AmountMl))
	validateDate(v, "entry_date", e.EntryDate)
	return v.Err()
}

func ValidateWeightEntry(e WeightEntry) error {
	v := ValidationError{}
	if strings.TrimSpace(e.UserID) == "" {
		v.Add("user_id", "is required")
	}
	v.Positive("weight_kg", e.WeightKg)
	validateDate(v, "entry_date", e.EntryDate)
	return v.Err()
}

func validateDate(v ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
		return
	}
	if _, err := ParseDate(value); err != nil {
		v.Add(field, "must be YYYY-MM-DD")
	}
}
