package ai

import (
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

// RecognizedFood is one food found in a photo or description. Nutrition
// values are per 100 g or ml; AmountGMl is the estimated portion.
type RecognizedFood struct {
	Name                 string   `json:"name"`
	AmountGMl            float64  `json:"amount_g_ml"`
	CaloriesPer100g      float64  `json:"calories_per_100g"`
	ProteinGPer100g      float64  `json:"protein_g_per_100g"`
	CarbsGPer100g        float64  `json:"carbs_g_per_100g"`
	FatGPer100g          float64  `json:"fat_g_per_100g"`
	SaturatedFatGPer100g *float64 `json:"saturated_fat_g_per_100g,omitempty"`
	TransFatGPer100g     *float64 `json:"trans_fat_g_per_100g,omitempty"`
	SugarsGPer100g       *float64 `json:"sugars_g_per_100g,omitempty"`
	FiberGPer100g        *float64 `json:"fiber_g_per_100g,omitempty"`
	SaltGPer100g         *float64 `json:"salt_g_per_100g,omitempty"`
	NovaScore            *int     `json:"nova_score,omitempty"`
	NutriScore           string   `json:"nutri_score,omitempty"`
	Confidence           float64  `json:"confidence"`
}

type Recognition struct {
	Foods       []RecognizedFood `json:"foods"`
	Description string           `json:"description,omitempty"`
}

func (f RecognizedFood) Per100() nutrition.Per100 {
	return nutrition.Per100{Kcal: f.CaloriesPer100g, ProteinG: f.ProteinGPer100g, CarbsG: f.CarbsGPer100g, FatG: f.FatGPer100g}
}

// Nutrition keeps only the scores that fall in their valid ranges.
func (f RecognizedFood) Nutrition() model.Nutrition {
	n := model.Nutrition{
		Kcal:          f.CaloriesPer100g,
		ProteinG:      f.ProteinGPer100g,
		CarbsG:        f.CarbsGPer100g,
		FatG:          f.FatGPer100g,
		SaturatedFatG: f.SaturatedFatGPer100g,
		TransFatG:     f.TransFatGPer100g,
		SugarG:        f.SugarsGPer100g,
		FiberG:        f.FiberGPer100g,
		SaltG:         f.SaltGPer100g,
	}
	if f.NovaScore != nil && *f.NovaScore >= 1 && *f.NovaScore <= 4 {
		n.NovaScore = f.NovaScore
	}
	if grade := strings.ToUpper(strings.TrimSpace(f.NutriScore)); len(grade) == 1 && strings.Contains("ABCDE", grade) {
		n.NutriScore = grade
	}
	return n
}

// Food converts f into an unsaved catalog row.
func (f RecognizedFood) Food(barcode, createdBy string, source model.Source) model.Food {
	n := f.Nutrition()
	return model.Food{
		Name:      strings.TrimSpace(f.Name),
		Barcode:   barcode,
		Source:    source,
		CreatedBy: createdBy,
		Nutrition: &n,
	}
}

type PreviousMacros struct {
	DailyCalorieTarget int `json:"daily_calorie_target"`
	ProteinTargetG     int `json:"protein_target_g"`
	CarbsTargetG       int `json:"carbs_target_g"`
	FatTargetG         int `json:"fat_target_g"`
}

type MacroRequest struct {
	Age              int                     `json:"age"`
	Gender           nutrition.Gender        `json:"gender"`
	HeightCm         float64                 `json:"height_cm"`
	CurrentWeightKg  float64                 `json:"current_weight_kg"`
	TargetWeightKg   float64                 `json:"target_weight_kg"`
	ActivityLevel    nutrition.ActivityLevel `json:"activity_level"`
	Goal             nutrition.Goal          `json:"goal"`
	PreviousMacros   *PreviousMacros         `json:"previous_macros,omitempty"`
	PreviousWeightKg *float64                `json:"previous_weight_kg,omitempty"`
}

type MacroResult struct {
	DailyCalorieTarget int    `json:"daily_calorie_target"`
	ProteinTargetG     int    `json:"protein_target_g"`
	CarbsTargetG       int    `json:"carbs_target_g"`
	FatTargetG         int    `json:"fat_target_g"`
	DailyWaterTargetMl int    `json:"daily_water_target_ml"`
	BMR                int    `json:"bmr"`
	TDEE               int    `json:"tdee"`
	Explanation        string `json:"explanation"`
}

// Patch writes r into the target fields of a profile update.
func (r MacroResult) Patch(p *model.ProfilePatch) {
	bmr, tdee := r.BMR, r.TDEE
	cal, protein, carbs, fat := r.DailyCalorieTarget, r.ProteinTargetG, r.CarbsTargetG, r.FatTargetG
	p.BMR, p.TDEE = &bmr, &tdee
	p.DailyCalorieTarget, p.ProteinTargetG, p.CarbsTargetG, p.FatTargetG = &cal, &protein, &carbs, &fat
}
