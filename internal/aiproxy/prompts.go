package aiproxy

import (
	"fmt"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/ai"
)

const recognitionFormat = `Respond with JSON:
{
  "foods": [
    {
      "name": "food name",
      "amount_g_ml": 150,
      "calories_per_100g": 200,
      "protein_g_per_100g": 15,
      "carbs_g_per_100g": 20,
      "fat_g_per_100g": 8,
      "saturated_fat_g_per_100g": 3,
      "trans_fat_g_per_100g": 0.1,
      "sugars_g_per_100g": 5,
      "fiber_g_per_100g": 2,
      "salt_g_per_100g": 0.5,
      "nova_score": 2,
      "nutri_score": "B",
      "confidence": 85
    }
  ],
  "description": "general notes"
}`

const imagePrompt = `You are a nutrition expert. Identify every food in the photo and any user note.
Rules:
- List each food separately.
- amount_g_ml is the estimated consumed portion.
- Nutrition values are ALWAYS per 100 g.
- nova_score is 1-4, nutri_score is a letter A-E, confidence is 0-100.
` + recognitionFormat

const textPrompt = `You are a nutrition expert. Identify every food in the user's description.
Rules:
- List each food separately and use the portion sizes given, or a typical portion.
- Nutrition values are ALWAYS per 100 g.
- nova_score is 1-4, nutri_score is a letter A-E, confidence is 0-100.
` + recognitionFormat

const macroPrompt = `You are a dietitian. Compute daily calorie, macro and water targets.
Base them on Mifflin-St Jeor:
- men: BMR = 10 x weight(kg) + 6.25 x height(cm) - 5 x age + 5
- women: BMR = 10 x weight(kg) + 6.25 x height(cm) - 5 x age - 161
Activity multipliers: sedentary 1.2, light 1.375, moderate 1.55, active 1.725, veryActive 1.9.
Goal adjustment: lose -500 kcal, gain +300 kcal, maintain 0.
Protein 1.6-2.2 g per kg, carbs 40-50% and fat 25-30% of calories.
Water: 30-35 ml per kg, more for active people, between 2000 and 4000 ml.
Respond with JSON:
{
  "daily_calorie_target": number,
  "protein_target_g": number,
  "carbs_target_g": number,
  "fat_target_g": number,
  "daily_water_target_ml": number,
  "bmr": number,
  "tdee": number,
  "explanation": "short explanation"
}`

func imageData(b64 string) string {
	if strings.HasPrefix(b64, "data:") {
		return b64
	}
	return "data:image/jpeg;base64," + b64
}

func macroUserPrompt(req ai.MacroRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User:\n- age: %d\n- gender: %s\n- height: %.0f cm\n- current weight: %.1f kg\n- target weight: %.1f kg\n- activity level: %s\n- goal: %s",
		req.Age, req.Gender, req.HeightCm, req.CurrentWeightKg, req.TargetWeightKg, req.ActivityLevel, req.Goal)
	if req.PreviousMacros != nil && req.PreviousWeightKg != nil {
		direction := "increased"
		if *req.PreviousWeightKg > req.CurrentWeightKg {
			direction = "decreased"
		}
		p := req.PreviousMacros
		fmt.Fprintf(&b, "\n\nPrevious values (update after a weight change):\n- previous weight: %.1f kg\n- previous calories: %d kcal\n- previous protein: %d g\n- previous carbs: %d g\n- previous fat: %d g\n\nWeight %s. Update the targets for the new weight and comment on progress.",
			*req.PreviousWeightKg, p.DailyCalorieTarget, p.ProteinTargetG, p.CarbsTargetG, p.FatTargetG, direction)
	}
	return b.String()
}
