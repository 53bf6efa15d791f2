package profile

import (
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

// ValidatePatch checks every set field and rewrites enum fields to their
// canonical spelling.
func ValidatePatch(p *model.ProfilePatch, now time.Time) error {
	v := model.ValidationError{}
	if p.DisplayName != nil && len(strings.TrimSpace(*p.DisplayName)) > 100 {
		v.Add("display_name", "must be at most 100 characters")
	}
	if p.BirthDate != nil {
		validateBirthDate(v, *p.BirthDate, now)
	}
	if p.Gender != nil {
		if g, err := nutrition.ParseGender(string(*p.Gender)); err != nil {
			v.Add("gender", "must be male|female")
		} else {
			p.Gender = &g
		}
	}
	if p.ActivityLevel != nil {
		if a, err := nutrition.ParseActivityLevel(string(*p.ActivityLevel)); err != nil {
			v.Add("activity_level", "must be sedentary|light|moderate|active|veryActive")
		} else {
			p.ActivityLevel = &a
		}
	}
	if p.Goal != nil {
		if g, err := nutrition.ParseGoal(string(*p.Goal)); err != nil {
			v.Add("goal", "must be lose|maintain|gain")
		} else {
			p.Goal = &g
		}
	}
	if p.HeightCm != nil {
		inRange(v, "height_cm", *p.HeightCm, 50, 300)
	}
	if p.CurrentWeightKg != nil {
		inRange(v, "current_weight_kg", *p.CurrentWeightKg, 20, 500)
	}
	if p.TargetWeightKg != nil {
		inRange(v, "target_weight_kg", *p.TargetWeightKg, 20, 500)
	}
	for field, value := range map[string]*int{
		"bmr":                   p.BMR,
		"tdee":                  p.TDEE,
		"protein_target_g":      p.ProteinTargetG,
		"carbs_target_g":        p.CarbsTargetG,
		"fat_target_g":          p.FatTargetG,
		"daily_water_target_ml": p.DailyWaterTargetMl,
	} {
		if value != nil {
			v.NonNegative(field, float64(*value))
		}
	}
	if p.DailyCalorieTarget != nil && *p.DailyCalorieTarget < nutrition.MinTargetCalories {
		v.Add("daily_calorie_target", "must be at least 1200")
	}
	if p.WeighInFrequencyDays != nil && (*p.WeighInFrequencyDays < 1 || *p.WeighInFrequencyDays > 30) {
		v.Add("weigh_in_frequency_days", "must be between 1 and 30")
	}
	return v.Err()
}

func validateOnboarding(in *OnboardingInput, now time.Time) error {
	v := model.ValidationError{}
	if strings.TrimSpace(in.BirthDate) == "" {
		v.Add("birth_date", "is required")
	} else {
		validateBirthDate(v, in.BirthDate, now)
	}
	var err error
	if in.Gender, err = nutrition.ParseGender(string(in.Gender)); err != nil {
		v.Add("gender", "must be male|female")
	}
	if in.ActivityLevel, err = nutrition.ParseActivityLevel(string(in.ActivityLevel)); err != nil {
		v.Add("activity_level", "must be sedentary|light|moderate|active|veryActive")
	}
	if in.Goal, err = nutrition.ParseGoal(string(in.Goal)); err != nil {
		v.Add("goal", "must be lose|maintain|gain")
	}
	inRange(v, "height_cm", in.HeightCm, 50, 300)
	inRange(v, "current_weight_kg", in.CurrentWeightKg, 20, 500)
	inRange(v, "target_weight_kg", in.TargetWeightKg, 20, 500)
	return v.Err()
}

func validateBirthDate(v model.ValidationError, value string, now time.Time) {
	birth, err := model.ParseDate(value)
	if err != nil {
		v.Add("birth_date", "must be YYYY-MM-DD")
		return
	}
	if birth.After(now) {
		v.Add("birth_date", "must not be in the future")
	}
}

func inRange(v model.ValidationError, field string, value, min, max float64) {
	if value < min || value > max {
		v.Add(field, "is out of range")
	}
}
