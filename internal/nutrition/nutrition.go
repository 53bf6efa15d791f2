package nutrition

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "veryActive"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// MinTargetCalories is the floor applied to every calorie target.
const MinTargetCalories = 1200

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

var goalModifiers = map[Goal]int{
	GoalLose:     -500,
	GoalMaintain: 0,
	GoalGain:     500,
}

// Per100 holds nutrition values for 100 g or 100 ml.
type Per100 struct {
	Kcal     float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

// Totals holds nutrition values already scaled to a consumed amount.
type Totals struct {
	Kcal     int
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

type MacroTargets struct {
	ProteinG int
	CarbsG   int
	FatG     int
}

// Round rounds half up, matching the values shown to users.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Round1 rounds to one decimal place, half up.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func BMR(weightKg, heightCm float64, ageYears int, gender Gender) int {
	base := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if gender == GenderMale {
		return int(Round(base + 5))
	}
	return int(Round(base - 161))
}

func TDEE(bmr int, activity ActivityLevel) int {
	multiplier, ok := activityMultipliers[activity]
	if !ok {
		multiplier = activityMultipliers[ActivitySedentary]
	}
	return int(Round(float64(bmr) * multiplier))
}

func TargetCalories(tdee int, goal Goal) int {
	target := tdee + goalModifiers[goal]
	if target < MinTargetCalories {
		return MinTargetCalories
	}
	return target
}

func Macros(calories int) MacroTargets {
	return MacrosWithSplit(calories, 30, 40, 30)
}

func MacrosWithSplit(calories int, proteinPct, carbsPct, fatPct float64) MacroTargets {
	kcal := float64(calories)
	return MacroTargets{
		ProteinG: int(Round(kcal * (proteinPct / 100) / 4)),
		CarbsG:   int(Round(kcal * (carbsPct / 100) / 4)),
		FatG:     int(Round(kcal * (fatPct / 100) / 9)),
	}
}

// Scale converts per-100 values into totals for amount. Values are
// multiplied before rounding; stored totals depend on that order.
func Scale(per100 Per100, amount float64) Totals {
	m := amount / 100
	return Totals{
		Kcal:     int(Round(per100.Kcal * m)),
		ProteinG: Round1(per100.ProteinG * m),
		CarbsG:   Round1(per100.CarbsG * m),
		FatG:     Round1(per100.FatG * m),
	}
}

// Per100FromTotals inverts Scale. A non-positive amount is read as 100.
func Per100FromTotals(t Totals, amount float64) Per100 {
	if amount <= 0 {
		amount = 100
	}
	return Per100{
		Kcal:     Round(float64(t.Kcal) / amount * 100),
		ProteinG: Round1(t.ProteinG / amount * 100),
		CarbsG:   Round1(t.CarbsG / amount * 100),
		FatG:     Round1(t.FatG / amount * 100),
	}
}

func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	h := heightCm / 100
	return Round1(weightKg / (h * h))
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

func ProgressPct(current, target float64) int {
	if target == 0 {
		return 0
	}
	pct := int(Round(current / target * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func WaterTargetMl(weightKg float64) int {
	return int(Round(weightKg * 33))
}

// AgeOn returns completed years between birth and today.
func AgeOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func ParseGender(v string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("invalid gender %q (expected male|female)", v)
	}
}

func ParseActivityLevel(v string) (ActivityLevel, error) {
	key := strings.ToLower(strings.TrimSpace(v))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "sedentary":
		return ActivitySedentary, nil
	case "light":
		return ActivityLight, nil
	case "moderate":
		return ActivityModerate, nil
	case "active":
		return ActivityActive, nil
	case "veryactive":
		return ActivityVeryActive, nil
	default:
		return "", fmt.Errorf("invalid activity level %q (expected sedentary|light|moderate|active|very-active)", v)
	}
}

func ParseGoal(v string) (Goal, error) {
	switch Goal(strings.ToLower(strings.TrimSpace(v))) {
	case GoalLose:
		return GoalLose, nil
	case GoalMaintain:
		return GoalMaintain, nil
	case GoalGain:
		return GoalGain, nil
	default:
		return "", fmt.Errorf("invalid goal %q (expected lose|maintain|gain)", v)
	}
}
