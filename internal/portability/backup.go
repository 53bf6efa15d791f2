package portability

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
)

// Backup is the import side of Data. Record fields are loose so files
// written by earlier exporters still load.
type Backup struct {
	Version       string             `json:"version"`
	ExportedAt    string             `json:"exportedAt"`
	MealEntries   []mealRecord       `json:"mealEntries"`
	WaterEntries  []model.WaterEntry `json:"waterEntries"`
	WeightEntries []weightRecord     `json:"weightEntries"`
	Foods         []foodRecord       `json:"foods"`
}

type foodRecord struct {
	model.Food
	// Either an object or a one-element array of nutrition rows.
	RawNutrition json.RawMessage `json:"food_nutrition"`
}

func (r foodRecord) food() model.Food {
	f := r.Food
	f.ID = ""
	f.Nutrition = nil
	raw := bytes.TrimSpace(r.RawNutrition)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		var rows []model.Nutrition
		if json.Unmarshal(raw, &rows) == nil && len(rows) > 0 {
			f.Nutrition = &rows[0]
		}
	default:
		var n model.Nutrition
		if json.Unmarshal(raw, &n) == nil {
			f.Nutrition = &n
		}
	}
	return f
}

type mealRecord struct {
	model.MealEntry
	FoodName string  `json:"food_name"`
	AmountG  float64 `json:"amount_g"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

func (r mealRecord) entry(userID string) model.MealEntry {
	e := model.MealEntry{
		UserID:            userID,
		CustomName:        strings.TrimSpace(firstString(r.CustomName, r.FoodName)),
		MealType:          r.MealType,
		AmountGMl:         firstFloat(r.AmountGMl, r.AmountG, 100),
		CalculatedKcal:    r.CalculatedKcal,
		CalculatedProtein: firstFloat(r.CalculatedProtein, r.ProteinG),
		CalculatedCarbs:   firstFloat(r.CalculatedCarbs, r.CarbsG),
		CalculatedFat:     firstFloat(r.CalculatedFat, r.FatG),
		EntryDate:         r.EntryDate,
		Note:              r.Note,
		Source:            model.SourceManual,
	}
	if e.CalculatedKcal == 0 {
		e.CalculatedKcal = r.Calories
	}
	if slot, err := model.ParseMealType(string(r.MealType)); err == nil {
		e.MealType = slot
	}
	if src, err := model.ParseSource(string(r.Source)); err == nil {
		e.Source = src
	}
	return e
}

type weightRecord struct {
	model.WeightEntry
	RecordedAt *time.Time `json:"recorded_at"`
	Notes      string     `json:"notes"`
}

func (r weightRecord) entry(userID string) model.WeightEntry {
	e := model.WeightEntry{
		UserID:    userID,
		WeightKg:  r.WeightKg,
		EntryDate: r.EntryDate,
		Note:      firstString(r.Note, r.Notes),
	}
	if e.EntryDate == "" && r.RecordedAt != nil {
		e.EntryDate = model.FormatDate(r.RecordedAt.UTC())
	}
	return e
}

func firstString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
