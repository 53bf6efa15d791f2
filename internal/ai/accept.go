package ai

import (
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

const defaultAmount = 100

// Accept turns recognized foods into unsaved meals for slot on date.
// Foods without a name are dropped; confidence is display-only.
func Accept(rec Recognition, slot model.MealType, date string, source model.Source) []model.MealEntry {
	out := make([]model.MealEntry, 0, len(rec.Foods))
	for _, f := range rec.Foods {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		amount := f.AmountGMl
		if amount <= 0 {
			amount = defaultAmount
		}
		e := model.MealEntry{
			CustomName: name,
			MealType:   slot,
			AmountGMl:  amount,
			EntryDate:  date,
			Source:     source,
		}
		e.SetTotals(nutrition.Scale(f.Per100(), amount))
		out = append(out, e)
	}
	return out
}
