package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

type Totals struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
}

type DayBucket struct {
	Date     string  `json:"date"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
	WaterMl  int     `json:"water_ml"`
	HasData  bool    `json:"has_data"`
}

type Averages struct {
	Calories     int     `json:"avg_calories"`
	Protein      float64 `json:"avg_protein_g"`
	Carbs        float64 `json:"avg_carbs_g"`
	Fat          float64 `json:"avg_fat_g"`
	WaterMl      int     `json:"avg_water_ml"`
	TotalDays    int     `json:"total_days"`
	DaysWithData int     `json:"days_with_data"`
}

type WeightPoint struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

// DailyTotals sums live entries and rounds once, at the end.
func DailyTotals(entries []model.MealEntry) Totals {
	var kcal, protein, carbs, fat float64
	for _, e := range entries {
		if e.DeletedAt != nil {
			continue
		}
		kcal += float64(e.CalculatedKcal)
		protein += e.CalculatedProtein
		carbs += e.CalculatedCarbs
		fat += e.CalculatedFat
	}
	return Totals{
		Calories: int(nutrition.Round(kcal)),
		Protein:  nutrition.Round1(protein),
		Carbs:    nutrition.Round1(carbs),
		Fat:      nutrition.Round1(fat),
	}
}

// PeriodSeries returns one bucket per calendar day from from through the
// earlier of to and today, zero-filled where nothing was logged.
func PeriodSeries(meals []model.MealEntry, water []model.WaterEntry, from, to, today time.Time) []DayBucket {
	mealsByDay := map[string][]model.MealEntry{}
	for _, e := range meals {
		if e.DeletedAt != nil {
			continue
		}
		mealsByDay[e.EntryDate] = append(mealsByDay[e.EntryDate], e)
	}
	waterByDay := map[string][]model.WaterEntry{}
	for _, w := range water {
		if w.DeletedAt != nil {
			continue
		}
		waterByDay[w.EntryDate] = append(waterByDay[w.EntryDate], w)
	}

	start := beginningOfDay(from)
	end := beginningOfDay(to)
	if t := beginningOfDay(today); t.Before(end) {
		end = t
	}

	out := make([]DayBucket, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := model.FormatDate(d)
		dayMeals := mealsByDay[key]
		dayWater := waterByDay[key]
		totals := DailyTotals(dayMeals)
		bucket := DayBucket{
			Date:     key,
			Calories: totals.Calories,
			Protein:  totals.Protein,
			Carbs:    totals.Carbs,
			Fat:      totals.Fat,
			HasData:  len(dayMeals) > 0 || len(dayWater) > 0,
		}
		for _, w := range dayWater {
			bucket.WaterMl += w.AmountMl
		}
		out = append(out, bucket)
	}
	return out
}

// ComputeAverages averages each metric over the days where that metric
// is non-zero. A metric with no such day averages to zero.
func ComputeAverages(days []DayBucket) Averages {
	var (
		kcal, protein, carbs, fat, water      float64
		nKcal, nProtein, nCarbs, nFat, nWater int
		withData                              int
	)
	for _, d := range days {
		if d.HasData {
			withData++
		}
		if d.Calories > 0 {
			kcal += float64(d.Calories)
			nKcal++
		}
		if d.Protein > 0 {
			protein += d.Protein
			nProtein++
		}
		if d.Carbs > 0 {
			carbs += d.Carbs
			nCarbs++
		}
		if d.Fat > 0 {
			fat += d.Fat
			nFat++
		}
		if d.WaterMl > 0 {
			water += float64(d.WaterMl)
			nWater++
		}
	}
	return Averages{
		Calories:     int(nutrition.Round(kcal / denom(nKcal))),
		Protein:      nutrition.Round1(protein / denom(nProtein)),
		Carbs:        nutrition.Round1(carbs / denom(nCarbs)),
		Fat:          nutrition.Round1(fat / denom(nFat)),
		WaterMl:      int(nutrition.Round(water / denom(nWater))),
		TotalDays:    len(days),
		DaysWithData: withData,
	}
}

func denom(n int) float64 {
	if n == 0 {
		return 1
	}
	return float64(n)
}

// WeightTrend lists live weights oldest first without filling gaps.
func WeightTrend(entries []model.WeightEntry) []WeightPoint {
	live := make([]model.WeightEntry, 0, len(entries))
	for _, e := range entries {
		if e.DeletedAt == nil {
			live = append(live, e)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].EntryDate < live[j].EntryDate
	})
	out := make([]WeightPoint, 0, len(live))
	for _, e := range live {
		out = append(out, WeightPoint{Date: e.EntryDate, WeightKg: e.WeightKg})
	}
	return out
}

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "3months"
)

const quarterDays = 90

func ParsePeriod(v string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "week", "":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "3months", "quarter", "3m":
		return PeriodQuarter, nil
	default:
		return "", fmt.Errorf("invalid period %q (expected week|month|3months)", v)
	}
}

// Range returns the first and last calendar day of period around today.
// Weeks start on Monday; the quarter is a fixed 90-day lookback.
func Range(period Period, today time.Time) (time.Time, time.Time, error) {
	day := beginningOfDay(today)
	switch period {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6), nil
	case PeriodMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1), nil
	case PeriodQuarter:
		return day.AddDate(0, 0, -quarterDays), day, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unsupported period %q", period)
	}
}

type AdherenceSummary struct {
	EvaluatedDays  int     `json:"evaluated_days"`
	WithinGoalDays int     `json:"within_goal_days"`
	PercentWithin  float64 `json:"percent_within_goal"`
}

// Adherence counts days with data whose calories land within tolerance
// (a fraction, e.g. 0.1) of target.
func Adherence(days []DayBucket, target int, tolerance float64) AdherenceSummary {
	var s AdherenceSummary
	if target <= 0 {
		return s
	}
	for _, d := range days {
		if d.Calories == 0 {
			continue
		}
		s.EvaluatedDays++
		if math.Abs(float64(d.Calories-target)) <= float64(target)*tolerance {
			s.WithinGoalDays++
		}
	}
	if s.EvaluatedDays > 0 {
		s.PercentWithin = nutrition.Round1(float64(s.WithinGoalDays) / float64(s.EvaluatedDays) * 100)
	}
	return s
}

// Extremes returns the highest and lowest calorie days among days with
// calories logged.
func Extremes(days []DayBucket) (*DayBucket, *DayBucket) {
	var high, low *DayBucket
	for i := range days {
		d := &days[i]
		if d.Calories == 0 {
			continue
		}
		if high == nil || d.Calories > high.Calories {
			high = d
		}
		if low == nil || d.Calories < low.Calories {
			low = d
		}
	}
	return high, low
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
