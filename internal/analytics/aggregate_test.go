package analytics

import (
	"testing"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestDailyTotalsSkipsSoftDeletedAndRoundsOnce(t *testing.T) {
	t.Parallel()

	deleted := time.Now()
	entries := []model.MealEntry{
		{CalculatedKcal: 200, CalculatedProtein: 10.04, CalculatedCarbs: 20.04, CalculatedFat: 5.04},
		{CalculatedKcal: 150, CalculatedProtein: 10.04, CalculatedCarbs: 20.04, CalculatedFat: 5.04},
		{CalculatedKcal: 900, CalculatedProtein: 50, CalculatedCarbs: 50, CalculatedFat: 50, DeletedAt: &deleted},
	}
	got := DailyTotals(entries)
	if got.Calories != 350 {
		t.Fatalf("expected deleted entry excluded, got %d kcal", got.Calories)
	}
	// 20.08 rounds to 20.1; per-entry rounding would give 20.0.
	if got.Protein != 20.1 || got.Carbs != 40.1 || got.Fat != 10.1 {
		t.Fatalf("unexpected rounded totals: %+v", got)
	}
}

func TestPeriodSeriesZeroFillsAndStopsAtToday(t *testing.T) {
	t.Parallel()

	meals := []model.MealEntry{{EntryDate: "2026-10-13", CalculatedKcal: 500}}
	water := []model.WaterEntry{{EntryDate: "2026-10-14", AmountMl: 250}, {EntryDate: "2026-10-14", AmountMl: 500}}
	days := PeriodSeries(meals, water, day(2026, 10, 12), day(2026, 10, 18), day(2026, 10, 15))
	if len(days) != 4 {
		t.Fatalf("expected 4 buckets through today, got %d", len(days))
	}
	if days[0].HasData || days[0].Calories != 0 {
		t.Fatalf("expected empty first day, got %+v", days[0])
	}
	if !days[1].HasData || days[1].Calories != 500 {
		t.Fatalf("unexpected meal day: %+v", days[1])
	}
	if !days[2].HasData || days[2].WaterMl != 750 || days[2].Calories != 0 {
		t.Fatalf("expected water-only day with data flag, got %+v", days[2])
	}
	if days[3].Date != "2026-10-15" {
		t.Fatalf("expected last bucket today, got %s", days[3].Date)
	}
}

func TestAveragesExcludeOnlyTheirOwnZeroDays(t *testing.T) {
	t.Parallel()

	days := []DayBucket{
		{Date: "A", Calories: 0, WaterMl: 500, HasData: true},
		{Date: "B", Calories: 2000, WaterMl: 0, HasData: true},
		{Date: "C", Calories: 1800, WaterMl: 1800, HasData: true},
	}
	got := ComputeAverages(days)
	if got.Calories != 1900 {
		t.Fatalf("expected avg calories 1900, got %d", got.Calories)
	}
	if got.WaterMl != 1150 {
		t.Fatalf("expected avg water 1150, got %d", got.WaterMl)
	}
	if got.TotalDays != 3 || got.DaysWithData != 3 {
		t.Fatalf("unexpected day counts: %+v", got)
	}
}

func TestAveragesWithNoDataAreZero(t *testing.T) {
	t.Parallel()

	got := ComputeAverages([]DayBucket{{Date: "A"}, {Date: "B"}})
	if got.Calories != 0 || got.Protein != 0 || got.WaterMl != 0 || got.DaysWithData != 0 {
		t.Fatalf("expected zero averages, got %+v", got)
	}
}

func TestWeightTrendSortsAscendingAndSkipsDeleted(t *testing.T) {
	t.Parallel()

	deleted := time.Now()
	got := WeightTrend([]model.WeightEntry{
		{EntryDate: "2026-10-17", WeightKg: 79.5},
		{EntryDate: "2026-10-01", WeightKg: 81},
		{EntryDate: "2026-10-10", WeightKg: 99, DeletedAt: &deleted},
	})
	if len(got) != 2 || got[0].Date != "2026-10-01" || got[1].WeightKg != 79.5 {
		t.Fatalf("unexpected trend: %+v", got)
	}
}

func TestRangeWeekStartsMonday(t *testing.T) {
	t.Parallel()

	// 2026-10-18 is a Sunday.
	from, to, err := Range(PeriodWeek, day(2026, 10, 18))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if model.FormatDate(from) != "2026-10-12" || model.FormatDate(to) != "2026-10-18" {
		t.Fatalf("unexpected week range %s..%s", model.FormatDate(from), model.FormatDate(to))
	}
	from, _, _ = Range(PeriodWeek, day(2026, 10, 12))
	if model.FormatDate(from) != "2026-10-12" {
		t.Fatalf("expected Monday to start its own week, got %s", model.FormatDate(from))
	}
}

func TestRangeMonthAndQuarter(t *testing.T) {
	t.Parallel()

	from, to, err := Range(PeriodMonth, day(2026, 2, 10))
	if err != nil {
		t.Fatalf("range month: %v", err)
	}
	if model.FormatDate(from) != "2026-02-01" || model.FormatDate(to) != "2026-02-28" {
		t.Fatalf("unexpected month range %s..%s", model.FormatDate(from), model.FormatDate(to))
	}
	from, to, err = Range(PeriodQuarter, day(2026, 10, 18))
	if err != nil {
		t.Fatalf("range quarter: %v", err)
	}
	if model.FormatDate(from) != "2026-07-20" || model.FormatDate(to) != "2026-10-18" {
		t.Fatalf("unexpected quarter range %s..%s", model.FormatDate(from), model.FormatDate(to))
	}
}

func TestAdherenceAndExtremes(t *testing.T) {
	t.Parallel()

	days := []DayBucket{{Calories: 0}, {Calories: 1950}, {Calories: 2600}, {Calories: 2100}}
	a := Adherence(days, 2000, AdherenceTolerance)
	if a.EvaluatedDays != 3 || a.WithinGoalDays != 2 || a.PercentWithin != 66.7 {
		t.Fatalf("unexpected adherence: %+v", a)
	}
	high, low := Extremes(days)
	if high == nil || high.Calories != 2600 || low == nil || low.Calories != 1950 {
		t.Fatalf("unexpected extremes: %v %v", high, low)
	}
}
