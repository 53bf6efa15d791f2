package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
)

type stubStore struct {
	meals   []model.MealEntry
	water   []model.WaterEntry
	weights []model.WeightEntry
	err     error
	lastMF  gateway.MealFilter
}

func (s *stubStore) ListMeals(_ context.Context, f gateway.MealFilter) ([]model.MealEntry, error) {
	s.lastMF = f
	return s.meals, s.err
}

func (s *stubStore) ListWater(context.Context, gateway.WaterFilter) ([]model.WaterEntry, error) {
	return s.water, s.err
}

func (s *stubStore) ListWeights(context.Context, gateway.WeightFilter) ([]model.WeightEntry, error) {
	return s.weights, s.err
}

func TestServiceReportKeepsLastGoodOnFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.Local)
	st := &stubStore{
		meals:   []model.MealEntry{{EntryDate: "2026-10-13", CalculatedKcal: 1800}},
		weights: []model.WeightEntry{{EntryDate: "2026-10-01", WeightKg: 80}},
	}
	svc := NewService(st, WithClock(func() time.Time { return now }))

	first, err := svc.Report(context.Background(), "u1", PeriodWeek, 2000)
	if err != nil {
		t.Fatalf("first report: %v", err)
	}
	if first.Stale || first.FromDate != "2026-10-12" || first.ToDate != "2026-10-18" {
		t.Fatalf("unexpected first report: %+v", first)
	}
	if st.lastMF.FromDate != "2026-10-12" || st.lastMF.ToDate != "2026-10-18" {
		t.Fatalf("expected filter bounded to the week, got %+v", st.lastMF)
	}
	if len(first.Days) != 3 || first.Averages.Calories != 1800 || len(first.WeightTrend) != 1 {
		t.Fatalf("unexpected report content: %+v", first)
	}

	st.err = errors.New("network down")
	second, err := svc.Report(context.Background(), "u1", PeriodWeek, 2000)
	if err == nil {
		t.Fatalf("expected error to be surfaced")
	}
	if !second.Stale || second.Averages.Calories != 1800 || len(second.Days) != 3 {
		t.Fatalf("expected stale copy of last good report, got %+v", second)
	}
}

func TestServiceReportWithoutHistoryIsEmptyAndStale(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubStore{err: errors.New("boom")})
	got, err := svc.Report(context.Background(), "u1", PeriodMonth, 0)
	if err == nil || !got.Stale || len(got.Days) != 0 {
		t.Fatalf("expected empty stale report and error, got %+v %v", got, err)
	}
}
