package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
)

// Store is the read side of the gateway used for reports.
type Store interface {
	ListMeals(ctx context.Context, f gateway.MealFilter) ([]model.MealEntry, error)
	ListWater(ctx context.Context, f gateway.WaterFilter) ([]model.WaterEntry, error)
	ListWeights(ctx context.Context, f gateway.WeightFilter) ([]model.WeightEntry, error)
}

type Report struct {
	Period      Period           `json:"period"`
	FromDate    string           `json:"from_date"`
	ToDate      string           `json:"to_date"`
	Days        []DayBucket      `json:"days"`
	Averages    Averages         `json:"averages"`
	HighestDay  *DayBucket       `json:"highest_day,omitempty"`
	LowestDay   *DayBucket       `json:"lowest_day,omitempty"`
	Adherence   AdherenceSummary `json:"adherence"`
	WeightTrend []WeightPoint    `json:"weight_trend"`
	GeneratedAt time.Time        `json:"generated_at"`
	// Stale is set when this is the last good report and the latest fetch failed.
	Stale bool `json:"stale"`
}

// AdherenceTolerance is the fraction of the calorie target counted as on goal.
const AdherenceTolerance = 0.10

type Service struct {
	store Store
	now   func() time.Time
	log   *slog.Logger

	mu   sync.Mutex
	last map[string]Report
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, log: slog.Default(), last: map[string]Report{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report builds the report for period. When the store fails the last
// good report for the same user and period is returned marked Stale,
// together with the error.
func (s *Service) Report(ctx context.Context, userID string, period Period, calorieTarget int) (Report, error) {
	cacheKey := userID + "|" + string(period)
	report, err := s.build(ctx, userID, period, calorieTarget)
	if err != nil {
		s.log.Warn("analytics fetch failed", "user", userID, "period", string(period), "err", err)
		s.mu.Lock()
		prev, ok := s.last[cacheKey]
		s.mu.Unlock()
		if ok {
			prev.Stale = true
			return prev, err
		}
		return Report{Period: period, Stale: true}, err
	}
	s.mu.Lock()
	s.last[cacheKey] = report
	s.mu.Unlock()
	return report, nil
}

func (s *Service) build(ctx context.Context, userID string, period Period, calorieTarget int) (Report, error) {
	today := s.now()
	from, to, err := Range(period, today)
	if err != nil {
		return Report{}, err
	}
	fromKey, toKey := model.FormatDate(from), model.FormatDate(to)

	meals, err := s.store.ListMeals(ctx, gateway.MealFilter{UserID: userID, FromDate: fromKey, ToDate: toKey})
	if err != nil {
		return Report{}, fmt.Errorf("load meals for analytics: %w", err)
	}
	water, err := s.store.ListWater(ctx, gateway.WaterFilter{UserID: userID, FromDate: fromKey, ToDate: toKey})
	if err != nil {
		return Report{}, fmt.Errorf("load water for analytics: %w", err)
	}
	weights, err := s.store.ListWeights(ctx, gateway.WeightFilter{UserID: userID})
	if err != nil {
		return Report{}, fmt.Errorf("load weights for analytics: %w", err)
	}

	days := PeriodSeries(meals, water, from, to, today)
	high, low := Extremes(days)
	return Report{
		Period:      period,
		FromDate:    fromKey,
		ToDate:      toKey,
		Days:        days,
		Averages:    ComputeAverages(days),
		HighestDay:  high,
		LowestDay:   low,
		Adherence:   Adherence(days, calorieTarget, AdherenceTolerance),
		WeightTrend: WeightTrend(weights),
		GeneratedAt: today,
	}, nil
}
