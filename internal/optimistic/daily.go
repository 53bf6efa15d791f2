package optimistic

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/analytics"
	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/google/uuid"
)

// Store is the part of the gateway a DailyLog writes through.
type Store interface {
	gateway.MealStore
	gateway.WaterStore
	gateway.WeightStore
}

// DailyLog is the editable view of one user's meals, water and weight
// for one calendar date.
type DailyLog struct {
	store      Store
	userID     string
	date       string
	now        func() time.Time
	tempID     func() string
	log        *slog.Logger
	onRollback RollbackFunc

	meals   *Engine[model.MealEntry]
	water   *Engine[model.WaterEntry]
	weights *Engine[model.WeightEntry]

	mu      sync.RWMutex
	loadErr error
}

type Option func(*DailyLog)

func WithClock(now func() time.Time) Option {
	return func(d *DailyLog) { d.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(d *DailyLog) {
		if log != nil {
			d.log = log
		}
	}
}

// WithRollbackHandler receives every reverted change in addition to the log.
func WithRollbackHandler(fn RollbackFunc) Option {
	return func(d *DailyLog) { d.onRollback = fn }
}

func WithTempIDs(fn func() string) Option {
	return func(d *DailyLog) { d.tempID = fn }
}

func NewTempID() string {
	return "temp-" + uuid.NewString()
}

func NewDailyLog(store Store, userID, date string, opts ...Option) *DailyLog {
	d := &DailyLog{
		store:  store,
		userID: userID,
		date:   date,
		now:    time.Now,
		tempID: NewTempID,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	logged := LogRollbacks(d.log)
	notify := func(op Op, key string, err error) {
		logged(op, key, err)
		if d.onRollback != nil {
			d.onRollback(op, key, err)
		}
	}
	d.meals = NewEngine[model.MealEntry](nil, notify)
	d.water = NewEngine[model.WaterEntry](nil, notify)
	d.weights = NewEngine[model.WeightEntry](nil, notify)
	return d
}

func (d *DailyLog) UserID() string { return d.userID }
func (d *DailyLog) Date() string   { return d.date }

// Load replaces the collections with the stored state. On failure the
// previous collections stay visible and Err reports the failure.
func (d *DailyLog) Load(ctx context.Context) error {
	err := d.load(ctx)
	d.mu.Lock()
	d.loadErr = err
	d.mu.Unlock()
	if err != nil {
		d.log.Warn("daily log load failed", "user", d.userID, "date", d.date, "err", err)
	}
	return err
}

func (d *DailyLog) load(ctx context.Context) error {
	meals, err := d.store.ListMeals(ctx, gateway.MealFilter{UserID: d.userID, EntryDate: d.date, WithFood: true, Order: gateway.OrderAsc})
	if err != nil {
		return fmt.Errorf("load meals: %w", err)
	}
	water, err := d.store.ListWater(ctx, gateway.WaterFilter{UserID: d.userID, FromDate: d.date, ToDate: d.date, Order: gateway.OrderAsc})
	if err != nil {
		return fmt.Errorf("load water: %w", err)
	}
	latest, err := d.store.FindWeight(ctx, gateway.WeightFilter{UserID: d.userID, Order: gateway.OrderDesc})
	if err != nil {
		return fmt.Errorf("load latest weight: %w", err)
	}
	d.meals.Collection().Replace(meals)
	d.water.Collection().Replace(water)
	weights := []model.WeightEntry{}
	if latest != nil {
		weights = append(weights, *latest)
	}
	d.weights.Collection().Replace(weights)
	return nil
}

// Err returns the last load failure, if the shown data is stale.
func (d *DailyLog) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loadErr
}

func (d *DailyLog) Meals() []model.MealEntry { return d.meals.Items() }

func (d *DailyLog) MealsBySlot() map[model.MealType][]model.MealEntry {
	out := map[model.MealType][]model.MealEntry{}
	for _, e := range d.meals.Items() {
		out[e.MealType] = append(out[e.MealType], e)
	}
	return out
}

func (d *DailyLog) Totals() analytics.Totals {
	return analytics.DailyTotals(d.meals.Items())
}

func (d *DailyLog) Water() []model.WaterEntry { return d.water.Items() }

func (d *DailyLog) WaterTotalMl() int {
	total := 0
	for _, w := range d.water.Items() {
		total += w.AmountMl
	}
	return total
}

// LatestWeight is the most recent weight by date, or nil.
func (d *DailyLog) LatestWeight() *model.WeightEntry {
	items := d.weights.Items()
	if len(items) == 0 {
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].EntryDate != items[j].EntryDate {
			return items[i].EntryDate > items[j].EntryDate
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	latest := items[0]
	return &latest
}

// AddMeal records e on this log's date. Totals must already be scaled
// to the amount. The entry is visible immediately under a temporary id.
func (d *DailyLog) AddMeal(ctx context.Context, e model.MealEntry) (model.MealEntry, error) {
	e.UserID = d.userID
	e.EntryDate = d.date
	if e.Source == "" {
		e.Source = model.SourceManual
	}
	if err := model.ValidateMealEntry(e); err != nil {
		return model.MealEntry{}, err
	}
	now := d.now()
	e.ID = d.tempID()
	e.CreatedAt, e.UpdatedAt = now, now
	e.DeletedAt = nil

	return d.meals.Add(ctx, e, func(ctx context.Context, c model.MealEntry) (model.MealEntry, error) {
		food := c.Food
		c.ID = ""
		saved, err := d.store.InsertMeal(ctx, c)
		if err != nil {
			return model.MealEntry{}, err
		}
		saved.Food = food
		return saved, nil
	})
}

// UpdateMeal applies p to the meal with id. Callers recompute totals
// when the amount or per-100 values change.
func (d *DailyLog) UpdateMeal(ctx context.Context, id string, p model.MealPatch) error {
	if err := model.ValidateMealPatch(p); err != nil {
		return err
	}
	now := d.now()
	return d.meals.Update(ctx, id,
		func(e model.MealEntry) model.MealEntry {
			e = p.ApplyTo(e)
			e.UpdatedAt = now
			return e
		},
		func(ctx context.Context, key string) error {
			return d.store.UpdateMeal(ctx, d.userID, key, p)
		})
}

func (d *DailyLog) RemoveMeal(ctx context.Context, id string) error {
	at := d.now()
	return d.meals.Remove(ctx, id, func(ctx context.Context, key string) error {
		return d.store.SoftDeleteMeal(ctx, d.userID, key, at)
	})
}

func (d *DailyLog) AddWater(ctx context.Context, amountMl int) (model.WaterEntry, error) {
	now := d.now()
	e := model.WaterEntry{UserID: d.userID, AmountMl: amountMl, EntryDate: d.date, EntryTime: now}
	if err := model.ValidateWaterEntry(e); err != nil {
		return model.WaterEntry{}, err
	}
	e.ID = d.tempID()
	e.CreatedAt = now

	return d.water.Add(ctx, e, func(ctx context.Context, c model.WaterEntry) (model.WaterEntry, error) {
		c.ID = ""
		return d.store.InsertWater(ctx, c)
	})
}

func (d *DailyLog) RemoveWater(ctx context.Context, id string) error {
	at := d.now()
	return d.water.Remove(ctx, id, func(ctx context.Context, key string) error {
		return d.store.SoftDeleteWater(ctx, d.userID, key, at)
	})
}

func (d *DailyLog) AddWeight(ctx context.Context, weightKg float64, note string) (model.WeightEntry, error) {
	e := model.WeightEntry{UserID: d.userID, WeightKg: weightKg, EntryDate: d.date, Note: note}
	if err := model.ValidateWeightEntry(e); err != nil {
		return model.WeightEntry{}, err
	}
	e.ID = d.tempID()
	e.CreatedAt = d.now()

	return d.weights.Add(ctx, e, func(ctx context.Context, c model.WeightEntry) (model.WeightEntry, error) {
		c.ID = ""
		return d.store.InsertWeight(ctx, c)
	})
}

// RemoveWeight soft-deletes a weight entry. When it was the only one
// held, the next latest stored weight is fetched to take its place.
func (d *DailyLog) RemoveWeight(ctx context.Context, id string) error {
	at := d.now()
	err := d.weights.Remove(ctx, id, func(ctx context.Context, key string) error {
		return d.store.SoftDeleteWeight(ctx, d.userID, key, at)
	})
	if err != nil {
		return err
	}
	if d.weights.Collection().Len() > 0 {
		return nil
	}
	latest, err := d.store.FindWeight(ctx, gateway.WeightFilter{UserID: d.userID, Order: gateway.OrderDesc})
	if err != nil {
		d.log.Warn("refresh latest weight failed", "user", d.userID, "err", err)
		return nil
	}
	if latest != nil {
		d.weights.Collection().Apply(Append(*latest))
	}
	return nil
}
