// Package portability exports a user's data as a JSON backup and merges
// such backups back in without duplicating existing records.
package portability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
)

const Version = "1.0.0"

var ErrInvalidBackup = errors.New("invalid backup file: version and exportedAt are required")

type Data struct {
	Version                 string                         `json:"version"`
	ExportedAt              time.Time                      `json:"exportedAt"`
	Profile                 *model.Profile                 `json:"profile"`
	MealEntries             []model.MealEntry              `json:"mealEntries"`
	WaterEntries            []model.WaterEntry             `json:"waterEntries"`
	WeightEntries           []model.WeightEntry            `json:"weightEntries"`
	Foods                   []model.Food                   `json:"foods"`
	NotificationPreferences []model.NotificationPreference `json:"notificationPreferences"`
}

type ImportReport struct {
	Foods    int      `json:"foods"`
	Meals    int      `json:"meals"`
	Water    int      `json:"water"`
	Weight   int      `json:"weight"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ImportReport) fail(format string, args ...any) {
	r.Failed++
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type Service struct {
	store  gateway.Gateway
	userID string
	now    func() time.Time
	log    *slog.Logger
}

func NewService(store gateway.Gateway, userID string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, userID: userID, now: time.Now, log: log}
}

// WithClock replaces the export timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Export collects every record owned by the user, soft-deleted rows included.
func (s *Service) Export(ctx context.Context) (Data, error) {
	out := Data{Version: Version, ExportedAt: s.now().UTC()}
	var err error

	if out.Profile, err = s.store.GetProfile(ctx, s.userID); err != nil {
		return Data{}, fmt.Errorf("export profile: %w", err)
	}
	if out.MealEntries, err = s.store.ListMeals(ctx, gateway.MealFilter{UserID: s.userID, IncludeDeleted: true}); err != nil {
		return Data{}, fmt.Errorf("export meals: %w", err)
	}
	if out.WaterEntries, err = s.store.ListWater(ctx, gateway.WaterFilter{UserID: s.userID, IncludeDeleted: true}); err != nil {
		return Data{}, fmt.Errorf("export water: %w", err)
	}
	if out.WeightEntries, err = s.store.ListWeights(ctx, gateway.WeightFilter{UserID: s.userID, IncludeDeleted: true}); err != nil {
		return Data{}, fmt.Errorf("export weights: %w", err)
	}
	if out.Foods, err = s.store.ListFoods(ctx, gateway.FoodFilter{CreatedBy: s.userID}); err != nil {
		return Data{}, fmt.Errorf("export foods: %w", err)
	}
	if out.NotificationPreferences, err = s.store.ListPreferences(ctx, s.userID); err != nil {
		return Data{}, fmt.Errorf("export notification preferences: %w", err)
	}
	s.log.Info("data exported", "user", s.userID,
		"meals", len(out.MealEntries), "water", len(out.WaterEntries), "weight", len(out.WeightEntries), "foods", len(out.Foods))
	return out, nil
}

func (d Data) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode reads a backup, accepting the field spellings of older exports.
func Decode(r io.Reader) (Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	if strings.TrimSpace(b.Version) == "" || strings.TrimSpace(b.ExportedAt) == "" {
		return Backup{}, ErrInvalidBackup
	}
	return b, nil
}

// Import merges b into the user's data. Records are matched by natural key:
// foods by name, meals by date, name and slot, water by entry time and
// weight by date. A failing record is reported and the rest continue.
func (s *Service) Import(ctx context.Context, b Backup) (ImportReport, error) {
	if strings.TrimSpace(b.Version) == "" || strings.TrimSpace(b.ExportedAt) == "" {
		return ImportReport{}, ErrInvalidBackup
	}
	var report ImportReport

	foodIDs := s.importFoods(ctx, b.Foods, &report)
	s.importMeals(ctx, b.MealEntries, foodIDs, &report)
	s.importWater(ctx, b.WaterEntries, &report)
	s.importWeights(ctx, b.WeightEntries, &report)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	s.log.Info("data imported", "user", s.userID,
		"foods", report.Foods, "meals", report.Meals, "water", report.Water, "weight", report.Weight,
		"skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

type importedFood struct {
	id   string
	name string
}

func (s *Service) importFoods(ctx context.Context, foods []foodRecord, report *ImportReport) map[string]importedFood {
	ids := make(map[string]importedFood, len(foods))
	for _, rec := range foods {
		if ctx.Err() != nil {
			return ids
		}
		food := rec.food()
		if strings.TrimSpace(food.Name) == "" {
			report.fail("food %q: name is required", rec.ID)
			continue
		}
		existing, err := s.store.FindFood(ctx, gateway.FoodFilter{Name: food.Name, CreatedBy: s.userID})
		if err != nil {
			report.fail("food %q: %v", food.Name, err)
			continue
		}
		if existing != nil {
			ids[rec.ID] = importedFood{id: existing.ID, name: existing.Name}
			report.Skipped++
			continue
		}
		food.CreatedBy = s.userID
		food.PopularityCount = 0
		saved, err := s.store.InsertFood(ctx, food)
		if err != nil {
			report.fail("food %q: %v", food.Name, err)
			continue
		}
		ids[rec.ID] = importedFood{id: saved.ID, name: saved.Name}
		report.Foods++
	}
	return ids
}

func (s *Service) importMeals(ctx context.Context, meals []mealRecord, foods map[string]importedFood, report *ImportReport) {
	for _, rec := range meals {
		if ctx.Err() != nil {
			return
		}
		if rec.DeletedAt != nil {
			report.Skipped++
			continue
		}
		entry := rec.entry(s.userID)
		if f, ok := foods[rec.FoodID]; ok {
			entry.FoodID = f.id
			if entry.CustomName == "" {
				entry.CustomName = f.name
			}
		}
		if err := model.ValidateMealEntry(entry); err != nil {
			report.fail("meal %s %s: %v", entry.EntryDate, entry.CustomName, err)
			continue
		}
		existing, err := s.store.FindMeal(ctx, gateway.MealFilter{
			UserID:     s.userID,
			EntryDate:  entry.EntryDate,
			CustomName: entry.CustomName,
			MealType:   entry.MealType,
		})
		if err != nil {
			report.fail("meal %s %s: %v", entry.EntryDate, entry.CustomName, err)
			continue
		}
		if existing != nil {
			report.Skipped++
			continue
		}
		if _, err := s.store.InsertMeal(ctx, entry); err != nil {
			report.fail("meal %s %s: %v", entry.EntryDate, entry.CustomName, err)
			continue
		}
		report.Meals++
	}
}

func (s *Service) importWater(ctx context.Context, entries []model.WaterEntry, report *ImportReport) {
	for _, rec := range entries {
		if ctx.Err() != nil {
			return
		}
		if rec.DeletedAt != nil {
			report.Skipped++
			continue
		}
		if rec.EntryTime.IsZero() {
			report.fail("water %s: entry_time is required", rec.ID)
			continue
		}
		entry := model.WaterEntry{
			UserID:    s.userID,
			AmountMl:  rec.AmountMl,
			EntryDate: rec.EntryDate,
			EntryTime: rec.EntryTime.UTC(),
		}
		if entry.EntryDate == "" {
			entry.EntryDate = model.FormatDate(entry.EntryTime)
		}
		if err := model.ValidateWaterEntry(entry); err != nil {
			report.fail("water %s: %v", entry.EntryTime.Format(time.RFC3339), err)
			continue
		}
		existing, err := s.store.FindWater(ctx, gateway.WaterFilter{UserID: s.userID, EntryTime: &entry.EntryTime})
		if err != nil {
			report.fail("water %s: %v", entry.EntryTime.Format(time.RFC3339), err)
			continue
		}
		if existing != nil {
			report.Skipped++
			continue
		}
		if _, err := s.store.InsertWater(ctx, entry); err != nil {
			report.fail("water %s: %v", entry.EntryTime.Format(time.RFC3339), err)
			continue
		}
		report.Water++
	}
}

func (s *Service) importWeights(ctx context.Context, entries []weightRecord, report *ImportReport) {
	for _, rec := range entries {
		if ctx.Err() != nil {
			return
		}
		if rec.DeletedAt != nil {
			report.Skipped++
			continue
		}
		entry := rec.entry(s.userID)
		if err := model.ValidateWeightEntry(entry); err != nil {
			report.fail("weight %s: %v", entry.EntryDate, err)
			continue
		}
		existing, err := s.store.FindWeight(ctx, gateway.WeightFilter{UserID: s.userID, EntryDate: entry.EntryDate})
		if err != nil {
			report.fail("weight %s: %v", entry.EntryDate, err)
			continue
		}
		if existing != nil {
			report.Skipped++
			continue
		}
		if _, err := s.store.InsertWeight(ctx, entry); err != nil {
			report.fail("weight %s: %v", entry.EntryDate, err)
			continue
		}
		report.Weight++
	}
}
