package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
)

const mealColumns = `m.id, m.user_id, IFNULL(m.food_id, ''), m.custom_name, m.meal_type, m.amount_g_ml,
m.calculated_kcal, m.calculated_protein, m.calculated_carbs, m.calculated_fat,
m.entry_date, m.note, m.source, m.created_at, m.updated_at, m.deleted_at`

func (s *Store) ListMeals(ctx context.Context, f gateway.MealFilter) ([]model.MealEntry, error) {
	if strings.TrimSpace(f.UserID) == "" {
		return nil, fmt.Errorf("list meals: user id is required")
	}
	query := `SELECT ` + mealColumns + ` FROM meal_entries m WHERE m.user_id = ?`
	args := []any{f.UserID}

	if !f.IncludeDeleted {
		query += ` AND m.deleted_at IS NULL`
	}
	if f.EntryDate != "" {
		query += ` AND m.entry_date = ?`
		args = append(args, f.EntryDate)
	}
	if f.FromDate != "" {
		query += ` AND m.entry_date >= ?`
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		query += ` AND m.entry_date <= ?`
		args = append(args, f.ToDate)
	}
	if f.CustomOnly {
		query += ` AND m.food_id IS NULL`
	}
	if strings.TrimSpace(f.NameContains) != "" {
		query += ` AND fold(m.custom_name) LIKE ? ESCAPE '\'`
		args = append(args, containsPattern(f.NameContains))
	}
	if f.CustomName != "" {
		query += ` AND m.custom_name = ?`
		args = append(args, f.CustomName)
	}
	if f.MealType != "" {
		query += ` AND m.meal_type = ?`
		args = append(args, string(f.MealType))
	}
	dir := orderKeyword(f.Order)
	query += fmt.Sprintf(` ORDER BY m.created_at %s, m.rowid %s`, dir, dir)
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	defer rows.Close()

	out := make([]model.MealEntry, 0)
	for rows.Next() {
		e, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	if f.WithFood {
		if err := s.attachFoods(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) FindMeal(ctx context.Context, f gateway.MealFilter) (*model.MealEntry, error) {
	f.Limit = 1
	items, err := s.ListMeals(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// InsertMeal stores e with a fresh id. A referenced catalog food gains
// one popularity point in the same transaction.
func (s *Store) InsertMeal(ctx context.Context, e model.MealEntry) (model.MealEntry, error) {
	now := s.now()
	e.ID = s.newID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Source == "" {
		e.Source = model.SourceManual
	}
	e.Food = nil

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.MealEntry{}, fmt.Errorf("begin insert meal tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO meal_entries(id, user_id, food_id, custom_name, meal_type, amount_g_ml, calculated_kcal, calculated_protein, calculated_carbs, calculated_fat, entry_date, note, source, created_at, updated_at, deleted_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, e.UserID, nullString(e.FoodID), strings.TrimSpace(e.CustomName), string(e.MealType), e.AmountGMl,
		e.CalculatedKcal, e.CalculatedProtein, e.CalculatedCarbs, e.CalculatedFat,
		e.EntryDate, strings.TrimSpace(e.Note), string(e.Source), formatTS(e.CreatedAt), formatTS(e.UpdatedAt), nullTS(e.DeletedAt))
	if err != nil {
		return model.MealEntry{}, fmt.Errorf("insert meal: %w", err)
	}
	if e.FoodID != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE foods SET popularity_count = popularity_count + 1 WHERE id = ?`, e.FoodID); err != nil {
			return model.MealEntry{}, fmt.Errorf("bump food popularity: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.MealEntry{}, fmt.Errorf("commit insert meal: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateMeal(ctx context.Context, userID, id string, p model.MealPatch) error {
	var b updateBuilder
	if p.CustomName != nil {
		b.set("custom_name", strings.TrimSpace(*p.CustomName))
	}
	if p.MealType != nil {
		b.set("meal_type", string(*p.MealType))
	}
	if p.AmountGMl != nil {
		b.set("amount_g_ml", *p.AmountGMl)
	}
	if p.CalculatedKcal != nil {
		b.set("calculated_kcal", *p.CalculatedKcal)
	}
	if p.CalculatedProtein != nil {
		b.set("calculated_protein", *p.CalculatedProtein)
	}
	if p.CalculatedCarbs != nil {
		b.set("calculated_carbs", *p.CalculatedCarbs)
	}
	if p.CalculatedFat != nil {
		b.set("calculated_fat", *p.CalculatedFat)
	}
	if p.Note != nil {
		b.set("note", strings.TrimSpace(*p.Note))
	}
	b.set("updated_at", formatTS(s.now()))

	args := append(b.args, id, userID)
	res, err := s.db.ExecContext(ctx, `UPDATE meal_entries SET `+b.clause()+` WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, args...)
	if err != nil {
		return fmt.Errorf("update meal %s: %w", id, err)
	}
	return requireAffected(res, "update meal "+id)
}

func (s *Store) SoftDeleteMeal(ctx context.Context, userID, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE meal_entries SET deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		formatTS(at), formatTS(s.now()), id, userID)
	if err != nil {
		return fmt.Errorf("delete meal %s: %w", id, err)
	}
	return requireAffected(res, "delete meal "+id)
}

func (s *Store) attachFoods(ctx context.Context, entries []model.MealEntry) error {
	cache := map[string]*model.Food{}
	for i := range entries {
		id := entries[i].FoodID
		if id == "" {
			continue
		}
		food, ok := cache[id]
		if !ok {
			var err error
			food, err = s.GetFood(ctx, id)
			if err != nil {
				return err
			}
			cache[id] = food
		}
		entries[i].Food = food
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(r rowScanner) (model.MealEntry, error) {
	var (
		e                    model.MealEntry
		mealType, source     string
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)
	if err := r.Scan(&e.ID, &e.UserID, &e.FoodID, &e.CustomName, &mealType, &e.AmountGMl,
		&e.CalculatedKcal, &e.CalculatedProtein, &e.CalculatedCarbs, &e.CalculatedFat,
		&e.EntryDate, &e.Note, &source, &createdAt, &updatedAt, &deletedAt); err != nil {
		return model.MealEntry{}, fmt.Errorf("scan meal: %w", err)
	}
	var err error
	if e.MealType, err = model.ParseMealType(mealType); err != nil {
		return model.MealEntry{}, fmt.Errorf("map meal %s: %w", e.ID, err)
	}
	if e.Source, err = model.ParseSource(source); err != nil {
		return model.MealEntry{}, fmt.Errorf("map meal %s: %w", e.ID, err)
	}
	if e.CreatedAt, err = parseTS(createdAt); err != nil {
		return model.MealEntry{}, fmt.Errorf("map meal %s: %w", e.ID, err)
	}
	if e.UpdatedAt, err = parseTS(updatedAt); err != nil {
		return model.MealEntry{}, fmt.Errorf("map meal %s: %w", e.ID, err)
	}
	if e.DeletedAt, err = parseNullTS(deletedAt); err != nil {
		return model.MealEntry{}, fmt.Errorf("map meal %s: %w", e.ID, err)
	}
	return e, nil
}
