package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
)

const foodColumns = `f.id, f.name, f.brand, IFNULL(f.barcode, ''), f.serving_size_g, f.serving_description, f.source,
f.created_by, f.popularity_count, f.verified, f.created_at,
n.food_id, n.kcal, n.protein_g, n.carbs_g, n.fat_g, n.saturated_fat_g, n.trans_fat_g, n.sugar_g, n.fiber_g, n.salt_g,
n.nova_score, n.nutri_score`

func (s *Store) ListFoods(ctx context.Context, f gateway.FoodFilter) ([]model.Food, error) {
	query := `SELECT ` + foodColumns + ` FROM foods f LEFT JOIN food_nutrition n ON n.food_id = f.id WHERE 1=1`
	args := make([]any, 0)

	if strings.TrimSpace(f.NameContains) != "" {
		query += ` AND fold(f.name) LIKE ? ESCAPE '\'`
		args = append(args, containsPattern(f.NameContains))
	}
	if strings.TrimSpace(f.Name) != "" {
		query += ` AND fold(f.name) = ?`
		args = append(args, strings.ToLower(strings.TrimSpace(f.Name)))
	}
	if strings.TrimSpace(f.Barcode) != "" {
		query += ` AND f.barcode = ?`
		args = append(args, strings.TrimSpace(f.Barcode))
	}
	if f.CreatedBy != "" {
		query += ` AND f.created_by = ?`
		args = append(args, f.CreatedBy)
	}
	if f.WithNutrition {
		query += ` AND n.food_id IS NOT NULL`
	}
	query += ` ORDER BY f.popularity_count DESC, f.name ASC, f.rowid ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	out := make([]model.Food, 0)
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return out, nil
}

func (s *Store) FindFood(ctx context.Context, f gateway.FoodFilter) (*model.Food, error) {
	f.Limit = 1
	items, err := s.ListFoods(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (s *Store) GetFood(ctx context.Context, id string) (*model.Food, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods f LEFT JOIN food_nutrition n ON n.food_id = f.id WHERE f.id = ?`, id)
	food, err := scanFood(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &food, nil
}

func (s *Store) InsertFood(ctx context.Context, food model.Food) (model.Food, error) {
	food.Name = strings.TrimSpace(food.Name)
	if food.Name == "" {
		return model.Food{}, fmt.Errorf("insert food: name is required")
	}
	food.ID = s.newID()
	if food.CreatedAt.IsZero() {
		food.CreatedAt = s.now()
	}
	if food.Source == "" {
		food.Source = model.SourceManual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Food{}, fmt.Errorf("begin insert food tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO foods(id, name, brand, barcode, serving_size_g, serving_description, source, created_by, popularity_count, verified, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, food.ID, food.Name, strings.TrimSpace(food.Brand), nullString(food.Barcode), food.ServingSizeG, food.ServingDescription,
		string(food.Source), food.CreatedBy, food.PopularityCount, boolInt(food.Verified), formatTS(food.CreatedAt))
	if err != nil {
		return model.Food{}, fmt.Errorf("insert food: %w", err)
	}
	if n := food.Nutrition; n != nil {
		_, err = tx.ExecContext(ctx, `
INSERT INTO food_nutrition(food_id, kcal, protein_g, carbs_g, fat_g, saturated_fat_g, trans_fat_g, sugar_g, fiber_g, salt_g, nova_score, nutri_score)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, food.ID, n.Kcal, n.ProteinG, n.CarbsG, n.FatG, n.SaturatedFatG, n.TransFatG, n.SugarG, n.FiberG, n.SaltG, n.NovaScore, strings.ToUpper(n.NutriScore))
		if err != nil {
			return model.Food{}, fmt.Errorf("insert food nutrition: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Food{}, fmt.Errorf("commit insert food: %w", err)
	}
	return food, nil
}

func scanFood(r rowScanner) (model.Food, error) {
	var (
		food                                 model.Food
		servingSize                          sql.NullFloat64
		source, createdAt                    string
		verified                             int
		nutritionID                          sql.NullString
		kcal, protein, carbs, fat            sql.NullFloat64
		satFat, transFat, sugar, fiber, salt sql.NullFloat64
		nova                                 sql.NullInt64
		nutriScore                           sql.NullString
	)
	if err := r.Scan(&food.ID, &food.Name, &food.Brand, &food.Barcode, &servingSize, &food.ServingDescription, &source,
		&food.CreatedBy, &food.PopularityCount, &verified, &createdAt,
		&nutritionID, &kcal, &protein, &carbs, &fat, &satFat, &transFat, &sugar, &fiber, &salt, &nova, &nutriScore); err != nil {
		return model.Food{}, fmt.Errorf("scan food: %w", err)
	}
	var err error
	if food.Source, err = model.ParseSource(source); err != nil {
		return model.Food{}, fmt.Errorf("map food %s: %w", food.ID, err)
	}
	if food.CreatedAt, err = parseTS(createdAt); err != nil {
		return model.Food{}, fmt.Errorf("map food %s: %w", food.ID, err)
	}
	food.Verified = verified == 1
	food.ServingSizeG = floatPtr(servingSize)
	if nutritionID.Valid {
		food.Nutrition = &model.Nutrition{
			Kcal:          kcal.Float64,
			ProteinG:      protein.Float64,
			CarbsG:        carbs.Float64,
			FatG:          fat.Float64,
			SaturatedFatG: floatPtr(satFat),
			TransFatG:     floatPtr(transFat),
			SugarG:        floatPtr(sugar),
			FiberG:        floatPtr(fiber),
			SaltG:         floatPtr(salt),
			NutriScore:    nutriScore.String,
		}
		if nova.Valid {
			v := int(nova.Int64)
			food.Nutrition.NovaScore = &v
		}
	}
	return food, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
