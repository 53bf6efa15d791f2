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

func (s *Store) ListWater(ctx context.Context, f gateway.WaterFilter) ([]model.WaterEntry, error) {
	if strings.TrimSpace(f.UserID) == "" {
		return nil, fmt.Errorf("list water: user id is required")
	}
	query := `SELECT id, user_id, amount_ml, entry_date, entry_time, created_at, deleted_at FROM water_entries WHERE user_id = ?`
	args := []any{f.UserID}
	if !f.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if f.FromDate != "" {
		query += ` AND entry_date >= ?`
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		query += ` AND entry_date <= ?`
		args = append(args, f.ToDate)
	}
	if f.EntryTime != nil {
		query += ` AND entry_time = ?`
		args = append(args, formatTS(*f.EntryTime))
	}
	dir := orderKeyword(f.Order)
	query += fmt.Sprintf(` ORDER BY entry_time %s, rowid %s`, dir, dir)
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list water: %w", err)
	}
	defer rows.Close()

	out := make([]model.WaterEntry, 0)
	for rows.Next() {
		var (
			e                    model.WaterEntry
			entryTime, createdAt string
			deletedAt            sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.AmountMl, &e.EntryDate, &entryTime, &createdAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan water: %w", err)
		}
		if e.EntryTime, err = parseTS(entryTime); err != nil {
			return nil, fmt.Errorf("map water %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, fmt.Errorf("map water %s: %w", e.ID, err)
		}
		if e.DeletedAt, err = parseNullTS(deletedAt); err != nil {
			return nil, fmt.Errorf("map water %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate water: %w", err)
	}
	return out, nil
}

func (s *Store) FindWater(ctx context.Context, f gateway.WaterFilter) (*model.WaterEntry, error) {
	f.Limit = 1
	items, err := s.ListWater(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (s *Store) InsertWater(ctx context.Context, e model.WaterEntry) (model.WaterEntry, error) {
	now := s.now()
	e.ID = s.newID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.EntryTime.IsZero() {
		e.EntryTime = now
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO water_entries(id, user_id, amount_ml, entry_date, entry_time, created_at, deleted_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, e.ID, e.UserID, e.AmountMl, e.EntryDate, formatTS(e.EntryTime), formatTS(e.CreatedAt), nullTS(e.DeletedAt))
	if err != nil {
		return model.WaterEntry{}, fmt.Errorf("insert water: %w", err)
	}
	return e, nil
}

func (s *Store) SoftDeleteWater(ctx context.Context, userID, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE water_entries SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		formatTS(at), id, userID)
	if err != nil {
		return fmt.Errorf("delete water %s: %w", id, err)
	}
	return requireAffected(res, "delete water "+id)
}

func (s *Store) ListWeights(ctx context.Context, f gateway.WeightFilter) ([]model.WeightEntry, error) {
	if strings.TrimSpace(f.UserID) == "" {
		return nil, fmt.Errorf("list weights: user id is required")
	}
	query := `SELECT id, user_id, weight_kg, entry_date, note, created_at, deleted_at FROM weight_entries WHERE user_id = ?`
	args := []any{f.UserID}
	if !f.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if f.EntryDate != "" {
		query += ` AND entry_date = ?`
		args = append(args, f.EntryDate)
	}
	if f.FromDate != "" {
		query += ` AND entry_date >= ?`
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		query += ` AND entry_date <= ?`
		args = append(args, f.ToDate)
	}
	dir := orderKeyword(f.Order)
	query += fmt.Sprintf(` ORDER BY entry_date %s, created_at %s, rowid %s`, dir, dir, dir)
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	defer rows.Close()

	out := make([]model.WeightEntry, 0)
	for rows.Next() {
		var (
			e         model.WeightEntry
			createdAt string
			deletedAt sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.WeightKg, &e.EntryDate, &e.Note, &createdAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		if e.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, fmt.Errorf("map weight %s: %w", e.ID, err)
		}
		if e.DeletedAt, err = parseNullTS(deletedAt); err != nil {
			return nil, fmt.Errorf("map weight %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weights: %w", err)
	}
	return out, nil
}

func (s *Store) FindWeight(ctx context.Context, f gateway.WeightFilter) (*model.WeightEntry, error) {
	f.Limit = 1
	items, err := s.ListWeights(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (s *Store) InsertWeight(ctx context.Context, e model.WeightEntry) (model.WeightEntry, error) {
	e.ID = s.newID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO weight_entries(id, user_id, weight_kg, entry_date, note, created_at, deleted_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, e.ID, e.UserID, e.WeightKg, e.EntryDate, strings.TrimSpace(e.Note), formatTS(e.CreatedAt), nullTS(e.DeletedAt))
	if err != nil {
		return model.WeightEntry{}, fmt.Errorf("insert weight: %w", err)
	}
	return e, nil
}

func (s *Store) SoftDeleteWeight(ctx context.Context, userID, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE weight_entries SET deleted_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		formatTS(at), id, userID)
	if err != nil {
		return fmt.Errorf("delete weight %s: %w", id, err)
	}
	return requireAffected(res, "delete weight "+id)
}
