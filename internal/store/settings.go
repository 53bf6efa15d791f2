package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/model"
)

const SettingUserID = "user_id"

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fmt.Errorf("setting key is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, fmt.Errorf("setting key is required")
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}

// EnsureUser returns the stored active user id, creating the id and an
// empty profile with default notification preferences on first use.
func (s *Store) EnsureUser(ctx context.Context) (string, error) {
	id, ok, err := s.GetSetting(ctx, SettingUserID)
	if err != nil {
		return "", err
	}
	if !ok {
		id = s.newID()
		if err := s.SetSetting(ctx, SettingUserID, id); err != nil {
			return "", err
		}
	}
	if err := s.EnsureProfile(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) EnsureProfile(ctx context.Context, userID string) error {
	existing, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if _, err := s.InsertProfile(ctx, model.Profile{ID: userID, PushNotificationsEnabled: true, EmailNotificationsEnabled: true}); err != nil {
		return err
	}
	for _, pref := range model.DefaultNotificationPreferences(userID) {
		if _, err := s.UpsertPreference(ctx, pref); err != nil {
			return err
		}
	}
	return nil
}
