package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/model"
)

func (s *Store) ListPreferences(ctx context.Context, userID string) ([]model.NotificationPreference, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, notification_type, push_enabled, email_enabled, start_hour, end_hour, interval_hours, summary_day, summary_hour
FROM notification_preferences
WHERE user_id = ?
ORDER BY notification_type ASC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notification preferences: %w", err)
	}
	defer rows.Close()

	out := make([]model.NotificationPreference, 0)
	for rows.Next() {
		var (
			p           model.NotificationPreference
			kind        string
			push, email int
		)
		if err := rows.Scan(&p.ID, &p.UserID, &kind, &push, &email, &p.StartHour, &p.EndHour, &p.IntervalHours, &p.SummaryDay, &p.SummaryHour); err != nil {
			return nil, fmt.Errorf("scan notification preference: %w", err)
		}
		p.NotificationType = model.NotificationType(kind)
		p.PushEnabled = push == 1
		p.EmailEnabled = email == 1
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification preferences: %w", err)
	}
	return out, nil
}

// UpsertPreference replaces the (user, type) preference row.
func (s *Store) UpsertPreference(ctx context.Context, p model.NotificationPreference) (model.NotificationPreference, error) {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = s.newID()
	}
	now := formatTS(s.now())
	err := s.db.QueryRowContext(ctx, `
INSERT INTO notification_preferences(id, user_id, notification_type, push_enabled, email_enabled, start_hour, end_hour, interval_hours, summary_day, summary_hour, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, notification_type) DO UPDATE SET
  push_enabled = excluded.push_enabled,
  email_enabled = excluded.email_enabled,
  start_hour = excluded.start_hour,
  end_hour = excluded.end_hour,
  interval_hours = excluded.interval_hours,
  summary_day = excluded.summary_day,
  summary_hour = excluded.summary_hour,
  updated_at = excluded.updated_at
RETURNING id
`, p.ID, p.UserID, string(p.NotificationType), boolInt(p.PushEnabled), boolInt(p.EmailEnabled),
		p.StartHour, p.EndHour, p.IntervalHours, p.SummaryDay, p.SummaryHour, now, now).Scan(&p.ID)
	if err != nil {
		return model.NotificationPreference{}, fmt.Errorf("upsert notification preference %s: %w", p.NotificationType, err)
	}
	return p, nil
}

func (s *Store) InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	n.ID = s.newID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO notifications(id, user_id, type, title, message, is_read, push_sent, email_sent, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`, n.ID, n.UserID, string(n.Type), n.Title, n.Message, boolInt(n.IsRead), boolInt(n.PushSent), boolInt(n.EmailSent), formatTS(n.CreatedAt))
	if err != nil {
		return model.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, type, title, message, is_read, push_sent, email_sent, created_at
FROM notifications
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var (
			n                    model.Notification
			kind, createdAt      string
			read, pushed, mailed int
		)
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Title, &n.Message, &read, &pushed, &mailed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = model.NotificationType(kind)
		n.IsRead, n.PushSent, n.EmailSent = read == 1, pushed == 1, mailed == 1
		if n.CreatedAt, err = parseTS(createdAt); err != nil {
			return nil, fmt.Errorf("map notification %s: %w", n.ID, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}
