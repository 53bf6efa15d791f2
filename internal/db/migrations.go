package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  birth_date TEXT NOT NULL DEFAULT '',
  gender TEXT NOT NULL DEFAULT '',
  height_cm REAL NOT NULL DEFAULT 0 CHECK(height_cm >= 0),
  current_weight_kg REAL NOT NULL DEFAULT 0 CHECK(current_weight_kg >= 0),
  target_weight_kg REAL NOT NULL DEFAULT 0 CHECK(target_weight_kg >= 0),
  activity_level TEXT NOT NULL DEFAULT '',
  goal TEXT NOT NULL DEFAULT '',
  bmr INTEGER NOT NULL DEFAULT 0,
  tdee INTEGER NOT NULL DEFAULT 0,
  daily_calorie_target INTEGER NOT NULL DEFAULT 0,
  protein_target_g INTEGER NOT NULL DEFAULT 0,
  carbs_target_g INTEGER NOT NULL DEFAULT 0,
  fat_target_g INTEGER NOT NULL DEFAULT 0,
  daily_water_target_ml INTEGER NOT NULL DEFAULT 2500,
  weigh_in_frequency_days INTEGER NOT NULL DEFAULT 7,
  push_notifications_enabled INTEGER NOT NULL DEFAULT 1,
  email_notifications_enabled INTEGER NOT NULL DEFAULT 1,
  onboarding_completed INTEGER NOT NULL DEFAULT 0,
  auto_recalculate_macros INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS foods (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  barcode TEXT,
  serving_size_g REAL,
  serving_description TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('barcode','photo','text','manual')),
  created_by TEXT NOT NULL DEFAULT '',
  popularity_count INTEGER NOT NULL DEFAULT 0,
  verified INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_foods_barcode ON foods(barcode) WHERE barcode IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_foods_popularity ON foods(popularity_count DESC);

CREATE TABLE IF NOT EXISTS food_nutrition (
  food_id TEXT PRIMARY KEY,
  kcal REAL NOT NULL CHECK(kcal >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  saturated_fat_g REAL,
  trans_fat_g REAL,
  sugar_g REAL,
  fiber_g REAL,
  salt_g REAL,
  nova_score INTEGER CHECK(nova_score IS NULL OR nova_score BETWEEN 1 AND 4),
  nutri_score TEXT NOT NULL DEFAULT '',
  FOREIGN KEY(food_id) REFERENCES foods(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS meal_entries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  food_id TEXT,
  custom_name TEXT NOT NULL DEFAULT '',
  meal_type TEXT NOT NULL CHECK(meal_type IN ('breakfast','lunch','dinner','snack')),
  amount_g_ml REAL NOT NULL CHECK(amount_g_ml > 0),
  calculated_kcal INTEGER NOT NULL CHECK(calculated_kcal >= 0),
  calculated_protein REAL NOT NULL CHECK(calculated_protein >= 0),
  calculated_carbs REAL NOT NULL CHECK(calculated_carbs >= 0),
  calculated_fat REAL NOT NULL CHECK(calculated_fat >= 0),
  entry_date TEXT NOT NULL,
  note TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'manual' CHECK(source IN ('barcode','photo','text','manual')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  deleted_at TEXT,
  FOREIGN KEY(food_id) REFERENCES foods(id)
);

CREATE INDEX IF NOT EXISTS idx_meal_entries_user_date ON meal_entries(user_id, entry_date);
`,
	},
	{
		version: 2,
		name:    "water_and_weight",
		sql: `
CREATE TABLE IF NOT EXISTS water_entries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  amount_ml INTEGER NOT NULL CHECK(amount_ml > 0),
  entry_date TEXT NOT NULL,
  entry_time TEXT NOT NULL,
  created_at TEXT NOT NULL,
  deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_water_entries_user_date ON water_entries(user_id, entry_date);

CREATE TABLE IF NOT EXISTS weight_entries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  entry_date TEXT NOT NULL,
  note TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_weight_entries_user_date ON weight_entries(user_id, entry_date);
`,
	},
	{
		version: 3,
		name:    "notifications",
		sql: `
ALTER TABLE profiles ADD COLUMN last_weigh_in_reminder TEXT;
ALTER TABLE profiles ADD COLUMN last_water_reminder TEXT;
ALTER TABLE profiles ADD COLUMN last_daily_log_reminder TEXT;

CREATE TABLE IF NOT EXISTS notification_preferences (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  notification_type TEXT NOT NULL CHECK(notification_type IN ('weigh_in','daily_log','water','goal_achieved','weekly_summary')),
  push_enabled INTEGER NOT NULL DEFAULT 1,
  email_enabled INTEGER NOT NULL DEFAULT 0,
  start_hour INTEGER NOT NULL DEFAULT 9 CHECK(start_hour BETWEEN 0 AND 23),
  end_hour INTEGER NOT NULL DEFAULT 21 CHECK(end_hour BETWEEN 0 AND 23),
  interval_hours INTEGER NOT NULL DEFAULT 0 CHECK(interval_hours >= 0),
  summary_day INTEGER NOT NULL DEFAULT 1 CHECK(summary_day BETWEEN 0 AND 6),
  summary_hour INTEGER NOT NULL DEFAULT 9 CHECK(summary_hour BETWEEN 0 AND 23),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  UNIQUE(user_id, notification_type)
);

CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  push_sent INTEGER NOT NULL DEFAULT 0,
  email_sent INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
`,
	},
	{
		version: 4,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}
