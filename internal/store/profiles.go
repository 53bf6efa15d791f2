package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

const profileColumns = `id, display_name, email, birth_date, gender, height_cm, current_weight_kg, target_weight_kg,
activity_level, goal, bmr, tdee, daily_calorie_target, protein_target_g, carbs_target_g, fat_target_g,
daily_water_target_ml, weigh_in_frequency_days, push_notifications_enabled, email_notifications_enabled,
onboarding_completed, auto_recalculate_macros, last_weigh_in_reminder, last_water_reminder, last_daily_log_reminder,
created_at, updated_at`

func (s *Store) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context, onboardedOnly bool) ([]model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	if onboardedOnly {
		query += ` WHERE onboarding_completed = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

func (s *Store) InsertProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = s.newID()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.DailyWaterTargetMl == 0 {
		p.DailyWaterTargetMl = 2500
	}
	if p.WeighInFrequencyDays == 0 {
		p.WeighInFrequencyDays = 7
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO profiles(id, display_name, email, birth_date, gender, height_cm, current_weight_kg, target_weight_kg,
  activity_level, goal, bmr, tdee, daily_calorie_target, protein_target_g, carbs_target_g, fat_target_g,
  daily_water_target_ml, weigh_in_frequency_days, push_notifications_enabled, email_notifications_enabled,
  onboarding_completed, auto_recalculate_macros, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.ID, p.DisplayName, p.Email, p.BirthDate, string(p.Gender), p.HeightCm, p.CurrentWeightKg, p.TargetWeightKg,
		string(p.ActivityLevel), string(p.Goal), p.BMR, p.TDEE, p.DailyCalorieTarget, p.ProteinTargetG, p.CarbsTargetG, p.FatTargetG,
		p.DailyWaterTargetMl, p.WeighInFrequencyDays, boolInt(p.PushNotificationsEnabled), boolInt(p.EmailNotificationsEnabled),
		boolInt(p.OnboardingCompleted), boolInt(p.AutoRecalculateMacros), formatTS(p.CreatedAt), formatTS(p.UpdatedAt))
	if err != nil {
		return model.Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

// UpdateProfile writes every set field of p in one statement.
func (s *Store) UpdateProfile(ctx context.Context, userID string, p model.ProfilePatch) error {
	var b updateBuilder
	if p.DisplayName != nil {
		b.set("display_name", strings.TrimSpace(*p.DisplayName))
	}
	if p.Email != nil {
		b.set("email", strings.TrimSpace(*p.Email))
	}
	if p.BirthDate != nil {
		b.set("birth_date", *p.BirthDate)
	}
	if p.Gender != nil {
		b.set("gender", string(*p.Gender))
	}
	if p.HeightCm != nil {
		b.set("height_cm", *p.HeightCm)
	}
	if p.CurrentWeightKg != nil {
		b.set("current_weight_kg", *p.CurrentWeightKg)
	}
	if p.TargetWeightKg != nil {
		b.set("target_weight_kg", *p.TargetWeightKg)
	}
	if p.ActivityLevel != nil {
		b.set("activity_level", string(*p.ActivityLevel))
	}
	if p.Goal != nil {
		b.set("goal", string(*p.Goal))
	}
	setInt := func(col string, v *int) {
		if v != nil {
			b.set(col, *v)
		}
	}
	setInt("bmr", p.BMR)
	setInt("tdee", p.TDEE)
	setInt("daily_calorie_target", p.DailyCalorieTarget)
	setInt("protein_target_g", p.ProteinTargetG)
	setInt("carbs_target_g", p.CarbsTargetG)
	setInt("fat_target_g", p.FatTargetG)
	setInt("daily_water_target_ml", p.DailyWaterTargetMl)
	setInt("weigh_in_frequency_days", p.WeighInFrequencyDays)
	setBool := func(col string, v *bool) {
		if v != nil {
			b.set(col, boolInt(*v))
		}
	}
	setBool("push_notifications_enabled", p.PushNotificationsEnabled)
	setBool("email_notifications_enabled", p.EmailNotificationsEnabled)
	setBool("onboarding_completed", p.OnboardingCompleted)
	setBool("auto_recalculate_macros", p.AutoRecalculateMacros)
	if p.LastWeighInReminder != nil {
		b.set("last_weigh_in_reminder", formatTS(*p.LastWeighInReminder))
	}
	if p.LastWaterReminder != nil {
		b.set("last_water_reminder", formatTS(*p.LastWaterReminder))
	}
	if p.LastDailyLogReminder != nil {
		b.set("last_daily_log_reminder", formatTS(*p.LastDailyLogReminder))
	}
	b.set("updated_at", formatTS(s.now()))

	args := append(b.args, userID)
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET `+b.clause()+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", userID, err)
	}
	return requireAffected(res, "update profile "+userID)
}

func scanProfile(r rowScanner) (model.Profile, error) {
	var (
		p                                  model.Profile
		gender, activity, goal             string
		push, email, onboarded, autoRecalc int
		lastWeighIn, lastWater, lastDaily  sql.NullString
		createdAt, updatedAt               string
	)
	if err := r.Scan(&p.ID, &p.DisplayName, &p.Email, &p.BirthDate, &gender, &p.HeightCm, &p.CurrentWeightKg, &p.TargetWeightKg,
		&activity, &goal, &p.BMR, &p.TDEE, &p.DailyCalorieTarget, &p.ProteinTargetG, &p.CarbsTargetG, &p.FatTargetG,
		&p.DailyWaterTargetMl, &p.WeighInFrequencyDays, &push, &email,
		&onboarded, &autoRecalc, &lastWeighIn, &lastWater, &lastDaily,
		&createdAt, &updatedAt); err != nil {
		return model.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	var err error
	if gender != "" {
		if p.Gender, err = nutrition.ParseGender(gender); err != nil {
			return model.Profile{}, fmt.Errorf("map profile %s: %w", p.ID, err)
		}
	}
	if activity != "" {
		if p.ActivityLevel, err = nutrition.ParseActivityLevel(activity); err != nil {
			return model.Profile{}, fmt.Errorf("map profile %s: %w", p.ID, err)
		}
	}
	if goal != "" {
		if p.Goal, err = nutrition.ParseGoal(goal); err != nil {
			return model.Profile{}, fmt.Errorf("map profile %s: %w", p.ID, err)
		}
	}
	p.PushNotificationsEnabled = push == 1
	p.EmailNotificationsEnabled = email == 1
	p.OnboardingCompleted = onboarded == 1
	p.AutoRecalculateMacros = autoRecalc == 1
	for _, ts := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{lastWeighIn, &p.LastWeighInReminder},
		{lastWater, &p.LastWaterReminder},
		{lastDaily, &p.LastDailyLogReminder},
	} {
		if *ts.dst, err = parseNullTS(ts.src); err != nil {
			return model.Profile{}, fmt.Errorf("map profile %s: %w", p.ID, err)
		}
	}
	if p.CreatedAt, err = parseTS(createdAt); err != nil {
		return model.Profile{}, fmt.Errorf("map profile %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = parseTS(updatedAt); err != nil {
		return model.Profile{}, fmt.Errorf("map profile %s: %w", p.ID, err)
	}
	return p, nil
}
