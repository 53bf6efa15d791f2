package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

// DateLayout is the layout of calendar-date fields such as entry_date.
const DateLayout = "2006-01-02"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

func ParseMealType(v string) (MealType, error) {
	switch MealType(strings.ToLower(strings.TrimSpace(v))) {
	case MealBreakfast:
		return MealBreakfast, nil
	case MealLunch:
		return MealLunch, nil
	case MealDinner:
		return MealDinner, nil
	case MealSnack, "snacks":
		return MealSnack, nil
	default:
		return "", fmt.Errorf("invalid meal type %q (expected breakfast|lunch|dinner|snack)", v)
	}
}

type Source string

const (
	SourceBarcode Source = "barcode"
	SourcePhoto   Source = "photo"
	SourceText    Source = "text"
	SourceManual  Source = "manual"
)

func ParseSource(v string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(v))) {
	case SourceBarcode:
		return SourceBarcode, nil
	case SourcePhoto:
		return SourcePhoto, nil
	case SourceText:
		return SourceText, nil
	case SourceManual, "":
		return SourceManual, nil
	default:
		return "", fmt.Errorf("invalid source %q (expected barcode|photo|text|manual)", v)
	}
}

type NotificationType string

const (
	NotifyWeighIn       NotificationType = "weigh_in"
	NotifyDailyLog      NotificationType = "daily_log"
	NotifyWater         NotificationType = "water"
	NotifyGoalAchieved  NotificationType = "goal_achieved"
	NotifyWeeklySummary NotificationType = "weekly_summary"
)

// Nutrition is stored per 100 g or 100 ml.
type Nutrition struct {
	Kcal          float64  `json:"kcal"`
	ProteinG      float64  `json:"protein_g"`
	CarbsG        float64  `json:"carbs_g"`
	FatG          float64  `json:"fat_g"`
	SaturatedFatG *float64 `json:"saturated_fat_g,omitempty"`
	TransFatG     *float64 `json:"trans_fat_g,omitempty"`
	SugarG        *float64 `json:"sugar_g,omitempty"`
	FiberG        *float64 `json:"fiber_g,omitempty"`
	SaltG         *float64 `json:"salt_g,omitempty"`
	NovaScore     *int     `json:"nova_score,omitempty"`
	NutriScore    string   `json:"nutri_score,omitempty"`
}

func (n Nutrition) Per100() nutrition.Per100 {
	return nutrition.Per100{Kcal: n.Kcal, ProteinG: n.ProteinG, CarbsG: n.CarbsG, FatG: n.FatG}
}

type Food struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Brand              string     `json:"brand,omitempty"`
	Barcode            string     `json:"barcode,omitempty"`
	ServingSizeG       *float64   `json:"serving_size_g,omitempty"`
	ServingDescription string     `json:"serving_description,omitempty"`
	Source             Source     `json:"source"`
	CreatedBy          string     `json:"created_by,omitempty"`
	PopularityCount    int        `json:"popularity_count"`
	Verified           bool       `json:"verified"`
	Nutrition          *Nutrition `json:"food_nutrition,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// DisplayName is the food name with the brand in parentheses when known.
func (f Food) DisplayName() string {
	if strings.TrimSpace(f.Brand) == "" {
		return f.Name
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.Brand)
}

type MealEntry struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	FoodID            string     `json:"food_id,omitempty"`
	CustomName        string     `json:"custom_name,omitempty"`
	MealType          MealType   `json:"meal_type"`
	AmountGMl         float64    `json:"amount_g_ml"`
	CalculatedKcal    int        `json:"calculated_kcal"`
	CalculatedProtein float64    `json:"calculated_protein"`
	CalculatedCarbs   float64    `json:"calculated_carbs"`
	CalculatedFat     float64    `json:"calculated_fat"`
	EntryDate         string     `json:"entry_date"`
	Note              string     `json:"note,omitempty"`
	Source            Source     `json:"source"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`

	// Food is the joined catalog row when FoodID is set and the read asked for it.
	Food *Food `json:"-"`
}

func (e MealEntry) Key() string { return e.ID }

func (e MealEntry) Totals() nutrition.Totals {
	return nutrition.Totals{
		Kcal:     e.CalculatedKcal,
		ProteinG: e.CalculatedProtein,
		CarbsG:   e.CalculatedCarbs,
		FatG:     e.CalculatedFat,
	}
}

func (e *MealEntry) SetTotals(t nutrition.Totals) {
	e.CalculatedKcal = t.Kcal
	e.CalculatedProtein = t.ProteinG
	e.CalculatedCarbs = t.CarbsG
	e.CalculatedFat = t.FatG
}

func (e MealEntry) Name() string {
	if e.Food != nil && e.Food.Name != "" {
		return e.Food.Name
	}
	if e.CustomName != "" {
		return e.CustomName
	}
	return "Unknown"
}

// MealPatch carries the fields of a meal edit; nil fields are unchanged.
type MealPatch struct {
	CustomName        *string
	MealType          *MealType
	AmountGMl         *float64
	CalculatedKcal    *int
	CalculatedProtein *float64
	CalculatedCarbs   *float64
	CalculatedFat     *float64
	Note              *string
}

func (p MealPatch) Empty() bool {
	return p.CustomName == nil && p.MealType == nil && p.AmountGMl == nil && p.CalculatedKcal == nil &&
		p.CalculatedProtein == nil && p.CalculatedCarbs == nil && p.CalculatedFat == nil && p.Note == nil
}

// WithTotals sets all four computed totals on the patch.
func (p MealPatch) WithTotals(t nutrition.Totals) MealPatch {
	p.CalculatedKcal = &t.Kcal
	p.CalculatedProtein = &t.ProteinG
	p.CalculatedCarbs = &t.CarbsG
	p.CalculatedFat = &t.FatG
	return p
}

func (p MealPatch) ApplyTo(e MealEntry) MealEntry {
	if p.CustomName != nil {
		e.CustomName = *p.CustomName
	}
	if p.MealType != nil {
		e.MealType = *p.MealType
	}
	if p.AmountGMl != nil {
		e.AmountGMl = *p.AmountGMl
	}
	if p.CalculatedKcal != nil {
		e.CalculatedKcal = *p.CalculatedKcal
	}
	if p.CalculatedProtein != nil {
		e.CalculatedProtein = *p.CalculatedProtein
	}
	if p.CalculatedCarbs != nil {
		e.CalculatedCarbs = *p.CalculatedCarbs
	}
	if p.CalculatedFat != nil {
		e.CalculatedFat = *p.CalculatedFat
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	return e
}

type WaterEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	AmountMl  int        `json:"amount_ml"`
	EntryDate string     `json:"entry_date"`
	EntryTime time.Time  `json:"entry_time"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (e WaterEntry) Key() string { return e.ID }

type WeightEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	WeightKg  float64    `json:"weight_kg"`
	EntryDate string     `json:"entry_date"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (e WeightEntry) Key() string { return e.ID }

type Profile struct {
	ID                        string                  `json:"id"`
	DisplayName               string                  `json:"display_name,omitempty"`
	Email                     string                  `json:"email,omitempty"`
	BirthDate                 string                  `json:"birth_date,omitempty"`
	Gender                    nutrition.Gender        `json:"gender,omitempty"`
	HeightCm                  float64                 `json:"height_cm"`
	CurrentWeightKg           float64                 `json:"current_weight_kg"`
	TargetWeightKg            float64                 `json:"target_weight_kg"`
	ActivityLevel             nutrition.ActivityLevel `json:"activity_level,omitempty"`
	Goal                      nutrition.Goal          `json:"goal,omitempty"`
	BMR                       int                     `json:"bmr"`
	TDEE                      int                     `json:"tdee"`
	DailyCalorieTarget        int                     `json:"daily_calorie_target"`
	ProteinTargetG            int                     `json:"protein_target_g"`
	CarbsTargetG              int                     `json:"carbs_target_g"`
	FatTargetG                int                     `json:"fat_target_g"`
	DailyWaterTargetMl        int                     `json:"daily_water_target_ml"`
	WeighInFrequencyDays      int                     `json:"weigh_in_frequency_days"`
	PushNotificationsEnabled  bool                    `json:"push_notifications_enabled"`
	EmailNotificationsEnabled bool                    `json:"email_notifications_enabled"`
	OnboardingCompleted       bool                    `json:"onboarding_completed"`
	AutoRecalculateMacros     bool                    `json:"auto_recalculate_macros"`
	LastWeighInReminder       *time.Time              `json:"last_weigh_in_reminder,omitempty"`
	LastWaterReminder         *time.Time              `json:"last_water_reminder,omitempty"`
	LastDailyLogReminder      *time.Time              `json:"last_daily_log_reminder,omitempty"`
	CreatedAt                 time.Time               `json:"created_at"`
	UpdatedAt                 time.Time               `json:"updated_at"`
}

// ProfilePatch carries a partial profile update; nil fields are unchanged.
type ProfilePatch struct {
	DisplayName               *string
	Email                     *string
	BirthDate                 *string
	Gender                    *nutrition.Gender
	HeightCm                  *float64
	CurrentWeightKg           *float64
	TargetWeightKg            *float64
	ActivityLevel             *nutrition.ActivityLevel
	Goal                      *nutrition.Goal
	BMR                       *int
	TDEE                      *int
	DailyCalorieTarget        *int
	ProteinTargetG            *int
	CarbsTargetG              *int
	FatTargetG                *int
	DailyWaterTargetMl        *int
	WeighInFrequencyDays      *int
	PushNotificationsEnabled  *bool
	EmailNotificationsEnabled *bool
	OnboardingCompleted       *bool
	AutoRecalculateMacros     *bool
	LastWeighInReminder       *time.Time
	LastWaterReminder         *time.Time
	LastDailyLogReminder      *time.Time
}

type NotificationPreference struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	NotificationType NotificationType `json:"notification_type"`
	PushEnabled      bool             `json:"push_enabled"`
	EmailEnabled     bool             `json:"email_enabled"`
	StartHour        int              `json:"start_hour"`
	EndHour          int              `json:"end_hour"`
	IntervalHours    int              `json:"interval_hours"`
	SummaryDay       int              `json:"summary_day"`
	SummaryHour      int              `json:"summary_hour"`
}

// DefaultNotificationPreferences returns the preferences a new user starts with.
func DefaultNotificationPreferences(userID string) []NotificationPreference {
	return []NotificationPreference{
		{UserID: userID, NotificationType: NotifyWeighIn, PushEnabled: true, EmailEnabled: true, StartHour: 9, EndHour: 9},
		{UserID: userID, NotificationType: NotifyDailyLog, PushEnabled: true, StartHour: 18, EndHour: 18},
		{UserID: userID, NotificationType: NotifyWater, PushEnabled: true, StartHour: 9, EndHour: 21, IntervalHours: 3},
		{UserID: userID, NotificationType: NotifyGoalAchieved, PushEnabled: true, StartHour: 0, EndHour: 23},
		{UserID: userID, NotificationType: NotifyWeeklySummary, EmailEnabled: true, SummaryDay: 1, SummaryHour: 9},
	}
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	PushSent  bool             `json:"push_sent"`
	EmailSent bool             `json:"email_sent"`
	CreatedAt time.Time        `json:"created_at"`
}
