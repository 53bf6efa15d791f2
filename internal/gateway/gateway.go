package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/model"
)

// ErrNotFound is returned by updates and deletes that match no live row.
var ErrNotFound = errors.New("record not found")

type Order int

const (
	OrderAsc Order = iota
	OrderDesc
)

type MealFilter struct {
	UserID         string
	FromDate       string
	ToDate         string
	EntryDate      string
	NameContains   string
	CustomName     string
	MealType       model.MealType
	CustomOnly     bool
	WithFood       bool
	IncludeDeleted bool
	Order          Order
	Limit          int
}

type WaterFilter struct {
	UserID         string
	FromDate       string
	ToDate         string
	EntryTime      *time.Time
	IncludeDeleted bool
	Order          Order
	Limit          int
}

type WeightFilter struct {
	UserID         string
	FromDate       string
	ToDate         string
	EntryDate      string
	IncludeDeleted bool
	Order          Order
	Limit          int
}

type FoodFilter struct {
	NameContains  string
	Name          string
	Barcode       string
	CreatedBy     string
	WithNutrition bool
	Limit         int
}

type MealStore interface {
	ListMeals(ctx context.Context, f MealFilter) ([]model.MealEntry, error)
	FindMeal(ctx context.Context, f MealFilter) (*model.MealEntry, error)
	InsertMeal(ctx context.Context, e model.MealEntry) (model.MealEntry, error)
	UpdateMeal(ctx context.Context, userID, id string, p model.MealPatch) error
	SoftDeleteMeal(ctx context.Context, userID, id string, at time.Time) error
}

type WaterStore interface {
	ListWater(ctx context.Context, f WaterFilter) ([]model.WaterEntry, error)
	FindWater(ctx context.Context, f WaterFilter) (*model.WaterEntry, error)
	InsertWater(ctx context.Context, e model.WaterEntry) (model.WaterEntry, error)
	SoftDeleteWater(ctx context.Context, userID, id string, at time.Time) error
}

type WeightStore interface {
	ListWeights(ctx context.Context, f WeightFilter) ([]model.WeightEntry, error)
	FindWeight(ctx context.Context, f WeightFilter) (*model.WeightEntry, error)
	InsertWeight(ctx context.Context, e model.WeightEntry) (model.WeightEntry, error)
	SoftDeleteWeight(ctx context.Context, userID, id string, at time.Time) error
}

type FoodStore interface {
	ListFoods(ctx context.Context, f FoodFilter) ([]model.Food, error)
	FindFood(ctx context.Context, f FoodFilter) (*model.Food, error)
	GetFood(ctx context.Context, id string) (*model.Food, error)
	InsertFood(ctx context.Context, food model.Food) (model.Food, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	ListProfiles(ctx context.Context, onboardedOnly bool) ([]model.Profile, error)
	InsertProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, p model.ProfilePatch) error
}

type NotificationStore interface {
	ListPreferences(ctx context.Context, userID string) ([]model.NotificationPreference, error)
	UpsertPreference(ctx context.Context, p model.NotificationPreference) (model.NotificationPreference, error)
	InsertNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
}

// Gateway is the whole persistent store as seen by the core.
type Gateway interface {
	MealStore
	WaterStore
	WeightStore
	FoodStore
	ProfileStore
	NotificationStore
}
