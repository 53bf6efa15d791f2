package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/ai"
	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

var ErrNoProfile = errors.New("profile not found")

// Fallbacks for profiles that skipped onboarding fields.
const (
	fallbackAge      = 30
	fallbackHeightCm = 170
)

type Targeter interface {
	Targets(ctx context.Context, req ai.MacroRequest) (ai.MacroResult, bool)
}

type Service struct {
	store   gateway.ProfileStore
	userID  string
	targets Targeter
	now     func() time.Time
	log     *slog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService uses targets for recalculation; a nil Targeter computes locally.
func NewService(store gateway.ProfileStore, userID string, targets Targeter, opts ...Option) *Service {
	s := &Service{store: store, userID: userID, targets: targets, now: time.Now, log: slog.Default()}
	if s.targets == nil {
		s.targets = ai.TargetCalculator{Log: s.log}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Change is the outcome of a profile write.
type Change struct {
	Profile model.Profile
	// Targets is set when the write recalculated targets.
	Targets *ai.MacroResult
	Remote  bool
}

func (s *Service) Get(ctx context.Context) (model.Profile, error) {
	p, err := s.store.GetProfile(ctx, s.userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return model.Profile{}, ErrNoProfile
	}
	return *p, nil
}

// Update validates and writes patch. When auto recalculation is on and
// the weight changes, the new targets go out in the same write.
func (s *Service) Update(ctx context.Context, patch model.ProfilePatch) (Change, error) {
	if err := ValidatePatch(&patch, s.now()); err != nil {
		return Change{}, err
	}
	current, err := s.Get(ctx)
	if err != nil {
		return Change{}, err
	}

	var change Change
	if current.AutoRecalculateMacros && patch.CurrentWeightKg != nil && *patch.CurrentWeightKg != current.CurrentWeightKg {
		next := applyPatch(current, patch)
		req := s.request(next)
		req.PreviousWeightKg = &current.CurrentWeightKg
		if current.DailyCalorieTarget > 0 {
			req.PreviousMacros = &ai.PreviousMacros{
				DailyCalorieTarget: current.DailyCalorieTarget,
				ProteinTargetG:     current.ProteinTargetG,
				CarbsTargetG:       current.CarbsTargetG,
				FatTargetG:         current.FatTargetG,
			}
		}
		res, remote := s.targets.Targets(ctx, req)
		res.Patch(&patch)
		change.Targets, change.Remote = &res, remote
		s.log.Info("targets recalculated after weight change",
			"user", s.userID, "from_kg", current.CurrentWeightKg, "to_kg", *patch.CurrentWeightKg,
			"calories", res.DailyCalorieTarget, "remote", remote)
	}

	if err := s.store.UpdateProfile(ctx, s.userID, patch); err != nil {
		return Change{}, fmt.Errorf("update profile: %w", err)
	}
	change.Profile, err = s.Get(ctx)
	return change, err
}

// ApplyWeight moves the profile weight to a newly logged weight. It only
// writes when auto recalculation is on and the weight differs.
func (s *Service) ApplyWeight(ctx context.Context, weightKg float64) (Change, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return Change{}, err
	}
	if !current.AutoRecalculateMacros || weightKg == current.CurrentWeightKg {
		return Change{Profile: current}, nil
	}
	return s.Update(ctx, model.ProfilePatch{CurrentWeightKg: &weightKg})
}

type OnboardingInput struct {
	DisplayName     string
	BirthDate       string
	Gender          nutrition.Gender
	HeightCm        float64
	CurrentWeightKg float64
	TargetWeightKg  float64
	ActivityLevel   nutrition.ActivityLevel
	Goal            nutrition.Goal
}

func (s *Service) CompleteOnboarding(ctx context.Context, in OnboardingInput) (Change, error) {
	if err := validateOnboarding(&in, s.now()); err != nil {
		return Change{}, err
	}
	if _, err := s.Get(ctx); err != nil {
		return Change{}, err
	}
	name := strings.TrimSpace(in.DisplayName)
	done := true
	patch := model.ProfilePatch{
		DisplayName:         &name,
		BirthDate:           &in.BirthDate,
		Gender:              &in.Gender,
		HeightCm:            &in.HeightCm,
		CurrentWeightKg:     &in.CurrentWeightKg,
		TargetWeightKg:      &in.TargetWeightKg,
		ActivityLevel:       &in.ActivityLevel,
		Goal:                &in.Goal,
		OnboardingCompleted: &done,
	}
	next := applyPatch(model.Profile{}, patch)
	return s.writeTargets(ctx, next, patch)
}

// Recalculate recomputes every target, water included, from the stored profile.
func (s *Service) Recalculate(ctx context.Context) (Change, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return Change{}, err
	}
	if current.CurrentWeightKg <= 0 {
		return Change{}, model.ValidationError{"current_weight_kg": "must be set before recalculating"}
	}
	return s.writeTargets(ctx, current, model.ProfilePatch{})
}

func (s *Service) writeTargets(ctx context.Context, p model.Profile, patch model.ProfilePatch) (Change, error) {
	res, remote := s.targets.Targets(ctx, s.request(p))
	res.Patch(&patch)
	water := res.DailyWaterTargetMl
	patch.DailyWaterTargetMl = &water
	if err := s.store.UpdateProfile(ctx, s.userID, patch); err != nil {
		return Change{}, fmt.Errorf("update profile targets: %w", err)
	}
	updated, err := s.Get(ctx)
	if err != nil {
		return Change{}, err
	}
	return Change{Profile: updated, Targets: &res, Remote: remote}, nil
}

func (s *Service) request(p model.Profile) ai.MacroRequest {
	age := fallbackAge
	if birth, err := model.ParseDate(p.BirthDate); err == nil {
		age = nutrition.AgeOn(birth, s.now())
	}
	height := p.HeightCm
	if height <= 0 {
		height = fallbackHeightCm
	}
	target := p.TargetWeightKg
	if target <= 0 {
		target = p.CurrentWeightKg
	}
	activity := p.ActivityLevel
	if activity == "" {
		activity = nutrition.ActivityModerate
	}
	goal := p.Goal
	if goal == "" {
		goal = nutrition.GoalMaintain
	}
	return ai.MacroRequest{
		Age:             age,
		Gender:          p.Gender,
		HeightCm:        height,
		CurrentWeightKg: p.CurrentWeightKg,
		TargetWeightKg:  target,
		ActivityLevel:   activity,
		Goal:            goal,
	}
}

// applyPatch previews the inputs of a recalculation.
func applyPatch(p model.Profile, patch model.ProfilePatch) model.Profile {
	if patch.BirthDate != nil {
		p.BirthDate = *patch.BirthDate
	}
	if patch.Gender != nil {
		p.Gender = *patch.Gender
	}
	if patch.HeightCm != nil {
		p.HeightCm = *patch.HeightCm
	}
	if patch.CurrentWeightKg != nil {
		p.CurrentWeightKg = *patch.CurrentWeightKg
	}
	if patch.TargetWeightKg != nil {
		p.TargetWeightKg = *patch.TargetWeightKg
	}
	if patch.ActivityLevel != nil {
		p.ActivityLevel = *patch.ActivityLevel
	}
	if patch.Goal != nil {
		p.Goal = *patch.Goal
	}
	return p
}
