package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

type MacroService interface {
	CalculateMacros(ctx context.Context, req MacroRequest) (MacroResult, error)
}

// TargetCalculator asks the macro service for targets and computes them
// locally whenever the service cannot answer.
type TargetCalculator struct {
	Remote MacroService
	Log    *slog.Logger
}

// Targets never fails; remote reports whether the service answered.
func (t TargetCalculator) Targets(ctx context.Context, req MacroRequest) (result MacroResult, remote bool) {
	log := t.Log
	if log == nil {
		log = slog.Default()
	}
	if t.Remote != nil {
		res, err := t.Remote.CalculateMacros(ctx, req)
		if err == nil && res.DailyCalorieTarget > 0 {
			if res.DailyWaterTargetMl <= 0 {
				res.DailyWaterTargetMl = nutrition.WaterTargetMl(req.CurrentWeightKg)
			}
			return res, true
		}
		if err == nil {
			err = fmt.Errorf("calorie target %d is not positive", res.DailyCalorieTarget)
		}
		log.Warn("macro service failed, using local targets", "err", err)
	}
	return LocalTargets(req), false
}

// LocalTargets runs the Mifflin-St Jeor chain with a 30/40/30 split.
func LocalTargets(req MacroRequest) MacroResult {
	bmr := nutrition.BMR(req.CurrentWeightKg, req.HeightCm, req.Age, req.Gender)
	tdee := nutrition.TDEE(bmr, req.ActivityLevel)
	cal := nutrition.TargetCalories(tdee, req.Goal)
	m := nutrition.Macros(cal)
	return MacroResult{
		DailyCalorieTarget: cal,
		ProteinTargetG:     m.ProteinG,
		CarbsTargetG:       m.CarbsG,
		FatTargetG:         m.FatG,
		DailyWaterTargetMl: nutrition.WaterTargetMl(req.CurrentWeightKg),
		BMR:                bmr,
		TDEE:               tdee,
		Explanation:        "Calculated locally with the Mifflin-St Jeor equation.",
	}
}
