package calorix

import (
	"fmt"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
	"github.com/spf13/cobra"
)

var todayDate string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's meals, water and progress against targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(todayDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			p, err := s.store.GetProfile(s.ctx, s.userID)
			if err != nil {
				return err
			}
			if p == nil {
				p = &model.Profile{}
			}
			out := cmd.OutOrStdout()
			totals := log.Totals()
			fmt.Fprintf(out, "Date: %s\n", date)

			slots := log.MealsBySlot()
			for _, slot := range model.MealTypes {
				entries := slots[slot]
				if len(entries) == 0 {
					continue
				}
				kcal := 0
				for _, e := range entries {
					kcal += e.CalculatedKcal
				}
				fmt.Fprintf(out, "%s: %d kcal\n", slot, kcal)
				for _, e := range entries {
					fmt.Fprintf(out, "  %s\t%.0fg\t%d kcal\n", e.Name(), e.AmountGMl, e.CalculatedKcal)
				}
			}

			fmt.Fprintf(out, "Intake: %d kcal\n", totals.Calories)
			fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", totals.Protein, totals.Carbs, totals.Fat)
			if p.DailyCalorieTarget > 0 {
				fmt.Fprintf(out, "Goal: %d kcal | P %dg | C %dg | F %dg\n", p.DailyCalorieTarget, p.ProteinTargetG, p.CarbsTargetG, p.FatTargetG)
				fmt.Fprintf(out, "Remaining: %d kcal (%d%%)\n", p.DailyCalorieTarget-totals.Calories,
					nutrition.ProgressPct(float64(totals.Calories), float64(p.DailyCalorieTarget)))
			} else {
				fmt.Fprintln(out, "Goal: not set")
			}

			water := log.WaterTotalMl()
			if p.DailyWaterTargetMl > 0 {
				fmt.Fprintf(out, "Water: %d / %d ml (%d%%)\n", water, p.DailyWaterTargetMl,
					nutrition.ProgressPct(float64(water), float64(p.DailyWaterTargetMl)))
			} else {
				fmt.Fprintf(out, "Water: %d ml\n", water)
			}
			if w := log.LatestWeight(); w != nil {
				fmt.Fprintf(out, "Weight: %.1f kg (%s)\n", w.WeightKg, w.EntryDate)
				if p.HeightCm > 0 {
					bmi := nutrition.BMI(w.WeightKg, p.HeightCm)
					fmt.Fprintf(out, "BMI: %.1f (%s)\n", bmi, nutrition.BMICategory(bmi))
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
}
