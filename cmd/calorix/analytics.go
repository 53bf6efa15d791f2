package calorix

import (
	"encoding/json"
	"fmt"

	"github.com/GokhanOfficial/CaloriX/internal/analytics"
	"github.com/spf13/cobra"
)

var analyticsJSON bool

var analyticsCmd = &cobra.Command{
	Use:   "analytics [week|month|3months]",
	Short: "Show averages, adherence and weight trend for a period",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period := analytics.PeriodWeek
		if len(args) == 1 {
			p, err := analytics.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			period = p
		}
		return withSession(cmd, func(s *session) error {
			p, err := s.store.GetProfile(s.ctx, s.userID)
			if err != nil {
				return err
			}
			target := 0
			if p != nil {
				target = p.DailyCalorieTarget
			}
			report, err := analytics.NewService(s.store, analytics.WithLogger(logger)).Report(s.ctx, s.userID, period, target)
			if err != nil {
				return err
			}
			if analyticsJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd, report, target)
			return nil
		})
	},
}

func printReport(cmd *cobra.Command, r analytics.Report, target int) {
	out := cmd.OutOrStdout()
	avg := r.Averages
	fmt.Fprintf(out, "Period: %s (%s to %s)\n", r.Period, r.FromDate, r.ToDate)
	fmt.Fprintf(out, "Days with data: %d / %d\n", avg.DaysWithData, avg.TotalDays)
	fmt.Fprintf(out, "Average: %d kcal | P %.1fg | C %.1fg | F %.1fg | water %d ml\n", avg.Calories, avg.Protein, avg.Carbs, avg.Fat, avg.WaterMl)
	if r.HighestDay != nil {
		fmt.Fprintf(out, "Highest: %s %d kcal\n", r.HighestDay.Date, r.HighestDay.Calories)
	}
	if r.LowestDay != nil {
		fmt.Fprintf(out, "Lowest: %s %d kcal\n", r.LowestDay.Date, r.LowestDay.Calories)
	}
	if target > 0 {
		fmt.Fprintf(out, "Adherence: %d / %d days within goal (%.1f%%)\n", r.Adherence.WithinGoalDays, r.Adherence.EvaluatedDays, r.Adherence.PercentWithin)
	}
	if n := len(r.WeightTrend); n > 0 {
		first, last := r.WeightTrend[0], r.WeightTrend[n-1]
		fmt.Fprintf(out, "Weight: %.1f kg -> %.1f kg\n", first.WeightKg, last.WeightKg)
	}
	fmt.Fprintln(out, "DATE\tKCAL\tP\tC\tF\tWATER")
	for _, d := range r.Days {
		fmt.Fprintf(out, "%s\t%d\t%.1f\t%.1f\t%.1f\t%d\n", d.Date, d.Calories, d.Protein, d.Carbs, d.Fat, d.WaterMl)
	}
	if r.Stale {
		fmt.Fprintln(out, "Note: showing the last successful report")
	}
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	analyticsCmd.Flags().BoolVar(&analyticsJSON, "json", false, "Print the report as JSON")
}
