package calorix

import (
	"fmt"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/spf13/cobra"
)

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Log body weight",
}

var (
	weightDate  string
	weightNote  string
	weightLimit int
)

var weightAddCmd = &cobra.Command{
	Use:   "add <kg>",
	Short: "Log a weigh-in; targets follow when auto recalculation is on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := parseFloatArg("weight", args[0])
		if err != nil {
			return err
		}
		date, err := parseDateOrToday(weightDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			saved, err := log.AddWeight(s.ctx, kg, strings.TrimSpace(weightNote))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added weight %s: %.1f kg\n", saved.ID, saved.WeightKg)

			change, err := s.profiles().ApplyWeight(s.ctx, saved.WeightKg)
			if err != nil {
				return err
			}
			if t := change.Targets; t != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "New targets: %d kcal | P %dg | C %dg | F %dg\n", t.DailyCalorieTarget, t.ProteinTargetG, t.CarbsTargetG, t.FatTargetG)
			}
			return nil
		})
	},
}

var weightListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent weigh-ins",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			entries, err := s.store.ListWeights(s.ctx, gateway.WeightFilter{UserID: s.userID, Order: gateway.OrderDesc, Limit: weightLimit})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tKG\tNOTE")
			for _, w := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.1f\t%s\n", w.ID, w.EntryDate, w.WeightKg, w.Note)
			}
			return nil
		})
	},
}

var weightRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a weigh-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			if err := s.store.SoftDeleteWeight(s.ctx, s.userID, args[0], time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed weight %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(weightCmd)
	weightCmd.AddCommand(weightAddCmd, weightListCmd, weightRemoveCmd)
	weightAddCmd.Flags().StringVar(&weightDate, "date", "", "Date YYYY-MM-DD (default today)")
	weightAddCmd.Flags().StringVar(&weightNote, "note", "", "Optional note")
	weightListCmd.Flags().IntVar(&weightLimit, "limit", 30, "Maximum rows")
}
