package calorix

import (
	"fmt"

	"github.com/spf13/cobra"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Log water intake",
}

var waterDate string

var waterAddCmd = &cobra.Command{
	Use:   "add <ml>",
	Short: "Add a glass of water",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := parseIntArg("amount", args[0])
		if err != nil {
			return err
		}
		date, err := parseDateOrToday(waterDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			saved, err := log.AddWater(s.ctx, ml)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added water %s: %d ml (total %d ml)\n", saved.ID, saved.AmountMl, log.WaterTotalMl())
			return nil
		})
	},
}

var waterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List water entries for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(waterDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTIME\tML")
			for _, w := range log.Water() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", w.ID, w.EntryTime.Local().Format("15:04"), w.AmountMl)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d ml\n", log.WaterTotalMl())
			return nil
		})
	},
}

var waterRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a water entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(waterDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			if err := log.RemoveWater(s.ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed water %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterAddCmd, waterListCmd, waterRemoveCmd)
	waterCmd.PersistentFlags().StringVar(&waterDate, "date", "", "Date YYYY-MM-DD (default today)")
}
