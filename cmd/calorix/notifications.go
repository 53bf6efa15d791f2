package calorix

import (
	"fmt"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notify"},
	Short:   "View notifications and reminder preferences",
}

var (
	notifyLimit       int
	notifyPush        bool
	notifyEmail       bool
	notifyStartHour   int
	notifyEndHour     int
	notifyInterval    int
	notifySummaryDay  int
	notifySummaryHour int
)

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			items, err := s.store.ListNotifications(s.ctx, s.userID, notifyLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "TIME\tTYPE\tTITLE\tPUSH\tEMAIL")
			for _, n := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%t\t%t\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Type, n.Title, n.PushSent, n.EmailSent)
			}
			return nil
		})
	},
}

var notificationsPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show reminder preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			prefs, err := s.store.ListPreferences(s.ctx, s.userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "TYPE\tPUSH\tEMAIL\tSTART\tEND\tINTERVAL\tSUMMARY_DAY\tSUMMARY_HOUR")
			for _, p := range prefs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\t%t\t%d\t%d\t%d\t%d\t%d\n", p.NotificationType, p.PushEnabled, p.EmailEnabled, p.StartHour, p.EndHour, p.IntervalHours, p.SummaryDay, p.SummaryHour)
			}
			return nil
		})
	},
}

var notificationsSetCmd = &cobra.Command{
	Use:   "set <type>",
	Short: "Change one reminder preference (weigh_in|daily_log|water|goal_achieved|weekly_summary)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseNotificationType(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			prefs, err := s.store.ListPreferences(s.ctx, s.userID)
			if err != nil {
				return err
			}
			pref := model.NotificationPreference{UserID: s.userID, NotificationType: kind}
			for _, p := range prefs {
				if p.NotificationType == kind {
					pref = p
				}
			}
			if err := applyPreferenceFlags(cmd, &pref); err != nil {
				return err
			}
			if _, err := s.store.UpsertPreference(s.ctx, pref); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s preference\n", kind)
			return nil
		})
	},
}

func parseNotificationType(v string) (model.NotificationType, error) {
	key := model.NotificationType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", "_"))
	switch key {
	case model.NotifyWeighIn, model.NotifyDailyLog, model.NotifyWater, model.NotifyGoalAchieved, model.NotifyWeeklySummary:
		return key, nil
	default:
		return "", fmt.Errorf("invalid notification type %q (expected weigh_in|daily_log|water|goal_achieved|weekly_summary)", v)
	}
}

func applyPreferenceFlags(cmd *cobra.Command, p *model.NotificationPreference) error {
	flags := cmd.Flags()
	v := model.ValidationError{}
	hour := func(name string, value int, dst *int) {
		if !flags.Changed(name) {
			return
		}
		if value < 0 || value > 23 {
			v.Add(name, "must be between 0 and 23")
			return
		}
		*dst = value
	}
	if flags.Changed("push") {
		p.PushEnabled = notifyPush
	}
	if flags.Changed("email") {
		p.EmailEnabled = notifyEmail
	}
	hour("start", notifyStartHour, &p.StartHour)
	hour("end", notifyEndHour, &p.EndHour)
	hour("summary-hour", notifySummaryHour, &p.SummaryHour)
	if flags.Changed("interval") {
		if notifyInterval < 1 || notifyInterval > 24 {
			v.Add("interval", "must be between 1 and 24")
		} else {
			p.IntervalHours = notifyInterval
		}
	}
	if flags.Changed("summary-day") {
		if notifySummaryDay < 0 || notifySummaryDay > 6 {
			v.Add("summary-day", "must be between 0 (Sunday) and 6")
		} else {
			p.SummaryDay = notifySummaryDay
		}
	}
	return v.Err()
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsListCmd, notificationsPrefsCmd, notificationsSetCmd)
	notificationsListCmd.Flags().IntVar(&notifyLimit, "limit", 20, "Maximum rows")

	notificationsSetCmd.Flags().BoolVar(&notifyPush, "push", false, "Send as push notification")
	notificationsSetCmd.Flags().BoolVar(&notifyEmail, "email", false, "Send as email")
	notificationsSetCmd.Flags().IntVar(&notifyStartHour, "start", 0, "First hour of the reminder window")
	notificationsSetCmd.Flags().IntVar(&notifyEndHour, "end", 0, "Last hour of the reminder window")
	notificationsSetCmd.Flags().IntVar(&notifyInterval, "interval", 0, "Hours between water reminders")
	notificationsSetCmd.Flags().IntVar(&notifySummaryDay, "summary-day", 0, "Weekday of the weekly summary (0 = Sunday)")
	notificationsSetCmd.Flags().IntVar(&notifySummaryHour, "summary-hour", 0, "Hour of the weekly summary")
}
