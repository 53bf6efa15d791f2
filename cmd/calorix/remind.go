package calorix

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/notify"
	"github.com/GokhanOfficial/CaloriX/internal/reminders"
	"github.com/GokhanOfficial/CaloriX/internal/store"
	"github.com/spf13/cobra"
)

var remindEvery time.Duration

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send due reminders to every onboarded user",
	Long:  "remind checks weigh-in, water, daily log and weekly summary reminders once, or repeatedly with --every.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		push, email, err := notify.NewAWSSenders(ctx, cfg.AWSRegion, cfg.SNSTopicARN, cfg.SESFromEmail)
		if err != nil {
			return err
		}
		if push == nil && email == nil {
			logger.Warn("no push or email channel configured; reminders are only recorded")
		}
		zone := reminders.LoadZone(cfg.ReminderTimezone)

		return withDB(func(sqldb *sql.DB) error {
			st := store.New(sqldb)
			dispatcher := notify.NewDispatcher(st, push, email, logger)
			checker := reminders.NewChecker(st, dispatcher, reminders.WithZone(zone), reminders.WithLogger(logger))
			for {
				if err := runReminders(ctx, cmd, checker); err != nil {
					return err
				}
				if remindEvery <= 0 {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(remindEvery):
				}
			}
		})
	},
}

func runReminders(ctx context.Context, cmd *cobra.Command, checker *reminders.Checker) error {
	sum, err := checker.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Checked %d profiles: %d sent, %d failed\n", sum.Profiles, len(sum.Sent), sum.Failed)
	for _, n := range sum.Sent {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", n.UserID, n.Type, n.Title)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().DurationVar(&remindEvery, "every", 0, "Repeat the check at this interval until interrupted")
}
