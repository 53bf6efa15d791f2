package calorix

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/GokhanOfficial/CaloriX/internal/config"
	"github.com/spf13/cobra"
)

var (
	dbPath   string
	userFlag string
	verbose  bool

	cfg    config.Config
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "calorix",
	Short: "calorix tracks meals, water and weight from your terminal",
	Long:  "calorix is a local-first nutrition tracker with food search, barcode and AI recognition, targets, analytics and reminders.",

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		level := cfg.LogLevel
		if verbose || config.Verbose() {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User id (default: the local user)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}
