package calorix

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/portability"
	"github.com/spf13/cobra"
)

var (
	exportOut string
	importIn  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your data as a JSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			data, err := portability.NewService(s.store, s.userID, logger).Export(s.ctx)
			if err != nil {
				return err
			}
			if strings.TrimSpace(exportOut) == "" || exportOut == "-" {
				return data.Encode(cmd.OutOrStdout())
			}
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := data.Encode(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d meals, %d water, %d weight entries and %d foods to %s\n",
				len(data.MealEntries), len(data.WaterEntries), len(data.WeightEntries), len(data.Foods), exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge a JSON backup into your data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		var r io.Reader = cmd.InOrStdin()
		if importIn != "-" {
			f, err := os.Open(importIn)
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()
			r = f
		}
		backup, err := portability.Decode(r)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			report, err := portability.NewService(s.store, s.userID, logger).Import(s.ctx, backup)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported foods=%d meals=%d water=%d weight=%d skipped=%d failed=%d\n",
				report.Foods, report.Meals, report.Water, report.Weight, report.Skipped, report.Failed)
			for _, w := range report.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	importCmd.Flags().StringVar(&importIn, "in", "", "Backup file to import, or - for stdin")
}
