package calorix

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/ai"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/spf13/cobra"
)

var (
	recognizeText  string
	recognizeImage string
	recognizeSlot  string
	recognizeDate  string
	recognizeLog   bool
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Recognize foods from a photo or a description",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(recognizeText)
		if text == "" && recognizeImage == "" {
			return fmt.Errorf("one of --text or --image is required")
		}
		slot, err := model.ParseMealType(recognizeSlot)
		if err != nil {
			return err
		}
		date, err := parseDateOrToday(recognizeDate)
		if err != nil {
			return err
		}

		client := aiClient()
		var (
			rec    ai.Recognition
			source model.Source
		)
		if recognizeImage != "" {
			raw, err := os.ReadFile(recognizeImage)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			rec, err = client.RecognizeImage(cmd.Context(), base64.StdEncoding.EncodeToString(raw), text)
			if err != nil {
				return err
			}
			source = model.SourcePhoto
		} else {
			rec, err = client.RecognizeText(cmd.Context(), text)
			if err != nil {
				return err
			}
			source = model.SourceText
		}

		out := cmd.OutOrStdout()
		if rec.Description != "" {
			fmt.Fprintln(out, rec.Description)
		}
		fmt.Fprintln(out, "NAME\tAMOUNT\tKCAL/100\tP\tC\tF\tCONFIDENCE")
		for _, f := range rec.Foods {
			fmt.Fprintf(out, "%s\t%.0f\t%.0f\t%.1f\t%.1f\t%.1f\t%.0f%%\n", f.Name, f.AmountGMl, f.CaloriesPer100g, f.ProteinGPer100g, f.CarbsGPer100g, f.FatGPer100g, f.Confidence*100)
		}
		if !recognizeLog {
			return nil
		}

		entries := ai.Accept(rec, slot, date, source)
		if len(entries) == 0 {
			return fmt.Errorf("nothing recognized to log")
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			for _, e := range entries {
				saved, err := log.AddMeal(s.ctx, e)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Added meal %s: %s %.0fg %d kcal\n", saved.ID, saved.Name(), saved.AmountGMl, saved.CalculatedKcal)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
	recognizeCmd.Flags().StringVar(&recognizeText, "text", "", "Meal description, or extra context for --image")
	recognizeCmd.Flags().StringVar(&recognizeImage, "image", "", "Path to a meal photo")
	recognizeCmd.Flags().StringVar(&recognizeSlot, "slot", string(model.MealSnack), "Meal slot for --log")
	recognizeCmd.Flags().StringVar(&recognizeDate, "date", "", "Date YYYY-MM-DD for --log (default today)")
	recognizeCmd.Flags().BoolVar(&recognizeLog, "log", false, "Log the recognized foods as meals")
}
