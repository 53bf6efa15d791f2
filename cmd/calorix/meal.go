package calorix

import (
	"fmt"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/foods"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
	"github.com/spf13/cobra"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log and edit meals",
}

var (
	mealName    string
	mealFood    string
	mealBarcode string
	mealAmount  float64
	mealSlot    string
	mealDate    string
	mealKcal    float64
	mealProtein float64
	mealCarbs   float64
	mealFat     float64
	mealNote    string

	mealEditName    string
	mealEditAmount  float64
	mealEditSlot    string
	mealEditNote    string
	mealEditKcal    float64
	mealEditProtein float64
	mealEditCarbs   float64
	mealEditFat     float64
)

var mealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal from a barcode, a food search or manual values per 100 g",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(mealDate)
		if err != nil {
			return err
		}
		slot, err := model.ParseMealType(mealSlot)
		if err != nil {
			return err
		}
		if mealAmount <= 0 {
			return fmt.Errorf("--amount must be > 0")
		}
		return withSession(cmd, func(s *session) error {
			entry, err := buildMealEntry(s, slot)
			if err != nil {
				return err
			}
			entry.Note = strings.TrimSpace(mealNote)
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			saved, err := log.AddMeal(s.ctx, entry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added meal %s: %s %.0fg %d kcal\n", saved.ID, saved.Name(), saved.AmountGMl, saved.CalculatedKcal)
			return nil
		})
	},
}

func buildMealEntry(s *session, slot model.MealType) (model.MealEntry, error) {
	resolver := s.resolver()
	switch {
	case strings.TrimSpace(mealBarcode) != "":
		res, err := resolver.Barcode(s.ctx, mealBarcode)
		if err != nil {
			return model.MealEntry{}, err
		}
		if !res.FromCatalog {
			food, err := resolver.SaveScanned(s.ctx, res)
			if err != nil {
				return model.MealEntry{}, err
			}
			res = foods.BarcodeResult{Food: food, FromCatalog: true}
		}
		c, err := res.Candidate()
		if err != nil {
			return model.MealEntry{}, err
		}
		return c.Entry(slot, mealAmount, model.SourceBarcode), nil
	case strings.TrimSpace(mealFood) != "":
		candidates, err := resolver.Search(s.ctx, mealFood)
		if err != nil {
			return model.MealEntry{}, err
		}
		if len(candidates) == 0 {
			return model.MealEntry{}, fmt.Errorf("no food matches %q", mealFood)
		}
		return candidates[0].Entry(slot, mealAmount, model.SourceManual), nil
	}

	name := strings.TrimSpace(mealName)
	if name == "" {
		return model.MealEntry{}, fmt.Errorf("one of --barcode, --food or --name is required")
	}
	e := model.MealEntry{CustomName: name, MealType: slot, AmountGMl: mealAmount, Source: model.SourceManual}
	e.SetTotals(nutrition.Scale(nutrition.Per100{Kcal: mealKcal, ProteinG: mealProtein, CarbsG: mealCarbs, FatG: mealFat}, mealAmount))
	return e, nil
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meals for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(mealDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tSLOT\tNAME\tAMOUNT\tKCAL\tP\tC\tF\tSOURCE")
			for _, e := range log.Meals() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.0f\t%d\t%.1f\t%.1f\t%.1f\t%s\n", e.ID, e.MealType, e.Name(), e.AmountGMl, e.CalculatedKcal, e.CalculatedProtein, e.CalculatedCarbs, e.CalculatedFat, e.Source)
			}
			return nil
		})
	},
}

var mealUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a meal; a new amount or per 100 g values recompute its totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(mealDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			var current *model.MealEntry
			for _, e := range log.Meals() {
				if e.ID == args[0] {
					current = &e
					break
				}
			}
			if current == nil {
				return fmt.Errorf("meal %s not found on %s", args[0], date)
			}
			patch, err := mealPatchFromFlags(cmd, *current)
			if err != nil {
				return err
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update")
			}
			if err := log.UpdateMeal(s.ctx, current.ID, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated meal %s\n", current.ID)
			return nil
		})
	},
}

func mealPatchFromFlags(cmd *cobra.Command, current model.MealEntry) (model.MealPatch, error) {
	var patch model.MealPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		name := strings.TrimSpace(mealEditName)
		patch.CustomName = &name
	}
	if flags.Changed("slot") {
		slot, err := model.ParseMealType(mealEditSlot)
		if err != nil {
			return patch, err
		}
		patch.MealType = &slot
	}
	if flags.Changed("note") {
		note := strings.TrimSpace(mealEditNote)
		patch.Note = &note
	}
	perChanged := false
	for _, name := range []string{"kcal", "protein", "carbs", "fat"} {
		perChanged = perChanged || flags.Changed(name)
	}
	if !flags.Changed("amount") && !perChanged {
		return patch, nil
	}

	amount := current.AmountGMl
	if flags.Changed("amount") {
		if mealEditAmount <= 0 {
			return patch, fmt.Errorf("--amount must be > 0")
		}
		amount = mealEditAmount
		patch.AmountGMl = &amount
	}
	per := nutrition.Per100FromTotals(current.Totals(), current.AmountGMl)
	if current.Food != nil && current.Food.Nutrition != nil {
		per = current.Food.Nutrition.Per100()
	}
	for name, dst := range map[string]*float64{"kcal": &per.Kcal, "protein": &per.ProteinG, "carbs": &per.CarbsG, "fat": &per.FatG} {
		if !flags.Changed(name) {
			continue
		}
		v, _ := flags.GetFloat64(name)
		if v < 0 {
			return patch, fmt.Errorf("--%s must be >= 0", name)
		}
		*dst = v
	}
	return patch.WithTotals(nutrition.Scale(per, amount)), nil
}

var mealRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(mealDate)
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			log, err := s.dailyLog(date)
			if err != nil {
				return err
			}
			if err := log.RemoveMeal(s.ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed meal %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealListCmd, mealUpdateCmd, mealRemoveCmd)
	mealCmd.PersistentFlags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default today)")

	mealAddCmd.Flags().StringVar(&mealName, "name", "", "Meal name for manual entries")
	mealAddCmd.Flags().StringVar(&mealFood, "food", "", "Log the best match for this food search")
	mealAddCmd.Flags().StringVar(&mealBarcode, "barcode", "", "Log a packaged product by barcode")
	mealAddCmd.Flags().Float64Var(&mealAmount, "amount", 100, "Amount in g or ml")
	mealAddCmd.Flags().StringVar(&mealSlot, "slot", string(model.MealSnack), "Meal slot: breakfast|lunch|dinner|snack")
	mealAddCmd.Flags().Float64Var(&mealKcal, "kcal", 0, "Calories per 100 g (manual)")
	mealAddCmd.Flags().Float64Var(&mealProtein, "protein", 0, "Protein g per 100 g (manual)")
	mealAddCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "Carbs g per 100 g (manual)")
	mealAddCmd.Flags().Float64Var(&mealFat, "fat", 0, "Fat g per 100 g (manual)")
	mealAddCmd.Flags().StringVar(&mealNote, "note", "", "Optional note")

	mealUpdateCmd.Flags().StringVar(&mealEditName, "name", "", "New name")
	mealUpdateCmd.Flags().Float64Var(&mealEditAmount, "amount", 0, "New amount in g or ml")
	mealUpdateCmd.Flags().StringVar(&mealEditSlot, "slot", "", "New meal slot")
	mealUpdateCmd.Flags().StringVar(&mealEditNote, "note", "", "New note")
	mealUpdateCmd.Flags().Float64Var(&mealEditKcal, "kcal", 0, "New calories per 100 g")
	mealUpdateCmd.Flags().Float64Var(&mealEditProtein, "protein", 0, "New protein g per 100 g")
	mealUpdateCmd.Flags().Float64Var(&mealEditCarbs, "carbs", 0, "New carbs g per 100 g")
	mealUpdateCmd.Flags().Float64Var(&mealEditFat, "fat", 0, "New fat g per 100 g")
}
