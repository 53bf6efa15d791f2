package calorix

import (
	"fmt"

	"github.com/GokhanOfficial/CaloriX/internal/foods"
	"github.com/GokhanOfficial/CaloriX/internal/provider/openfoodfacts"
	"github.com/GokhanOfficial/CaloriX/internal/provider/upcitemdb"
	"github.com/GokhanOfficial/CaloriX/internal/provider/usda"
	"github.com/spf13/cobra"
)

// products serves barcode lookups and online search.
var products = &openfoodfacts.Client{}

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Search the food catalog and your history",
}

var (
	foodOnline bool
	foodLimit  int
	foodSave   bool
)

// barcodeLookups tries Open Food Facts, then UPCitemdb, then USDA when a
// key is configured.
func barcodeLookups() foods.Lookups {
	lookups := foods.Lookups{products, &upcitemdb.Client{APIKey: cfg.UPCItemDBKey}}
	if cfg.USDAAPIKey != "" {
		lookups = append(lookups, &usda.Client{APIKey: cfg.USDAAPIKey})
	}
	return lookups
}

func (s *session) resolver() *foods.Resolver {
	return foods.NewResolver(s.store, s.userID, foods.WithLogger(logger), foods.WithProductLookup(barcodeLookups()))
}

var foodSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search foods by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if foodOnline {
			found, err := products.SearchFoods(cmd.Context(), args[0], foodLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "BARCODE\tNAME\tBRAND\tKCAL/100\tP\tC\tF")
			for _, p := range found {
				n := p.Nutrition
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n", p.Barcode, p.Name, p.Brand, n.Kcal, n.ProteinG, n.CarbsG, n.FatG)
			}
			return nil
		}
		return withSession(cmd, func(s *session) error {
			candidates, err := s.resolver().Search(s.ctx, args[0])
			if err != nil {
				return err
			}
			printCandidates(cmd, candidates)
			return nil
		})
	},
}

var foodRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List foods you logged recently",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			candidates, err := s.resolver().Recent(s.ctx)
			if err != nil {
				return err
			}
			printCandidates(cmd, candidates)
			return nil
		})
	},
}

var foodFavoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List the foods you log most often",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			candidates, err := s.resolver().Favorites(s.ctx)
			if err != nil {
				return err
			}
			printCandidates(cmd, candidates)
			return nil
		})
	},
}

var foodBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Look up a packaged product by barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			r := s.resolver()
			res, err := r.Barcode(s.ctx, args[0])
			if err != nil {
				return err
			}
			food := res.Food
			if foodSave && !res.FromCatalog {
				if food, err = r.SaveScanned(s.ctx, res); err != nil {
					return err
				}
			}
			origin := "openfoodfacts"
			if res.FromCatalog {
				origin = "catalog"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Name: %s\n", food.DisplayName())
			fmt.Fprintf(cmd.OutOrStdout(), "Barcode: %s\n", food.Barcode)
			fmt.Fprintf(cmd.OutOrStdout(), "Source: %s\n", origin)
			if food.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n", food.ID)
			}
			if n := food.Nutrition; n != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Per 100: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n", n.Kcal, n.ProteinG, n.CarbsG, n.FatG)
				if n.NutriScore != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Nutri-Score: %s\n", n.NutriScore)
				}
			}
			return nil
		})
	},
}

func printCandidates(cmd *cobra.Command, candidates []foods.Candidate) {
	fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tORIGIN\tKCAL/100\tP\tC\tF\tUSES")
	for _, c := range candidates {
		p := c.Per100
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\t%d\n", c.ID, c.DisplayName(), c.Origin, p.Kcal, p.ProteinG, p.CarbsG, p.FatG, c.UseCount)
	}
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodSearchCmd, foodRecentCmd, foodFavoritesCmd, foodBarcodeCmd)
	foodSearchCmd.Flags().BoolVar(&foodOnline, "online", false, "Search Open Food Facts instead of the local catalog")
	foodSearchCmd.Flags().IntVar(&foodLimit, "limit", 10, "Maximum online results")
	foodBarcodeCmd.Flags().BoolVar(&foodSave, "save", false, "Save an online product to the catalog")
}
