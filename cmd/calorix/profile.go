package calorix

import (
	"fmt"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
	"github.com/GokhanOfficial/CaloriX/internal/profile"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile and daily targets",
}

var (
	profName         string
	profEmail        string
	profBirthDate    string
	profGender       string
	profHeight       float64
	profWeight       float64
	profTargetWeight float64
	profActivity     string
	profGoal         string
	profCalories     int
	profProtein      int
	profCarbs        int
	profFat          int
	profWater        int
	profWeighInDays  int
	profPush         bool
	profEmailNotify  bool
	profAutoRecalc   bool
)

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show profile and targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			p, err := s.profiles().Get(s.ctx)
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := profilePatchFromFlags(cmd)
		if patch == (model.ProfilePatch{}) {
			return fmt.Errorf("nothing to update")
		}
		return withSession(cmd, func(s *session) error {
			change, err := s.profiles().Update(s.ctx, patch)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
			printChange(cmd, change)
			return nil
		})
	},
}

var profileOnboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Complete onboarding and calculate targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := profile.OnboardingInput{
			DisplayName:     profName,
			BirthDate:       profBirthDate,
			Gender:          nutrition.Gender(profGender),
			HeightCm:        profHeight,
			CurrentWeightKg: profWeight,
			TargetWeightKg:  profTargetWeight,
			ActivityLevel:   nutrition.ActivityLevel(profActivity),
			Goal:            nutrition.Goal(profGoal),
		}
		if in.TargetWeightKg == 0 {
			in.TargetWeightKg = in.CurrentWeightKg
		}
		if in.ActivityLevel == "" {
			in.ActivityLevel = nutrition.ActivityModerate
		}
		if in.Goal == "" {
			in.Goal = nutrition.GoalMaintain
		}
		return withSession(cmd, func(s *session) error {
			change, err := s.profiles().CompleteOnboarding(s.ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Onboarding complete")
			printChange(cmd, change)
			return nil
		})
	},
}

var profileRecalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recalculate calorie, macro and water targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			change, err := s.profiles().Recalculate(s.ctx)
			if err != nil {
				return err
			}
			printChange(cmd, change)
			return nil
		})
	},
}

func profilePatchFromFlags(cmd *cobra.Command) model.ProfilePatch {
	var p model.ProfilePatch
	flags := cmd.Flags()
	str := func(name, v string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v = strings.TrimSpace(v)
		return &v
	}
	num := func(name string, v float64) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}
	integer := func(name string, v int) *int {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}
	boolean := func(name string, v bool) *bool {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}

	p.DisplayName = str("name", profName)
	p.Email = str("email", profEmail)
	p.BirthDate = str("birth-date", profBirthDate)
	if flags.Changed("gender") {
		g := nutrition.Gender(profGender)
		p.Gender = &g
	}
	if flags.Changed("activity") {
		a := nutrition.ActivityLevel(profActivity)
		p.ActivityLevel = &a
	}
	if flags.Changed("goal") {
		g := nutrition.Goal(profGoal)
		p.Goal = &g
	}
	p.HeightCm = num("height", profHeight)
	p.CurrentWeightKg = num("weight", profWeight)
	p.TargetWeightKg = num("target-weight", profTargetWeight)
	p.DailyCalorieTarget = integer("calories", profCalories)
	p.ProteinTargetG = integer("protein", profProtein)
	p.CarbsTargetG = integer("carbs", profCarbs)
	p.FatTargetG = integer("fat", profFat)
	p.DailyWaterTargetMl = integer("water", profWater)
	p.WeighInFrequencyDays = integer("weigh-in-days", profWeighInDays)
	p.PushNotificationsEnabled = boolean("push", profPush)
	p.EmailNotificationsEnabled = boolean("email-notifications", profEmailNotify)
	p.AutoRecalculateMacros = boolean("auto-recalc", profAutoRecalc)
	return p
}

func printProfile(cmd *cobra.Command, p model.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID: %s\n", p.ID)
	if p.DisplayName != "" {
		fmt.Fprintf(out, "Name: %s\n", p.DisplayName)
	}
	if p.Email != "" {
		fmt.Fprintf(out, "Email: %s\n", p.Email)
	}
	fmt.Fprintf(out, "Onboarded: %t\n", p.OnboardingCompleted)
	if p.BirthDate != "" {
		fmt.Fprintf(out, "Birth date: %s\n", p.BirthDate)
	}
	if p.Gender != "" {
		fmt.Fprintf(out, "Gender: %s\n", p.Gender)
	}
	fmt.Fprintf(out, "Height: %.0f cm\n", p.HeightCm)
	fmt.Fprintf(out, "Weight: %.1f kg (target %.1f kg)\n", p.CurrentWeightKg, p.TargetWeightKg)
	if p.HeightCm > 0 && p.CurrentWeightKg > 0 {
		bmi := nutrition.BMI(p.CurrentWeightKg, p.HeightCm)
		fmt.Fprintf(out, "BMI: %.1f (%s)\n", bmi, nutrition.BMICategory(bmi))
	}
	if p.ActivityLevel != "" || p.Goal != "" {
		fmt.Fprintf(out, "Activity: %s | Goal: %s\n", p.ActivityLevel, p.Goal)
	}
	fmt.Fprintf(out, "BMR: %d kcal | TDEE: %d kcal\n", p.BMR, p.TDEE)
	fmt.Fprintf(out, "Targets: %d kcal | P %dg | C %dg | F %dg | water %d ml\n", p.DailyCalorieTarget, p.ProteinTargetG, p.CarbsTargetG, p.FatTargetG, p.DailyWaterTargetMl)
	fmt.Fprintf(out, "Weigh-in every %d days\n", p.WeighInFrequencyDays)
	fmt.Fprintf(out, "Notifications: push %t | email %t\n", p.PushNotificationsEnabled, p.EmailNotificationsEnabled)
	fmt.Fprintf(out, "Auto recalculate: %t\n", p.AutoRecalculateMacros)
}

func printChange(cmd *cobra.Command, c profile.Change) {
	t := c.Targets
	if t == nil {
		return
	}
	origin := "local"
	if c.Remote {
		origin = "remote"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Targets (%s): %d kcal | P %dg | C %dg | F %dg\n", origin, t.DailyCalorieTarget, t.ProteinTargetG, t.CarbsTargetG, t.FatTargetG)
	fmt.Fprintf(out, "BMR: %d kcal | TDEE: %d kcal | water %d ml\n", t.BMR, t.TDEE, c.Profile.DailyWaterTargetMl)
	if strings.TrimSpace(t.Explanation) != "" {
		fmt.Fprintln(out, t.Explanation)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileOnboardCmd, profileRecalculateCmd)

	for _, c := range []*cobra.Command{profileSetCmd, profileOnboardCmd} {
		c.Flags().StringVar(&profName, "name", "", "Display name")
		c.Flags().StringVar(&profBirthDate, "birth-date", "", "Birth date YYYY-MM-DD")
		c.Flags().StringVar(&profGender, "gender", "", "male|female")
		c.Flags().Float64Var(&profHeight, "height", 0, "Height in cm")
		c.Flags().Float64Var(&profWeight, "weight", 0, "Current weight in kg")
		c.Flags().Float64Var(&profTargetWeight, "target-weight", 0, "Target weight in kg")
		c.Flags().StringVar(&profActivity, "activity", "", "sedentary|light|moderate|active|veryActive")
		c.Flags().StringVar(&profGoal, "goal", "", "lose|maintain|gain")
	}
	profileSetCmd.Flags().StringVar(&profEmail, "email", "", "Email for notifications")
	profileSetCmd.Flags().IntVar(&profCalories, "calories", 0, "Daily calorie target")
	profileSetCmd.Flags().IntVar(&profProtein, "protein", 0, "Protein target in g")
	profileSetCmd.Flags().IntVar(&profCarbs, "carbs", 0, "Carbs target in g")
	profileSetCmd.Flags().IntVar(&profFat, "fat", 0, "Fat target in g")
	profileSetCmd.Flags().IntVar(&profWater, "water", 0, "Daily water target in ml")
	profileSetCmd.Flags().IntVar(&profWeighInDays, "weigh-in-days", 0, "Days between weigh-in reminders")
	profileSetCmd.Flags().BoolVar(&profPush, "push", true, "Enable push notifications")
	profileSetCmd.Flags().BoolVar(&profEmailNotify, "email-notifications", true, "Enable email notifications")
	profileSetCmd.Flags().BoolVar(&profAutoRecalc, "auto-recalc", false, "Recalculate targets when weight changes")

	profileOnboardCmd.MarkFlagRequired("birth-date")
	profileOnboardCmd.MarkFlagRequired("gender")
	profileOnboardCmd.MarkFlagRequired("height")
	profileOnboardCmd.MarkFlagRequired("weight")
}
