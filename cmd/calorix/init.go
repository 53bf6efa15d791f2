package calorix

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local calorix database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized calorix database at %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "User: %s\n", s.userID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
