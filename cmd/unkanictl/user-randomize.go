package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// userRandomizeCmd represents the user randomize command
var userRandomizeCmd = &cobra.Command{
	Use:   "randomize",
	Short: "Create users with fake details",
	Long: `Create users with fake names, contact details and demographics.

The users get the default role and app group. Their usernames are printed
to stdout.

Example:
  unkanictl user randomize --count 25`,
	Run: func(cmd *cobra.Command, args []string) {
		count, _ := cmd.Flags().GetInt("count")
		if count < 1 {
			fail("--count must be at least 1")
		}

		if err := randomizeUsers(cmd.Context(), count); err != nil {
			fail("Failed to create users: %v", err)
		}
	},
}

func init() {
	userCmd.AddCommand(userRandomizeCmd)
	userRandomizeCmd.Flags().IntP("count", "n", 1, "number of users to create")
}

func randomizeUsers(ctx context.Context, count int) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	accounts, err := env.accounts(nil)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		u, err := accounts.RandomizeUser(ctx)
		if err != nil {
			return err
		}
		fmt.Println(u.Username)
	}
	return nil
}
