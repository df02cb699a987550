package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the built-in roles and app groups",
	Long: `Create or update the built-in roles and app groups.

Roles: User (default), Admin, Super Admin.
App groups: Unkani (default), Demo, Testing.

Running the command again updates permissions and default flags in place.

Example:
  unkanictl seed
  unkanictl seed --demo-users 10`,
	Run: func(cmd *cobra.Command, args []string) {
		demoUsers, _ := cmd.Flags().GetInt("demo-users")

		if err := seed(cmd.Context(), demoUsers); err != nil {
			fail("Seeding failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().Int("demo-users", 0, "also create this many users with fake details")
}

func seed(ctx context.Context, demoUsers int) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	accounts, err := env.accounts(nil)
	if err != nil {
		return err
	}

	if err := accounts.InitializeRoles(ctx); err != nil {
		return fmt.Errorf("failed to create roles: %w", err)
	}
	if err := accounts.InitializeAppGroups(ctx); err != nil {
		return fmt.Errorf("failed to create app groups: %w", err)
	}
	env.Logger.Info().Msg("Roles and app groups seeded")

	for i := 0; i < demoUsers; i++ {
		u, err := accounts.RandomizeUser(ctx)
		if err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}
		fmt.Println(u.Username)
	}
	return nil
}
