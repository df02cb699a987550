package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// userResetPasswordCmd represents the user reset-password command
var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username>",
	Short: "Reset a user's password and revoke their API token",
	Long: `Set a new generated password for a user and revoke their API token.

The user may be given by username or email. The new password is printed
to stdout.

Example:
  unkanictl user reset-password jdoe`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := resetPassword(cmd.Context(), args[0])
		if err != nil {
			fail("Failed to reset password for %s: %v", args[0], err)
		}
		fmt.Println(password)
	},
}

func init() {
	userCmd.AddCommand(userResetPasswordCmd)
}

func resetPassword(ctx context.Context, login string) (string, error) {
	env, err := loadEnvironment()
	if err != nil {
		return "", err
	}
	accounts, err := env.accounts(nil)
	if err != nil {
		return "", err
	}

	u, err := env.Stores.Users.FindByLogin(ctx, login)
	if err != nil {
		return "", err
	}

	password := generatePassword()
	if err := u.SetPassword(password); err != nil {
		return "", err
	}
	if err := env.Stores.Users.Update(ctx, u); err != nil {
		return "", fmt.Errorf("failed to update user: %w", err)
	}

	if u.TokenHash != nil {
		if err := accounts.RevokeToken(ctx, u); err != nil {
			return "", fmt.Errorf("failed to revoke API token: %w", err)
		}
	}
	return password, nil
}
