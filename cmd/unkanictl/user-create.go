package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/unkani/unkani/pkg/account"
	"github.com/unkani/unkani/pkg/server/store"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Create an active user account.

The role and app group are looked up by name. Unknown or missing names fall
back to the default role and app group. Without --password a password is
generated and printed to stdout.

Example:
  unkanictl user create --username jdoe --email jdoe@example.com
  unkanictl user create --username admin --email admin@example.com --role Admin --confirmed`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		nu := account.NewUser{}
		nu.Username, _ = flags.GetString("username")
		nu.Email, _ = flags.GetString("email")
		nu.Password, _ = flags.GetString("password")
		nu.FirstName, _ = flags.GetString("first-name")
		nu.LastName, _ = flags.GetString("last-name")
		nu.Phone, _ = flags.GetString("phone")
		nu.Confirmed, _ = flags.GetBool("confirmed")
		roleName, _ := flags.GetString("role")
		groupName, _ := flags.GetString("app-group")

		generated := nu.Password == ""
		if generated {
			nu.Password = generatePassword()
		}

		if err := createUser(cmd.Context(), nu, roleName, groupName); err != nil {
			fail("Failed to create user: %v", err)
		}

		fmt.Fprintf(os.Stderr, "Created user '%s'\n", nu.Username)
		if generated {
			fmt.Println(nu.Password)
		}
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringP("username", "u", "", "username (required)")
	userCreateCmd.Flags().StringP("email", "e", "", "primary email address")
	userCreateCmd.Flags().String("password", "", "password (generated when empty)")
	userCreateCmd.Flags().String("first-name", "", "first name")
	userCreateCmd.Flags().String("last-name", "", "last name")
	userCreateCmd.Flags().String("phone", "", "primary mobile number")
	userCreateCmd.Flags().String("role", "", "role name (default role when empty)")
	userCreateCmd.Flags().String("app-group", "", "app group name (default app group when empty)")
	userCreateCmd.Flags().Bool("confirmed", false, "mark the account confirmed")
	_ = userCreateCmd.MarkFlagRequired("username")
}

func generatePassword() string {
	return gofakeit.Password(true, true, true, false, false, 20)
}

func createUser(ctx context.Context, nu account.NewUser, roleName, groupName string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	accounts, err := env.accounts(nil)
	if err != nil {
		return err
	}

	if roleName != "" {
		role, err := env.Stores.Roles.FindByName(ctx, roleName)
		switch {
		case err == nil:
			nu.Role = account.RoleOf(role)
		case errors.Is(err, store.ErrNotFound):
			env.Logger.Warn().Str("role", roleName).Msg("Unknown role, using default")
		default:
			return err
		}
	}
	if groupName != "" {
		group, err := env.Stores.AppGroups.FindByName(ctx, groupName)
		switch {
		case err == nil:
			nu.AppGroup = account.AppGroupOf(group)
		case errors.Is(err, store.ErrNotFound):
			env.Logger.Warn().Str("app_group", groupName).Msg("Unknown app group, using default")
		default:
			return err
		}
	}

	if nu.Email != "" {
		inUse, err := env.Stores.Users.EmailInUse(ctx, nu.Email)
		if err != nil {
			return err
		}
		if inUse {
			return account.ErrEmailInUse
		}
	}

	_, err = accounts.CreateUser(ctx, nu)
	return err
}
