package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const adminPasswordEnv = "LFS_ADMIN_PASSWORD"

var adminPassword string

// lfs-ctl create-admin <email>
var createAdminCmd = &cobra.Command{
	Use:   "create-admin <email>",
	Short: "Create an operator account for the manage API",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		password := adminPassword
		if password == "" {
			password = os.Getenv(adminPasswordEnv)
		}
		if password == "" {
			return errors.New("password is required, pass --password or set " + adminPasswordEnv)
		}

		user, err := e.svcs.Auth.CreateAdmin(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
		return nil
	}),
}

func init() {
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password of the new operator, defaults to $"+adminPasswordEnv)
}
