package main

import (
	"errors"
	"os"

	"github.com/nourishtogether/donation-api/internal/services"
	"github.com/spf13/cobra"
)

var adminFlags struct {
	name     string
	email    string
	password string
}

// Admins cannot self-register; this is the only way to create one.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Example: `  nourish-api create-admin --name "Ops" --email ops@example.org --password 's3cret!'
  ADMIN_PASSWORD='s3cret!' nourish-api create-admin --name Ops --email ops@example.org`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminFlags.email == "" || adminFlags.password == "" {
			return errors.New("--email and --password (or ADMIN_PASSWORD) are required")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.migrate(); err != nil {
			return err
		}

		svc := services.NewAuthService(a.repos.Users, a.tokens, nil)
		user, err := svc.CreateAdmin(cmd.Context(), adminFlags.name, adminFlags.email, adminFlags.password)
		if err != nil {
			return err
		}
		a.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin.created")
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", os.Getenv("ADMIN_PASSWORD"), "login password")
	rootCmd.AddCommand(createAdminCmd)
}
