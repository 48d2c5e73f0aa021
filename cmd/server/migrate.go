package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.migrate(); err != nil {
			return err
		}
		a.log.Info().Str("driver", a.cfg.DB.Driver).Msg("migrate.complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
