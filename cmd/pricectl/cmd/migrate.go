package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trykkeri-admin/config"
	"trykkeri-admin/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		conn, err := db.Open(cmd.Context(), cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.Migrate(cmd.Context(), conn, cfg.DBDriver); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
