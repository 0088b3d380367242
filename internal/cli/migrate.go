package cli

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// the root pre-run already migrated
		log.WithField("driver", db.DriverName()).Info("database schema is up to date")
		return nil
	},
}
