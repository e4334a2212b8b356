package cmd

import (
	"github.com/spf13/cobra"

	"site-cms/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the articles schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	pool, err := db.NewPool(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(cmd.Context(), pool); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}
