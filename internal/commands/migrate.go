package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	applog "bizdash/internal/log"
	"bizdash/internal/storage"
)

func newMigrateCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(applog.ComponentStorage)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.SQLiteDBPath
			}

			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}
			if err := storage.RunMigrations(dbPath); err != nil {
				return err
			}
			version, dirty, err := storage.MigrationVersion(dbPath)
			if err != nil {
				return err
			}
			logger.Info("Migrations applied", "db_path", dbPath, "version", version, "dirty", dirty)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", dbPath, version)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default $SQLITE_DB_PATH)")
	return cmd
}
