package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/DukeRupert/promptgate/internal"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *sql.DB, cfg *internal.Config) error {
				return internal.RunMigrations(db, internal.NewLogger(os.Stderr, cfg.Env, "info"))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *sql.DB, cfg *internal.Config) error {
				return internal.MigrationStatus(db, internal.NewLogger(os.Stderr, cfg.Env, "info"))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *sql.DB, cfg *internal.Config) error {
				v, err := internal.MigrationVersion(db, internal.NewLogger(os.Stderr, cfg.Env, "warn"))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			})
		},
	})
	return cmd
}

// withDB opens the configured database for a schema command. The usage
// ledger is not needed here.
func withDB(cmd *cobra.Command, fn func(*sql.DB, *internal.Config) error) error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return err
	}
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	logger := internal.NewLogger(os.Stderr, cfg.Env, "warn")
	if err := internal.PingDatabase(cmd.Context(), db, internal.DefaultConnectRetry, logger); err != nil {
		return err
	}
	return fn(db, cfg)
}
