package internal

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func setupGoose(logger *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: logger})
	return goose.SetDialect("postgres")
}

// RunMigrations applies every pending migration.
func RunMigrations(db *sql.DB, logger *slog.Logger) error {
	if err := setupGoose(logger); err != nil {
		return fmt.Errorf("configure migrations: %w", err)
	}
	return goose.Up(db, "migrations")
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(db *sql.DB, logger *slog.Logger) error {
	if err := setupGoose(logger); err != nil {
		return fmt.Errorf("configure migrations: %w", err)
	}
	return goose.Status(db, "migrations")
}

// MigrationVersion returns the current schema version.
func MigrationVersion(db *sql.DB, logger *slog.Logger) (int64, error) {
	if err := setupGoose(logger); err != nil {
		return 0, fmt.Errorf("configure migrations: %w", err)
	}
	return goose.GetDBVersion(db)
}
