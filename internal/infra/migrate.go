package infra

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the schema up to date at startup. Both binaries call
// this, so whichever starts first applies the pending migrations and the
// other sees ErrNoChange.
func RunMigrations(dsn string, logger *slog.Logger) error {
	sourceURL := "file://" + findMigrationDir()

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("schema up to date", "version", version, "dirty", dirty)

	return nil
}

// findMigrationDir walks from the working directory toward the filesystem
// root looking for db/migrations, so the binaries work from the repo root
// and from package directories under `go test`.
func findMigrationDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "db/migrations"
	}
	for {
		candidate := filepath.Join(dir, "db", "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "db/migrations"
		}
		dir = parent
	}
}
