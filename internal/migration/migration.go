package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// RunMigrations brings the schema to the newest embedded version under an
// advisory lock, seeds the bootstrap administrator, and records the applied
// version and checksum in system_bootstrap_state. Only the migrate
// entrypoint calls it; serving processes assume the schema is current.
func RunMigrations(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lock, err := lockSchema(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.release(context.Background())
	}()

	want, err := latestVersion()
	if err != nil {
		return err
	}
	sum, err := checksum()
	if err != nil {
		return err
	}

	migrator, err := newMigrator(db)
	if err != nil {
		return err
	}

	if _, err := cleanVersion(migrator); err != nil {
		return err
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: apply: %w", err)
	}

	got, err := cleanVersion(migrator)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("migration: schema at version %d, embedded history ends at %d", got, want)
	}

	if err := seedSystemImmutableData(ctx, db); err != nil {
		return err
	}
	return activateSystemBootstrapState(ctx, db, fmt.Sprintf("%d", want), sum)
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	files, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("migration: open embedded dir: %w", err)
	}
	source, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("migration: build source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration: build driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migration: build migrator: %w", err)
	}
	return migrator, nil
}

// cleanVersion reads the current schema version and refuses to continue on
// a dirty state, which means a previous run died mid-migration and needs a
// manual repair before anything else touches the schema.
func cleanVersion(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migration: read version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("migration: schema dirty at version %d, repair before retrying", version)
	}
	return version, nil
}
