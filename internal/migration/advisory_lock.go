package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// schemaLockKey serializes migrator runs across hubble instances sharing a
// database. The value spells "hubble" in ASCII and must never change once
// deployed, or concurrent old/new migrators stop excluding each other.
const schemaLockKey int64 = 0x68_75_62_62_6c_65

// schemaLock holds a session-level Postgres advisory lock for the duration
// of a migration run.
type schemaLock struct {
	db *sql.DB
}

func lockSchema(ctx context.Context, db *sql.DB) (*schemaLock, error) {
	if db == nil {
		return nil, errors.New("migration: nil database handle")
	}

	var acquired bool
	row := db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", schemaLockKey)
	if err := row.Scan(&acquired); err != nil {
		return nil, fmt.Errorf("migration: acquire schema lock: %w", err)
	}
	if !acquired {
		return nil, errors.New("migration: schema lock is held by another migrator")
	}
	return &schemaLock{db: db}, nil
}

func (l *schemaLock) release(ctx context.Context) error {
	var released bool
	row := l.db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", schemaLockKey)
	if err := row.Scan(&released); err != nil {
		return fmt.Errorf("migration: release schema lock: %w", err)
	}
	if !released {
		return errors.New("migration: schema lock not held by this session")
	}
	return nil
}
