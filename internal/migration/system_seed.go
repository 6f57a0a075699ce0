package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bootstrapAdminID is a reserved identifier well below the snowflake range,
// so the seeded operator can never collide with generated IDs.
const bootstrapAdminID int64 = 1

func seedSystemImmutableData(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("system seed requires database handle")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin system seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := seedBootstrapAdministrator(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit system seed transaction: %w", err)
	}
	return nil
}

// seedBootstrapAdministrator inserts the initial administrator login when
// HUBBLE_BOOTSTRAP_ADMIN_EMAIL and HUBBLE_BOOTSTRAP_ADMIN_PASSWORD are set.
// An existing row with the reserved ID is left untouched so re-running the
// migrator never rotates credentials.
func seedBootstrapAdministrator(ctx context.Context, tx *sql.Tx) error {
	email := strings.TrimSpace(os.Getenv("HUBBLE_BOOTSTRAP_ADMIN_EMAIL"))
	password := os.Getenv("HUBBLE_BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap administrator password: %w", err)
	}

	now := time.Now().UTC()
	const stmt = `
		INSERT INTO users (id, first_name, last_name, email_address, password_hash, role, invoice_prefix, created_at, updated_at)
		VALUES ($1, 'System', 'Administrator', $2, $3, 'ADMINISTRATOR', 'HUB', $4, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, stmt, bootstrapAdminID, email, string(hash), now); err != nil {
		return fmt.Errorf("seed bootstrap administrator: %w", err)
	}
	return nil
}
