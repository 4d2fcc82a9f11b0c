package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/errs"
	"github.com/erazemk/torba/internal/model"
)

const adminColumns = `id, username, password_hash, created_at`

// CreateAdmin creates a new admin account.
func CreateAdmin(ctx context.Context, db *sqlx.DB, username, passwordHash string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.Invalid("username is required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if isConstraint(err) {
		return nil, errs.Conflict("admin %q already exists", username)
	}
	if err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting admin id: %w", err)
	}

	a := &model.Admin{}
	if err := db.GetContext(ctx, a, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}

// GetAdminByUsername returns an admin by exact username, or nil if there is
// none.
func GetAdminByUsername(ctx context.Context, db *sqlx.DB, username string) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.GetContext(ctx, a,
		`SELECT `+adminColumns+` FROM admins WHERE username = ?`, username,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin by username: %w", err)
	}
	return a, nil
}

// CountAdmins returns the number of admin accounts.
func CountAdmins(ctx context.Context, db *sqlx.DB) (int, error) {
	n, err := count(ctx, db, `SELECT COUNT(*) FROM admins`)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}
