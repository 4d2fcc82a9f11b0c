// Package store holds the managers for sites, bags, checklist items and
// inventory sessions. Every mutating operation runs in a single transaction
// and enforces the deletion rules itself; the schema's foreign keys only back
// it up.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/torba/internal/errs"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// now is the SQL expression used for updated_at.
var now = sq.Expr("CURRENT_TIMESTAMP")

// withTx runs fn in a transaction, committing only if fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// execUpdate runs a built UPDATE statement.
func execUpdate(ctx context.Context, tx *sqlx.Tx, q sq.UpdateBuilder) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return constraintErr(err)
	}
	return nil
}

// isConstraint reports whether err is a SQLite constraint violation.
func isConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// constraintErr turns a constraint violation that slipped past the explicit
// checks into a conflict and passes any other error through.
func constraintErr(err error) error {
	if isConstraint(err) {
		return &errs.Error{Code: errs.EConflict, Msg: "operation violates data integrity", Err: err}
	}
	return err
}

// cleanName trims name and rejects it if nothing is left.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.Invalid("name is required and must not be empty")
	}
	return name, nil
}

// count runs a COUNT(*) query.
func count(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}
