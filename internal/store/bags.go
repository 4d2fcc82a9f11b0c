package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/errs"
	"github.com/erazemk/torba/internal/model"
)

const bagColumns = `id, site_id, name, qr_token, active, created_at, updated_at`

// maxTokenAttempts bounds the retries when a generated token is already taken.
const maxTokenAttempts = 5

// newToken generates candidate bag tokens. Replaced in tests.
var newToken = uuid.NewString

// BagFields are the mutable fields of a bag. The token and the owning site
// can never change.
type BagFields struct {
	Name   model.Optional[string]
	Active model.Optional[bool]
}

// generateToken returns a token not used by any bag.
func generateToken(ctx context.Context, q sqlx.QueryerContext) (string, error) {
	for range maxTokenAttempts {
		token := newToken()
		n, err := count(ctx, q, `SELECT COUNT(*) FROM bags WHERE qr_token = ?`, token)
		if err != nil {
			return "", fmt.Errorf("checking token: %w", err)
		}
		if n == 0 {
			return token, nil
		}
	}
	return "", fmt.Errorf("generating token: no unique value after %d attempts", maxTokenAttempts)
}

// CreateBag creates an active bag in a site with a fresh token.
func CreateBag(ctx context.Context, db *sqlx.DB, siteID int64, name string) (*model.Bag, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	var bag *model.Bag
	err = withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getSite(ctx, tx, siteID); err != nil {
			return err
		}

		token, err := generateToken(ctx, tx)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO bags (site_id, name, qr_token, active) VALUES (?, ?, ?, 1)`,
			siteID, name, token,
		)
		if err != nil {
			return fmt.Errorf("creating bag: %w", constraintErr(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting bag id: %w", err)
		}

		bag, err = getBag(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bag, nil
}

// GetBag returns a bag by ID.
func GetBag(ctx context.Context, db *sqlx.DB, id int64) (*model.Bag, error) {
	return getBag(ctx, db, id)
}

func getBag(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Bag, error) {
	b := &model.Bag{}
	err := sqlx.GetContext(ctx, q, b,
		`SELECT `+bagColumns+` FROM bags WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("bag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting bag: %w", err)
	}
	return b, nil
}

// getActiveBagByToken resolves a token to an active bag. Unknown tokens and
// inactive bags fail the same way.
func getActiveBagByToken(ctx context.Context, q sqlx.QueryerContext, token string) (*model.Bag, error) {
	b := &model.Bag{}
	err := sqlx.GetContext(ctx, q, b,
		`SELECT `+bagColumns+` FROM bags WHERE qr_token = ?`, token,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("bag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting bag by token: %w", err)
	}
	if !b.Active {
		return nil, errs.NotFound("bag not found")
	}
	return b, nil
}

// ListBagsBySite returns the bags of a site, newest first.
func ListBagsBySite(ctx context.Context, db *sqlx.DB, siteID int64) ([]model.Bag, error) {
	if _, err := getSite(ctx, db, siteID); err != nil {
		return nil, err
	}

	bags := []model.Bag{}
	err := db.SelectContext(ctx, &bags,
		`SELECT `+bagColumns+` FROM bags WHERE site_id = ?
		 ORDER BY created_at DESC, id DESC`, siteID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bags: %w", err)
	}
	return bags, nil
}

// UpdateBag applies the present fields of f to a bag.
func UpdateBag(ctx context.Context, db *sqlx.DB, id int64, f BagFields) (*model.Bag, error) {
	var bag *model.Bag
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getBag(ctx, tx, id); err != nil {
			return err
		}

		q := psql.Update("bags").Set("updated_at", now).Where(sq.Eq{"id": id})
		fields := 0

		if f.Name.Present() {
			name, err := cleanName(f.Name.Value)
			if err != nil {
				return err
			}
			q = q.Set("name", name)
			fields++
		}
		if f.Active.Present() {
			q = q.Set("active", f.Active.Value)
			fields++
		}
		if fields == 0 {
			return errs.Invalid("at least one field (name or active) must be provided")
		}

		if err := execUpdate(ctx, tx, q); err != nil {
			return fmt.Errorf("updating bag: %w", err)
		}

		var err error
		bag, err = getBag(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bag, nil
}

// DeleteBag deletes a bag and its checklist. Fails if any inventory session
// was recorded for it.
func DeleteBag(ctx context.Context, db *sqlx.DB, id int64) error {
	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getBag(ctx, tx, id); err != nil {
			return err
		}

		sessions, err := count(ctx, tx, `SELECT COUNT(*) FROM inventory_sessions WHERE bag_id = ?`, id)
		if err != nil {
			return fmt.Errorf("checking bag sessions: %w", err)
		}
		if sessions > 0 {
			return errs.Conflict("cannot delete bag with existing inventory sessions")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM bag_items WHERE bag_id = ?`, id); err != nil {
			return fmt.Errorf("deleting bag items: %w", constraintErr(err))
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bags WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting bag: %w", constraintErr(err))
		}
		return nil
	})
}
