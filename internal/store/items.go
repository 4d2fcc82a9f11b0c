package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/errs"
	"github.com/erazemk/torba/internal/model"
)

const itemColumns = `id, bag_id, name, expected_qty, track_expiry, expiry_date, test_batteries, created_at, updated_at`

// ItemFields are the writable fields of a checklist item as received from a
// client. ExpectedQty is kept as the raw JSON number so integer parsing and
// range checks happen in one place.
type ItemFields struct {
	Name          model.Optional[string]
	ExpectedQty   model.Optional[json.Number]
	TrackExpiry   model.Optional[bool]
	ExpiryDate    model.Optional[string]
	TestBatteries model.Optional[bool]
}

func (f ItemFields) empty() bool {
	return !f.Name.Set && !f.ExpectedQty.Set && !f.TrackExpiry.Set &&
		!f.ExpiryDate.Set && !f.TestBatteries.Set
}

// parseQuantity parses a non-negative integer quantity.
func parseQuantity(field string, n json.Number) (int64, error) {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(n), 64)
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) >= float64(math.MaxInt64) {
			return 0, errs.Invalid("%s must be an integer", field)
		}
		v = int64(f)
	}
	if v < 0 {
		return 0, errs.Invalid("%s must be >= 0", field)
	}
	return v, nil
}

// parseExpiry validates an expiry date against the effective tracking flag.
func parseExpiry(value string, trackExpiry bool) (model.Date, error) {
	if !trackExpiry {
		return model.Date{}, errs.Invalid("expiry_date requires track_expiry to be true")
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, errs.Invalid("expiry_date must be in YYYY-MM-DD format")
	}
	return d, nil
}

func checkFlags(f ItemFields) error {
	if f.TrackExpiry.Set && f.TrackExpiry.Null {
		return errs.Invalid("track_expiry must be a boolean")
	}
	if f.TestBatteries.Set && f.TestBatteries.Null {
		return errs.Invalid("test_batteries must be a boolean")
	}
	return nil
}

// CreateItem adds an item to a bag's checklist.
func CreateItem(ctx context.Context, db *sqlx.DB, bagID int64, f ItemFields) (*model.Item, error) {
	var item *model.Item
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getBag(ctx, tx, bagID); err != nil {
			return err
		}

		if !f.Name.Present() || strings.TrimSpace(f.Name.Value) == "" {
			return errs.Invalid("name is required and must not be empty")
		}
		name := strings.TrimSpace(f.Name.Value)

		var qty *int64
		if f.ExpectedQty.Present() {
			v, err := parseQuantity("expected_qty", f.ExpectedQty.Value)
			if err != nil {
				return err
			}
			qty = &v
		}

		if err := checkFlags(f); err != nil {
			return err
		}
		trackExpiry := f.TrackExpiry.Present() && f.TrackExpiry.Value

		var expiry *model.Date
		if f.ExpiryDate.Present() {
			d, err := parseExpiry(f.ExpiryDate.Value, trackExpiry)
			if err != nil {
				return err
			}
			expiry = &d
		}

		testBatteries := f.TestBatteries.Present() && f.TestBatteries.Value

		result, err := tx.ExecContext(ctx,
			`INSERT INTO bag_items (bag_id, name, expected_qty, track_expiry, expiry_date, test_batteries)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			bagID, name, qty, trackExpiry, expiry, testBatteries,
		)
		if err != nil {
			return fmt.Errorf("creating item: %w", constraintErr(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting item id: %w", err)
		}

		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns a checklist item by ID.
func GetItem(ctx context.Context, db *sqlx.DB, id int64) (*model.Item, error) {
	return getItem(ctx, db, id)
}

func getItem(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := sqlx.GetContext(ctx, q, item,
		`SELECT `+itemColumns+` FROM bag_items WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns a bag's checklist in creation order.
func ListItems(ctx context.Context, db *sqlx.DB, bagID int64) ([]model.Item, error) {
	if _, err := getBag(ctx, db, bagID); err != nil {
		return nil, err
	}
	return listItems(ctx, db, bagID)
}

func listItems(ctx context.Context, q sqlx.QueryerContext, bagID int64) ([]model.Item, error) {
	items := []model.Item{}
	err := sqlx.SelectContext(ctx, q, &items,
		`SELECT `+itemColumns+` FROM bag_items WHERE bag_id = ?
		 ORDER BY created_at, id`, bagID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// UpdateItem applies the present fields of f to a checklist item. A null
// expected_qty or expiry_date clears it.
func UpdateItem(ctx context.Context, db *sqlx.DB, id int64, f ItemFields) (*model.Item, error) {
	var item *model.Item
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		existing, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}

		if f.empty() {
			return errs.Invalid("at least one field (name, expected_qty, track_expiry, expiry_date or test_batteries) must be provided")
		}

		q := psql.Update("bag_items").Set("updated_at", now).Where(sq.Eq{"id": id})

		if f.Name.Set {
			name := strings.TrimSpace(f.Name.Value)
			if f.Name.Null || name == "" {
				return errs.Invalid("name cannot be empty")
			}
			q = q.Set("name", name)
		}

		if f.ExpectedQty.Set {
			var qty *int64
			if !f.ExpectedQty.Null {
				v, err := parseQuantity("expected_qty", f.ExpectedQty.Value)
				if err != nil {
					return err
				}
				qty = &v
			}
			q = q.Set("expected_qty", qty)
		}

		if err := checkFlags(f); err != nil {
			return err
		}

		trackExpiry := existing.TrackExpiry
		if f.TrackExpiry.Set {
			trackExpiry = f.TrackExpiry.Value
			q = q.Set("track_expiry", trackExpiry)
		}

		if f.ExpiryDate.Set {
			var expiry *model.Date
			if !f.ExpiryDate.Null {
				d, err := parseExpiry(f.ExpiryDate.Value, trackExpiry)
				if err != nil {
					return err
				}
				expiry = &d
			}
			q = q.Set("expiry_date", expiry)
		}

		if f.TestBatteries.Set {
			q = q.Set("test_batteries", f.TestBatteries.Value)
		}

		if err := execUpdate(ctx, tx, q); err != nil {
			return fmt.Errorf("updating item: %w", err)
		}

		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes a checklist item. Recorded results that referenced it
// are kept with their item reference cleared.
func DeleteItem(ctx context.Context, db *sqlx.DB, id int64) error {
	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getItem(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE inventory_results SET bag_item_id = NULL WHERE bag_item_id = ?`, id,
		); err != nil {
			return fmt.Errorf("detaching item results: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bag_items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting item: %w", constraintErr(err))
		}
		return nil
	})
}
