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

const sessionColumns = `id, bag_id, nickname, ip_address, geo_city, geo_country, created_at`

const resultColumns = `id, session_id, bag_item_id, status, observed_qty, notes, created_at`

// SessionInput is a check recorded against a bag.
type SessionInput struct {
	Nickname   *string
	IPAddress  *string
	GeoCity    *string
	GeoCountry *string
	Results    []ResultInput
}

// ResultInput is the outcome for one item of a check. A nil BagItemID records
// something that is not on the checklist.
type ResultInput struct {
	BagItemID   *int64
	Status      model.ResultStatus
	ObservedQty *int64
	Notes       *string
}

// optionalText trims s and drops it when nothing is left.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// CreateSession records a check of a bag together with its results.
func CreateSession(ctx context.Context, db *sqlx.DB, bagID int64, in SessionInput) (*model.InventorySession, error) {
	var session *model.InventorySession
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		bag, err := getBag(ctx, tx, bagID)
		if err != nil {
			return err
		}
		session, err = createSession(ctx, tx, bag, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitCheck records a check for the active bag identified by token.
func SubmitCheck(ctx context.Context, db *sqlx.DB, token string, in SessionInput) (*model.InventorySession, error) {
	var session *model.InventorySession
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		bag, err := getActiveBagByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		session, err = createSession(ctx, tx, bag, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func validateResults(ctx context.Context, tx *sqlx.Tx, bagID int64, results []ResultInput) error {
	for i, r := range results {
		if !r.Status.Valid() {
			return errs.Invalid("results[%d].status must be one of present, missing, not_enough, battery_low", i)
		}
		if r.ObservedQty != nil && *r.ObservedQty < 0 {
			return errs.Invalid("results[%d].observed_qty must be >= 0", i)
		}
		if r.BagItemID != nil {
			n, err := count(ctx, tx,
				`SELECT COUNT(*) FROM bag_items WHERE id = ? AND bag_id = ?`, *r.BagItemID, bagID)
			if err != nil {
				return fmt.Errorf("checking result item: %w", err)
			}
			if n == 0 {
				return errs.Invalid("results[%d].bag_item_id does not belong to this bag", i)
			}
		}
	}
	return nil
}

func createSession(ctx context.Context, tx *sqlx.Tx, bag *model.Bag, in SessionInput) (*model.InventorySession, error) {
	if err := validateResults(ctx, tx, bag.ID, in.Results); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_sessions (bag_id, nickname, ip_address, geo_city, geo_country)
		 VALUES (?, ?, ?, ?, ?)`,
		bag.ID, optionalText(in.Nickname), optionalText(in.IPAddress),
		optionalText(in.GeoCity), optionalText(in.GeoCountry),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", constraintErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting session id: %w", err)
	}

	for _, r := range in.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_results (session_id, bag_item_id, status, observed_qty, notes)
			 VALUES (?, ?, ?, ?, ?)`,
			id, r.BagItemID, r.Status, r.ObservedQty, optionalText(r.Notes),
		); err != nil {
			return nil, fmt.Errorf("recording result: %w", constraintErr(err))
		}
	}

	return getSession(ctx, tx, id)
}

// GetSession returns a session with its results.
func GetSession(ctx context.Context, db *sqlx.DB, id int64) (*model.InventorySession, error) {
	return getSession(ctx, db, id)
}

func getSession(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.InventorySession, error) {
	s := &model.InventorySession{}
	err := sqlx.GetContext(ctx, q, s,
		`SELECT `+sessionColumns+` FROM inventory_sessions WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	s.Results = []model.InventoryResult{}
	if err := sqlx.SelectContext(ctx, q, &s.Results,
		`SELECT `+resultColumns+` FROM inventory_results WHERE session_id = ? ORDER BY id`, id,
	); err != nil {
		return nil, fmt.Errorf("getting session results: %w", err)
	}
	return s, nil
}

// ListSessions returns the checks recorded for a bag, newest first, each with
// its results.
func ListSessions(ctx context.Context, db *sqlx.DB, bagID int64) ([]model.InventorySession, error) {
	if _, err := getBag(ctx, db, bagID); err != nil {
		return nil, err
	}

	sessions := []model.InventorySession{}
	err := db.SelectContext(ctx, &sessions,
		`SELECT `+sessionColumns+` FROM inventory_sessions WHERE bag_id = ?
		 ORDER BY created_at DESC, id DESC`, bagID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]int64, len(sessions))
	index := make(map[int64]int, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
		index[sessions[i].ID] = i
		sessions[i].Results = []model.InventoryResult{}
	}

	query, args, err := sqlx.In(
		`SELECT `+resultColumns+` FROM inventory_results WHERE session_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("building results query: %w", err)
	}

	var results []model.InventoryResult
	if err := db.SelectContext(ctx, &results, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing session results: %w", err)
	}
	for _, r := range results {
		i := index[r.SessionID]
		sessions[i].Results = append(sessions[i].Results, r)
	}
	return sessions, nil
}

// DeleteSession deletes a session and its results.
func DeleteSession(ctx context.Context, db *sqlx.DB, id int64) error {
	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getSession(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_results WHERE session_id = ?`, id); err != nil {
			return fmt.Errorf("deleting session results: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_sessions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting session: %w", constraintErr(err))
		}
		return nil
	})
}
