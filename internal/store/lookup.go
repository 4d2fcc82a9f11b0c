package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/model"
)

// LookupByToken resolves a scanned token to the public view of an active bag
// and its checklist. Unknown tokens and inactive bags are reported the same
// way so inactive bags cannot be probed.
func LookupByToken(ctx context.Context, db *sqlx.DB, token string) (*model.Lookup, error) {
	bag, err := getActiveBagByToken(ctx, db, token)
	if err != nil {
		return nil, err
	}

	items, err := listItems(ctx, db, bag.ID)
	if err != nil {
		return nil, err
	}

	return &model.Lookup{Bag: bag.Public(), Items: items}, nil
}
