package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/torba/internal/db"
	"github.com/erazemk/torba/internal/errs"
	"github.com/erazemk/torba/internal/model"
)

func newSite(t *testing.T, database *sqlx.DB) *model.Site {
	t.Helper()
	site, err := CreateSite(context.Background(), database, "HQ", []string{"ops@example.com"})
	require.NoError(t, err)
	return site
}

func newBag(t *testing.T, database *sqlx.DB, siteID int64, name string) *model.Bag {
	t.Helper()
	bag, err := CreateBag(context.Background(), database, siteID, name)
	require.NoError(t, err)
	return bag
}

func TestCreateBag(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)

	bag, err := CreateBag(ctx, database, site.ID, " Trauma Kit ")
	require.NoError(t, err)
	assert.Equal(t, "Trauma Kit", bag.Name)
	assert.Equal(t, site.ID, bag.SiteID)
	assert.True(t, bag.Active)
	assert.Len(t, bag.QRToken, 36)

	other := newBag(t, database, site.ID, "Other")
	assert.NotEqual(t, bag.QRToken, other.QRToken)
}

func TestCreateBagErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)

	_, err := CreateBag(ctx, database, site.ID, "  ")
	assert.True(t, errs.Is(err, errs.EInvalid))

	_, err = CreateBag(ctx, database, 99, "Kit")
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestCreateBagRetriesTokenCollision(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)

	existing := newBag(t, database, site.ID, "First")

	orig := newToken
	t.Cleanup(func() { newToken = orig })

	candidates := []string{existing.QRToken, existing.QRToken, "fresh-token"}
	newToken = func() string {
		tok := candidates[0]
		candidates = candidates[1:]
		return tok
	}

	bag, err := CreateBag(ctx, database, site.ID, "Second")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", bag.QRToken)
}

func TestCreateBagGivesUpAfterRepeatedCollisions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)

	existing := newBag(t, database, site.ID, "First")

	orig := newToken
	t.Cleanup(func() { newToken = orig })

	calls := 0
	newToken = func() string {
		calls++
		return existing.QRToken
	}

	_, err := CreateBag(ctx, database, site.ID, "Second")
	require.Error(t, err)
	assert.Equal(t, errs.EInternal, errs.Code(err))
	assert.Equal(t, maxTokenAttempts, calls)

	bags, err := ListBagsBySite(ctx, database, site.ID)
	require.NoError(t, err)
	assert.Len(t, bags, 1)
}

func TestListBagsBySite(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)
	other := newSite(t, database)

	newBag(t, database, site.ID, "A")
	newBag(t, database, site.ID, "B")
	newBag(t, database, other.ID, "C")

	bags, err := ListBagsBySite(ctx, database, site.ID)
	require.NoError(t, err)
	require.Len(t, bags, 2)
	assert.Equal(t, "B", bags[0].Name)
	assert.Equal(t, "A", bags[1].Name)

	_, err = ListBagsBySite(ctx, database, 99)
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestUpdateBagKeepsTokenAndSite(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)
	bag := newBag(t, database, site.ID, "Kit")

	updated, err := UpdateBag(ctx, database, bag.ID, BagFields{
		Name:   model.Some("Renamed"),
		Active: model.Some(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.Active)
	assert.Equal(t, bag.QRToken, updated.QRToken)
	assert.Equal(t, bag.SiteID, updated.SiteID)
	assert.NotNil(t, updated.UpdatedAt)

	_, err = UpdateBag(ctx, database, bag.ID, BagFields{})
	assert.True(t, errs.Is(err, errs.EInvalid))

	_, err = UpdateBag(ctx, database, bag.ID, BagFields{Name: model.Some(" ")})
	assert.True(t, errs.Is(err, errs.EInvalid))

	_, err = UpdateBag(ctx, database, 99, BagFields{Active: model.Some(true)})
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestDeleteBagCascadesItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)
	bag := newBag(t, database, site.ID, "Kit")

	item, err := CreateItem(ctx, database, bag.ID, ItemFields{Name: model.Some("Gauze")})
	require.NoError(t, err)

	require.NoError(t, DeleteBag(ctx, database, bag.ID))

	_, err = GetBag(ctx, database, bag.ID)
	assert.True(t, errs.Is(err, errs.ENotFound))
	_, err = GetItem(ctx, database, item.ID)
	assert.True(t, errs.Is(err, errs.ENotFound))

	require.NoError(t, DeleteSite(ctx, database, site.ID))
}

func TestDeleteBagWithSessionsConflicts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)
	bag := newBag(t, database, site.ID, "Kit")

	item, err := CreateItem(ctx, database, bag.ID, ItemFields{Name: model.Some("Gauze")})
	require.NoError(t, err)
	session, err := CreateSession(ctx, database, bag.ID, SessionInput{
		Results: []ResultInput{{BagItemID: &item.ID, Status: model.StatusPresent}},
	})
	require.NoError(t, err)

	err = DeleteBag(ctx, database, bag.ID)
	assert.True(t, errs.Is(err, errs.EConflict))
	assert.Equal(t, "cannot delete bag with existing inventory sessions", errs.Message(err))

	sessions, err := ListSessions(ctx, database, bag.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session.ID, sessions[0].ID)
	require.Len(t, sessions[0].Results, 1)
	assert.Equal(t, item.ID, *sessions[0].Results[0].BagItemID)

	_, err = GetBag(ctx, database, bag.ID)
	assert.NoError(t, err)
	_, err = GetItem(ctx, database, item.ID)
	assert.NoError(t, err, "rejected delete must leave items in place")
}
