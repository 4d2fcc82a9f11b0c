package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/torba/internal/db"
	"github.com/erazemk/torba/internal/errs"
	"github.com/erazemk/torba/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestCreateSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	bag := newBag(t, database, newSite(t, database).ID, "Kit")

	item, err := CreateItem(ctx, database, bag.ID, ItemFields{Name: model.Some("Gauze")})
	require.NoError(t, err)

	session, err := CreateSession(ctx, database, bag.ID, SessionInput{
		Nickname: ptr("  medic-1 "),
		GeoCity:  ptr(""),
		Results: []ResultInput{
			{BagItemID: &item.ID, Status: model.StatusNotEnough, ObservedQty: ptr(int64(1))},
			{Status: model.StatusMissing, Notes: ptr("spare radio")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, bag.ID, session.BagID)
	require.NotNil(t, session.Nickname)
	assert.Equal(t, "medic-1", *session.Nickname)
	assert.Nil(t, session.GeoCity)
	require.Len(t, session.Results, 2)
	assert.Equal(t, model.StatusNotEnough, session.Results[0].Status)
	assert.Equal(t, item.ID, *session.Results[0].BagItemID)
	assert.Nil(t, session.Results[1].BagItemID)
}

func TestCreateSessionValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	site := newSite(t, database)
	bag := newBag(t, database, site.ID, "Kit")
	other := newBag(t, database, site.ID, "Other")

	foreign, err := CreateItem(ctx, database, other.ID, ItemFields{Name: model.Some("Splint")})
	require.NoError(t, err)

	tests := []struct {
		name   string
		result ResultInput
	}{
		{"unknown status", ResultInput{Status: "lost"}},
		{"negative quantity", ResultInput{Status: model.StatusPresent, ObservedQty: ptr(int64(-2))}},
		{"item of another bag", ResultInput{Status: model.StatusPresent, BagItemID: &foreign.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateSession(ctx, database, bag.ID, SessionInput{Results: []ResultInput{tt.result}})
			assert.True(t, errs.Is(err, errs.EInvalid), err)
		})
	}

	sessions, err := ListSessions(ctx, database, bag.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = CreateSession(ctx, database, 99, SessionInput{})
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestSubmitCheckRequiresActiveBag(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	bag := newBag(t, database, newSite(t, database).ID, "Kit")

	session, err := SubmitCheck(ctx, database, bag.QRToken, SessionInput{IPAddress: ptr("203.0.113.7")})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", *session.IPAddress)

	_, err = UpdateBag(ctx, database, bag.ID, BagFields{Active: model.Some(false)})
	require.NoError(t, err)

	_, err = SubmitCheck(ctx, database, bag.QRToken, SessionInput{})
	assert.True(t, errs.Is(err, errs.ENotFound))

	_, err = SubmitCheck(ctx, database, "no-such-token", SessionInput{})
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestListSessionsWithResults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	bag := newBag(t, database, newSite(t, database).ID, "Kit")

	first, err := CreateSession(ctx, database, bag.ID, SessionInput{
		Results: []ResultInput{{Status: model.StatusPresent}},
	})
	require.NoError(t, err)
	second, err := CreateSession(ctx, database, bag.ID, SessionInput{
		Results: []ResultInput{{Status: model.StatusMissing}, {Status: model.StatusBatteryLow}},
	})
	require.NoError(t, err)
	empty, err := CreateSession(ctx, database, bag.ID, SessionInput{})
	require.NoError(t, err)

	sessions, err := ListSessions(ctx, database, bag.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, empty.ID, sessions[0].ID)
	assert.NotNil(t, sessions[0].Results)
	assert.Empty(t, sessions[0].Results)
	assert.Equal(t, second.ID, sessions[1].ID)
	assert.Len(t, sessions[1].Results, 2)
	assert.Equal(t, first.ID, sessions[2].ID)
	assert.Len(t, sessions[2].Results, 1)

	_, err = ListSessions(ctx, database, 99)
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestDeleteSessionCascadesResults(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	bag := newBag(t, database, newSite(t, database).ID, "Kit")

	session, err := CreateSession(ctx, database, bag.ID, SessionInput{
		Results: []ResultInput{{Status: model.StatusPresent}},
	})
	require.NoError(t, err)

	require.NoError(t, DeleteSession(ctx, database, session.ID))

	_, err = GetSession(ctx, database, session.ID)
	assert.True(t, errs.Is(err, errs.ENotFound))

	var results int
	require.NoError(t, database.Get(&results, `SELECT COUNT(*) FROM inventory_results`))
	assert.Zero(t, results)

	// With the session gone the bag can be deleted.
	require.NoError(t, DeleteBag(ctx, database, bag.ID))

	err = DeleteSession(ctx, database, session.ID)
	assert.True(t, errs.Is(err, errs.ENotFound))
}
