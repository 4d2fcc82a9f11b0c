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

func TestCreateAndGetSite(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	site, err := CreateSite(ctx, database, "  Main Station ", []string{"ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Main Station", site.Name)
	assert.Equal(t, model.Recipients{"ops@example.com"}, site.AlertRecipients)
	assert.False(t, site.CreatedAt.IsZero())
	assert.Nil(t, site.UpdatedAt)

	got, err := GetSite(ctx, database, site.ID)
	require.NoError(t, err)
	assert.Equal(t, site, got)
}

func TestCreateSiteValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		siteName   string
		recipients []string
		wantMsg    string
	}{
		{"empty name", "   ", []string{"a@b.com"}, "name is required and must not be empty"},
		{"no recipients", "HQ", nil, "alert_recipients must contain at least one email"},
		{"blank recipient", "HQ", []string{"a@b.com", " "}, "alert_recipients entries must be non-empty strings"},
		{"no at sign", "HQ", []string{"ops.example.com"}, "alert_recipients entries must contain '@' and '.'"},
		{"no dot", "HQ", []string{"ops@localhost"}, "alert_recipients entries must contain '@' and '.'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateSite(ctx, database, tt.siteName, tt.recipients)
			require.Error(t, err)
			assert.Equal(t, errs.EInvalid, errs.Code(err))
			assert.Equal(t, tt.wantMsg, errs.Message(err))
		})
	}

	sites, err := ListSites(ctx, database)
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestGetSiteNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetSite(context.Background(), database, 99)
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestListSitesNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := CreateSite(ctx, database, name, []string{"a@b.com"})
		require.NoError(t, err)
	}

	sites, err := ListSites(ctx, database)
	require.NoError(t, err)
	require.Len(t, sites, 3)
	assert.Equal(t, "C", sites[0].Name)
	assert.Equal(t, "A", sites[2].Name)
}

func TestUpdateSite(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	site, err := CreateSite(ctx, database, "HQ", []string{"a@b.com"})
	require.NoError(t, err)

	updated, err := UpdateSite(ctx, database, site.ID, SiteFields{
		AlertRecipients: model.Some([]string{"x@y.org", "z@y.org"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "HQ", updated.Name)
	assert.Equal(t, model.Recipients{"x@y.org", "z@y.org"}, updated.AlertRecipients)
	require.NotNil(t, updated.UpdatedAt)

	updated, err = UpdateSite(ctx, database, site.ID, SiteFields{Name: model.Some(" Depot ")})
	require.NoError(t, err)
	assert.Equal(t, "Depot", updated.Name)
}

func TestUpdateSiteRejectsInvalidInput(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	site, err := CreateSite(ctx, database, "HQ", []string{"a@b.com"})
	require.NoError(t, err)

	_, err = UpdateSite(ctx, database, site.ID, SiteFields{})
	assert.True(t, errs.Is(err, errs.EInvalid))

	_, err = UpdateSite(ctx, database, site.ID, SiteFields{Name: model.Null[string]()})
	assert.True(t, errs.Is(err, errs.EInvalid), "null fields count as absent")

	_, err = UpdateSite(ctx, database, site.ID, SiteFields{
		Name:            model.Some("Renamed"),
		AlertRecipients: model.Some([]string{}),
	})
	assert.True(t, errs.Is(err, errs.EInvalid))

	got, err := GetSite(ctx, database, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "HQ", got.Name, "failed update must not apply")

	_, err = UpdateSite(ctx, database, 99, SiteFields{Name: model.Some("X")})
	assert.True(t, errs.Is(err, errs.ENotFound))
}

func TestDeleteSiteWithBagsConflicts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	site, err := CreateSite(ctx, database, "HQ", []string{"a@b.com"})
	require.NoError(t, err)
	bag, err := CreateBag(ctx, database, site.ID, "Kit")
	require.NoError(t, err)

	err = DeleteSite(ctx, database, site.ID)
	assert.True(t, errs.Is(err, errs.EConflict))
	assert.Equal(t, "cannot delete site with existing bags", errs.Message(err))

	_, err = GetSite(ctx, database, site.ID)
	assert.NoError(t, err)

	bags, err := ListBagsBySite(ctx, database, site.ID)
	require.NoError(t, err)
	require.Len(t, bags, 1)
	assert.Equal(t, bag.ID, bags[0].ID)
	assert.Equal(t, bag.QRToken, bags[0].QRToken)
}

func TestDeleteEmptySite(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	site, err := CreateSite(ctx, database, "HQ", []string{"a@b.com"})
	require.NoError(t, err)

	require.NoError(t, DeleteSite(ctx, database, site.ID))

	_, err = GetSite(ctx, database, site.ID)
	assert.True(t, errs.Is(err, errs.ENotFound))

	err = DeleteSite(ctx, database, site.ID)
	assert.True(t, errs.Is(err, errs.ENotFound))
}
