package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/torba/internal/db"
	"github.com/erazemk/torba/internal/errs"
)

func TestCreateAndGetAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, err := CreateAdmin(ctx, database, "alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, "alice", admin.Username)
	assert.Equal(t, "hash", admin.PasswordHash)

	got, err := GetAdminByUsername(ctx, database, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, admin.ID, got.ID)

	missing, err := GetAdminByUsername(ctx, database, "Alice")
	require.NoError(t, err)
	assert.Nil(t, missing, "usernames match exactly")
}

func TestCreateAdminDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateAdmin(ctx, database, "alice", "hash")
	require.NoError(t, err)

	_, err = CreateAdmin(ctx, database, "alice", "other")
	assert.True(t, errs.Is(err, errs.EConflict))

	_, err = CreateAdmin(ctx, database, " ", "hash")
	assert.True(t, errs.Is(err, errs.EInvalid))

	n, err := CountAdmins(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
