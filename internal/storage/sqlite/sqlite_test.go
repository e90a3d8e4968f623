package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsup/internal/storage"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSetGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetItem(ctx, storage.KeyTheme, "dark"))

	value, err := db.GetItem(ctx, storage.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", value)
}

func TestSetItemOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetItem(ctx, storage.KeyCollections, `[]`))
	require.NoError(t, db.SetItem(ctx, storage.KeyCollections, `[{"id":"a"}]`))

	value, err := db.GetItem(ctx, storage.KeyCollections)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, value)
}

func TestGetMissingKey(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetItem(context.Background(), "never-written")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetItem(ctx, storage.KeyHistory, `[]`))
	require.NoError(t, db.RemoveItem(ctx, storage.KeyHistory))

	_, err := db.GetItem(ctx, storage.KeyHistory)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Removing an absent key is not an error.
	require.NoError(t, db.RemoveItem(ctx, storage.KeyHistory))
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.SetItem(ctx, storage.KeyConnections, `{"connections":[]}`))
	require.NoError(t, db.Close())

	db2, err := New(path)
	require.NoError(t, err)
	defer db2.Close()

	value, err := db2.GetItem(ctx, storage.KeyConnections)
	require.NoError(t, err)
	assert.Equal(t, `{"connections":[]}`, value)
}
