package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskboard/internal/client/storage"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/cryptox"
)

func TestSQLiteStore_SealedValuesAreNotPlaintext(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	key := cryptox.DeriveKey([]byte("secret"), []byte("salt"))
	s := NewSQLiteStore(db, WithSealKey(key))

	require.NoError(t, s.Save(ctx, "A1", "R1"))

	var raw []byte
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = 'access_token'`).Scan(&raw))
	require.NotEqual(t, "A1", string(raw))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, Tokens{Access: "A1", Refresh: "R1"}, got)

	// a different key cannot read the pair back
	other := NewSQLiteStore(db, WithSealKey(cryptox.DeriveKey([]byte("other"), []byte("salt"))))
	got, err = other.Read(ctx)
	require.NoError(t, err)
	require.True(t, got.Empty())
}

func TestSQLiteStore_SaveFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)

	s := NewSQLiteStore(db)
	require.NoError(t, db.Close())

	err = s.Save(ctx, "A1", "R1")
	require.ErrorIs(t, err, common.ErrStorageWrite)

	_, err = s.Read(ctx)
	require.Error(t, err)

	require.Error(t, s.Clear(ctx))
}
