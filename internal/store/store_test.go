package store

import (
	"context"
	"testing"

	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlstore"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, "", t.TempDir(), "")
	require.NoError(t, err)
	require.IsType(t, &jsonstore.Store{}, b)

	b, err = Open(ctx, KindSQLite, t.TempDir(), "")
	require.NoError(t, err)
	require.IsType(t, &sqlstore.Store{}, b)
	require.NoError(t, b.Close())

	_, err = Open(ctx, KindMySQL, t.TempDir(), "")
	require.ErrorContains(t, err, "needs a dsn")

	_, err = Open(ctx, "cassandra", t.TempDir(), "")
	require.ErrorContains(t, err, "unknown store")
}
