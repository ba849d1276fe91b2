package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	s, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestPutLoadDelete(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := model.Record{ID: "rec1", CreatedAt: t0, Fields: model.Fields{"fldName": "Buy milk", "fldDone": false}}
	second := model.Record{ID: "rec2", CreatedAt: t0.Add(time.Second), Fields: model.Fields{"fldName": "Walk", "fldRank": 2.0}}
	require.NoError(t, s.Put(ctx, "tblTasks", second))
	require.NoError(t, s.Put(ctx, "tblTasks", first))
	require.NoError(t, s.Put(ctx, "tblOther", model.Record{ID: "rec3", CreatedAt: t0}))

	recs, err := s.Load(ctx, "tblTasks")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "rec1", recs[0].ID, "records come back in creation order")
	require.Equal(t, t0, recs[0].CreatedAt)
	require.Equal(t, 2.0, recs[1].Fields["fldRank"])

	first.Fields["fldDone"] = true
	require.NoError(t, s.Put(ctx, "tblTasks", first))
	require.NoError(t, s.Delete(ctx, "tblTasks", "rec2"))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer reopened.Close()
	recs, err = reopened.Load(ctx, "tblTasks")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, true, recs[0].Fields["fldDone"])
}

func TestLoadEmptyTable(t *testing.T) {
	s, _ := openTemp(t)
	recs, err := s.Load(context.Background(), "tblNothing")
	require.NoError(t, err)
	require.Empty(t, recs)
}
