package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	recs, err := s.Load(context.Background(), "tblTasks")
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestPutLoadDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", DefaultFileName)
	s, err := Open(path)
	require.NoError(t, err)

	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "tblTasks", model.Record{ID: "rec1", CreatedAt: created, Fields: model.Fields{"fldName": "one"}}))
	require.NoError(t, s.Put(ctx, "tblTasks", model.Record{ID: "rec2", CreatedAt: created, Fields: model.Fields{"fldName": "two", "fldDone": true}}))
	require.NoError(t, s.Put(ctx, "tblTasks", model.Record{ID: "rec1", CreatedAt: created, Fields: model.Fields{"fldName": "uno"}}))
	require.NoError(t, s.Delete(ctx, "tblTasks", "rec2"))
	require.NoError(t, s.Delete(ctx, "tblTasks", "recMissing"))

	reopened, err := Open(path)
	require.NoError(t, err)
	recs, err := reopened.Load(ctx, "tblTasks")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "uno", recs[0].Fields["fldName"])
	require.Equal(t, created, recs[0].CreatedAt)
}

func TestLoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "t", model.Record{ID: "rec1", Fields: model.Fields{"f": "a"}}))

	recs, err := s.Load(ctx, "t")
	require.NoError(t, err)
	recs[0].Fields["f"] = "changed"

	again, err := s.Load(ctx, "t")
	require.NoError(t, err)
	require.Equal(t, "a", again[0].Fields["f"])
}

func TestOpenRejectsInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{`},
		{"wrong version", `{"version": 2, "tables": {}}`},
		{"record without id", `{"version": 1, "tables": {"t": [{"fields": {}}]}}`},
		{"nested cell value", `{"version": 1, "tables": {"t": [{"id": "r", "fields": {"f": {"x": 1}}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Open(path)
			require.Error(t, err)
		})
	}
}

func TestFailedWriteLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "t", model.Record{ID: "rec1", Fields: model.Fields{"f": "a"}}))
	require.NoError(t, s.Put(ctx, "t", model.Record{ID: "rec2", Fields: model.Fields{"f": "b"}}))

	// A directory in the way of the temp file makes every write fail.
	require.NoError(t, os.Mkdir(path+".tmp", 0o755))
	require.Error(t, s.Put(ctx, "t", model.Record{ID: "recBad", Fields: model.Fields{"f": "bad"}}))
	require.Error(t, s.Put(ctx, "t", model.Record{ID: "rec1", Fields: model.Fields{"f": "bad"}}))
	require.Error(t, s.Delete(ctx, "t", "rec1"))

	recs, err := s.Load(ctx, "t")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "rec1", recs[0].ID)
	require.Equal(t, "a", recs[0].Fields["f"])
	require.Equal(t, "rec2", recs[1].ID)

	require.NoError(t, os.Remove(path+".tmp"))
	require.NoError(t, s.Put(ctx, "t", model.Record{ID: "rec3", Fields: model.Fields{"f": "c"}}))

	reopened, err := Open(path)
	require.NoError(t, err)
	recs, err = reopened.Load(ctx, "t")
	require.NoError(t, err)
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	require.Equal(t, []string{"rec1", "rec2", "rec3"}, ids)
}

func TestDeleteDoesNotDisturbLoadedSlices(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	for _, id := range []string{"rec1", "rec2", "rec3"} {
		require.NoError(t, s.Put(ctx, "t", model.Record{ID: id, Fields: model.Fields{}}))
	}
	before := s.data.Tables["t"]

	require.NoError(t, s.Delete(ctx, "t", "rec1"))
	require.Equal(t, "rec1", before[0].ID)
	require.Equal(t, "rec2", before[1].ID)
	require.Equal(t, "rec3", before[2].ID)
	require.Len(t, s.data.Tables["t"], 2)
}
