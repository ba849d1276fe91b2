// Package store persists the records of a base. Backends only store and
// return records; ordering, filtering and permissions live in the base.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/sqlstore"
)

type Backend interface {
	// Load returns the records of a table in creation order.
	Load(ctx context.Context, tableID string) ([]model.Record, error)
	// Put inserts or replaces a record.
	Put(ctx context.Context, tableID string, rec model.Record) error
	Delete(ctx context.Context, tableID, recordID string) error
	Close() error
}

var (
	_ Backend = (*jsonstore.Store)(nil)
	_ Backend = (*sqlstore.Store)(nil)
)

// Kinds of backend accepted by Open.
const (
	KindJSON   = "json"
	KindSQLite = "sqlite"
	KindMySQL  = "mysql"
)

// Open builds the backend named by kind. File-based backends live in
// dataDir unless dsn points elsewhere.
func Open(ctx context.Context, kind, dataDir, dsn string) (Backend, error) {
	switch strings.ToLower(kind) {
	case "", KindJSON:
		path := dsn
		if path == "" {
			path = filepath.Join(dataDir, jsonstore.DefaultFileName)
		}
		return jsonstore.Open(path)
	case KindSQLite:
		if dsn == "" {
			dsn = filepath.Join(dataDir, "records.db")
		}
		return sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn)
	case KindMySQL:
		if dsn == "" {
			return nil, fmt.Errorf("store %q needs a dsn", kind)
		}
		return sqlstore.Open(ctx, sqlstore.DriverMySQL, dsn)
	}
	return nil, fmt.Errorf("unknown store %q (want json, sqlite or mysql)", kind)
}
