// Package sqlstore keeps records in a SQL database through database/sql.
// The same statements run on SQLite and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

type Store struct {
	db     *sql.DB
	driver string
}

func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer at a time, and ":memory:" stays a single database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	createRecords := `CREATE TABLE IF NOT EXISTS records (
    table_id VARCHAR(64) NOT NULL,
    id VARCHAR(64) NOT NULL,
    created_at BIGINT NOT NULL,
    fields TEXT NOT NULL,
    PRIMARY KEY (table_id, id)
)`
	if _, err := s.db.ExecContext(ctx, createRecords); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, tableID string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, fields FROM records
    WHERE table_id=?
    ORDER BY created_at, id`, tableID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tableID, err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var (
			rec     model.Record
			created int64
			raw     string
		)
		if err := rows.Scan(&rec.ID, &created, &raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		if err := json.Unmarshal([]byte(raw), &rec.Fields); err != nil {
			return nil, fmt.Errorf("record %s: decode fields: %w", rec.ID, err)
		}
		if rec.Fields == nil {
			rec.Fields = model.Fields{}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", tableID, err)
	}
	return out, nil
}

// Put replaces the row inside a transaction; delete-then-insert keeps the
// statement portable across both drivers.
func (s *Store) Put(ctx context.Context, tableID string, rec model.Record) error {
	raw, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("record %s: encode fields: %w", rec.ID, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE table_id=? AND id=?`, tableID, rec.ID); err != nil {
		return fmt.Errorf("put %s: %w", rec.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO records (table_id, id, created_at, fields) VALUES (?,?,?,?)`,
		tableID, rec.ID, rec.CreatedAt.UnixNano(), string(raw)); err != nil {
		return fmt.Errorf("put %s: %w", rec.ID, err)
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, tableID, recordID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE table_id=? AND id=?`, tableID, recordID); err != nil {
		return fmt.Errorf("delete %s: %w", recordID, err)
	}
	return nil
}
