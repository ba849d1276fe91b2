// Package base is the record source behind the to-do view: it owns the
// records of every table, answers live queries, applies mutations and
// decides permissions. Callers only ever see copies of records.
package base

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type Base struct {
	schema  *schema.Schema
	backend store.Backend
	perms   Permissions
	logger  *log.Logger
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	wmu sync.Mutex // serializes mutations; taken before mu

	mu      sync.RWMutex
	tables  map[string][]model.Record // creation order
	subs    map[*subscription]struct{}
	closing bool
	closed  bool

	inflight sync.WaitGroup
}

// Open loads every table of sch from backend.
func Open(ctx context.Context, sch *schema.Schema, backend store.Backend, perms Permissions, logger *log.Logger) (*Base, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	bctx, cancel := context.WithCancel(context.Background())
	b := &Base{
		schema:  sch,
		backend: backend,
		perms:   perms,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		ctx:     bctx,
		cancel:  cancel,
		tables:  make(map[string][]model.Record),
		subs:    make(map[*subscription]struct{}),
	}
	for _, t := range sch.Tables {
		recs, err := backend.Load(ctx, t.ID)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("load table %s: %w", t.ID, err)
		}
		b.tables[t.ID] = recs
		logger.Debug("loaded table", "table", t.ID, "records", len(recs))
	}
	return b, nil
}

func (b *Base) Schema() *schema.Schema { return b.schema }

func (b *Base) Permissions() Permissions { return b.perms }

// Record returns a full copy of one record, with Name filled in.
func (b *Base) Record(tableID, recordID string) (model.Record, bool) {
	t := b.schema.TableByIDIfExists(tableID)
	if t == nil {
		return model.Record{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexLocked(tableID, recordID)
	if i < 0 {
		return model.Record{}, false
	}
	rec := b.tables[tableID][i].Clone()
	rec.Name = recordName(t, rec)
	return rec, true
}

// Wait blocks until every dispatched async mutation has finished.
func (b *Base) Wait() { b.inflight.Wait() }

// Close lets in-flight mutations finish, then ends all subscriptions
// and closes the backend.
func (b *Base) Close() error {
	b.mu.Lock()
	if b.closing {
		b.mu.Unlock()
		return nil
	}
	b.closing = true
	b.mu.Unlock()

	b.inflight.Wait()

	// A direct mutation may still be writing to the backend.
	b.wmu.Lock()
	b.mu.Lock()
	b.closed = true
	subs := b.subs
	b.subs = make(map[*subscription]struct{})
	b.mu.Unlock()
	b.wmu.Unlock()

	for s := range subs {
		s.shutdown()
	}
	b.cancel()
	return b.backend.Close()
}

func (b *Base) indexLocked(tableID, recordID string) int {
	for i, r := range b.tables[tableID] {
		if r.ID == recordID {
			return i
		}
	}
	return -1
}

func recordName(t *schema.Table, rec model.Record) string {
	return rec.String(t.PrimaryFieldID)
}

func newRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
