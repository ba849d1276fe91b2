package base

import (
	"context"
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
)

// Mutations are serialized by wmu. The backend write runs with mu
// released so readers and permission checks never wait on storage I/O;
// the in-memory tables only change once the backend has accepted the
// write.

// CreateRecord validates, persists and publishes a new record.
func (b *Base) CreateRecord(ctx context.Context, tableID string, fields model.Fields) (model.Record, error) {
	t, err := b.writableTable(tableID, fields)
	if err != nil {
		return model.Record{}, fmt.Errorf("create: %w", err)
	}
	if c := b.CheckCreatePermission(tableID, fields); !c.Allowed {
		return model.Record{}, &PermissionError{Op: "create", Reason: c.Reason}
	}

	rec := model.Record{ID: newRecordID(), CreatedAt: b.now(), Fields: model.Fields{}}
	for id, v := range fields {
		if v != nil {
			rec.Fields[id] = v
		}
	}

	b.wmu.Lock()
	defer b.wmu.Unlock()
	if b.isClosed() {
		return model.Record{}, ErrClosed
	}
	if err := b.backend.Put(ctx, tableID, rec); err != nil {
		return model.Record{}, fmt.Errorf("create: %w", err)
	}

	b.mu.Lock()
	b.tables[tableID] = append(b.tables[tableID], rec)
	b.publishLocked(tableID)
	b.mu.Unlock()
	b.logger.Debug("record created", "table", tableID, "record", rec.ID)

	out := rec.Clone()
	out.Name = recordName(t, out)
	return out, nil
}

// UpdateRecord merges fields into the stored record. A nil value clears
// the cell.
func (b *Base) UpdateRecord(ctx context.Context, tableID string, rec model.Record, fields model.Fields) error {
	if _, err := b.writableTable(tableID, fields); err != nil {
		return fmt.Errorf("update %s: %w", rec.ID, err)
	}
	if c := b.CheckUpdatePermission(tableID, rec, fields); !c.Allowed {
		return &PermissionError{Op: "update", Reason: c.Reason}
	}

	b.wmu.Lock()
	defer b.wmu.Unlock()
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	i := b.indexLocked(tableID, rec.ID)
	if i < 0 {
		b.mu.RUnlock()
		return fmt.Errorf("update: %w: %s", ErrRecordNotFound, rec.ID)
	}
	next := b.tables[tableID][i].Clone()
	b.mu.RUnlock()

	for id, v := range fields {
		if v == nil {
			delete(next.Fields, id)
		} else {
			next.Fields[id] = v
		}
	}
	if err := b.backend.Put(ctx, tableID, next); err != nil {
		return fmt.Errorf("update %s: %w", rec.ID, err)
	}

	// Only writers change tables and wmu is still held, so i is current.
	b.mu.Lock()
	b.tables[tableID][i] = next
	b.publishLocked(tableID)
	b.mu.Unlock()
	b.logger.Debug("record updated", "table", tableID, "record", rec.ID)
	return nil
}

func (b *Base) DeleteRecord(ctx context.Context, tableID string, rec model.Record) error {
	if b.schema.TableByIDIfExists(tableID) == nil {
		return fmt.Errorf("delete: %w: %s", ErrTableNotFound, tableID)
	}
	if c := b.CheckDeletePermission(tableID, rec); !c.Allowed {
		return &PermissionError{Op: "delete", Reason: c.Reason}
	}

	b.wmu.Lock()
	defer b.wmu.Unlock()
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	i := b.indexLocked(tableID, rec.ID)
	b.mu.RUnlock()
	if i < 0 {
		return fmt.Errorf("delete: %w: %s", ErrRecordNotFound, rec.ID)
	}
	if err := b.backend.Delete(ctx, tableID, rec.ID); err != nil {
		return fmt.Errorf("delete %s: %w", rec.ID, err)
	}

	b.mu.Lock()
	recs := b.tables[tableID]
	b.tables[tableID] = append(recs[:i:i], recs[i+1:]...)
	b.publishLocked(tableID)
	b.mu.Unlock()
	b.logger.Debug("record deleted", "table", tableID, "record", rec.ID)
	return nil
}

func (b *Base) isClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// writableTable checks that the table exists and every value fits its field.
func (b *Base) writableTable(tableID string, fields model.Fields) (*schema.Table, error) {
	t := b.schema.TableByIDIfExists(tableID)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	for id, v := range fields {
		f := t.FieldByIDIfExists(id)
		if f == nil {
			return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, id)
		}
		if err := f.Type.Validate(v); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return t, nil
}

// The async forms dispatch the mutation and return at once. The channel
// yields the outcome exactly once; callers are free to ignore it.

func (b *Base) CreateRecordAsync(tableID string, fields model.Fields) <-chan error {
	fields = cloneFields(fields)
	return b.dispatch("create", tableID, func(ctx context.Context) error {
		_, err := b.CreateRecord(ctx, tableID, fields)
		return err
	})
}

func (b *Base) UpdateRecordAsync(tableID string, rec model.Record, fields model.Fields) <-chan error {
	fields = cloneFields(fields)
	return b.dispatch("update", tableID, func(ctx context.Context) error {
		return b.UpdateRecord(ctx, tableID, rec, fields)
	})
}

func (b *Base) DeleteRecordAsync(tableID string, rec model.Record) <-chan error {
	return b.dispatch("delete", tableID, func(ctx context.Context) error {
		return b.DeleteRecord(ctx, tableID, rec)
	})
}

func (b *Base) dispatch(op, tableID string, fn func(context.Context) error) <-chan error {
	done := make(chan error, 1)

	b.mu.RLock()
	if b.closing {
		b.mu.RUnlock()
		done <- ErrClosed
		close(done)
		return done
	}
	b.inflight.Add(1)
	b.mu.RUnlock()

	go func() {
		defer b.inflight.Done()
		err := fn(b.ctx)
		if err != nil {
			b.logger.Error("mutation failed", "op", op, "table", tableID, "err", err)
		}
		done <- err
		close(done)
	}()
	return done
}

func cloneFields(f model.Fields) model.Fields {
	out := make(model.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
