package base

import (
	"fmt"
	"sync"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
)

type subscription struct {
	base  *Base
	query model.Query
	table *schema.Table
	view  *schema.View

	mu      sync.Mutex
	records []model.Record
	updates chan []model.Record
	done    bool
}

// Subscribe starts a live query. The returned subscription holds the
// current sequence and receives a replacement after every change to
// the table.
func (b *Base) Subscribe(q model.Query) (model.Subscription, error) {
	t := b.schema.TableByIDIfExists(q.TableID)
	if t == nil {
		return nil, fmt.Errorf("subscribe: %w: %s", ErrTableNotFound, q.TableID)
	}
	v := t.ViewByIDIfExists(q.ViewID)
	if v == nil {
		return nil, fmt.Errorf("subscribe: %w: %s", ErrViewNotFound, q.ViewID)
	}
	for _, id := range q.Fields {
		if t.FieldByIDIfExists(id) == nil {
			return nil, fmt.Errorf("subscribe: %w: %s", ErrFieldNotFound, id)
		}
	}

	s := &subscription{
		base:    b,
		query:   q,
		table:   t,
		view:    v,
		updates: make(chan []model.Record, 1),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	s.records = b.evaluateLocked(t, v, q)
	b.subs[s] = struct{}{}
	b.logger.Debug("subscribed", "table", q.TableID, "view", q.ViewID, "records", len(s.records))
	return s, nil
}

func (s *subscription) Records() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.records)
}

func (s *subscription) Updates() <-chan []model.Record { return s.updates }

func (s *subscription) Close() {
	s.base.mu.Lock()
	delete(s.base.subs, s)
	s.base.mu.Unlock()
	s.shutdown()
}

func (s *subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	close(s.updates)
}

// push replaces the pending update, if any, so a slow reader only ever
// sees the latest sequence.
func (s *subscription) push(recs []model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.records = recs
	select {
	case <-s.updates:
	default:
	}
	s.updates <- cloneAll(recs)
}

// publishLocked recomputes every subscription on tableID.
func (b *Base) publishLocked(tableID string) {
	for s := range b.subs {
		if s.table.ID != tableID {
			continue
		}
		s.push(b.evaluateLocked(s.table, s.view, s.query))
	}
}

// evaluateLocked filters by the view, orders by creation, then the
// view's sorts, then the query's sorts (each stable), and projects.
func (b *Base) evaluateLocked(t *schema.Table, v *schema.View, q model.Query) []model.Record {
	src := b.tables[t.ID]
	matched := make([]model.Record, 0, len(src))
	for _, r := range src {
		ok, err := v.Match(t, r)
		if err != nil {
			b.logger.Warn("view filter failed", "view", v.ID, "record", r.ID, "err", err)
			continue
		}
		if ok {
			matched = append(matched, r)
		}
	}
	schema.SortRecords(t, matched, v.Sorts)
	schema.SortRecords(t, matched, q.Sorts)

	out := make([]model.Record, len(matched))
	for i, r := range matched {
		out[i] = project(t, r, q.Fields)
	}
	return out
}

// project keeps only fields (all of them when fields is empty).
func project(t *schema.Table, r model.Record, fields []string) model.Record {
	out := model.Record{ID: r.ID, CreatedAt: r.CreatedAt, Name: recordName(t, r)}
	if len(fields) == 0 {
		out.Fields = r.Clone().Fields
		return out
	}
	out.Fields = make(model.Fields, len(fields))
	for _, id := range fields {
		if v, ok := r.Fields[id]; ok {
			out.Fields[id] = v
		}
	}
	return out
}

func cloneAll(recs []model.Record) []model.Record {
	out := make([]model.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
