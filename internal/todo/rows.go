package todo

import (
	"github.com/Makepad-fr/tada/internal/model"
)

const (
	UnnamedRecord = "Unnamed record"
	NoPriority    = "None"
)

// Row is one task as displayed. The permission checks are taken when the
// rows are built; actions check again before dispatching.
type Row struct {
	Record   model.Record
	Label    string
	Priority string
	Done     bool
	Toggle   model.PermissionCheck
	Remove   model.PermissionCheck
}

// Text is the row's clickable label.
func (r Row) Text() string {
	return r.Label + " - Priority: " + r.Priority
}

// Rows maps the live sequence one to one, in the source's order.
func (a *App) Rows() []Row {
	if !a.sel.Ready() || a.sub == nil {
		return nil
	}
	tableID := a.sel.Table.ID
	doneID := a.sel.DoneField.ID
	priorityID := a.sel.PriorityField.ID

	rows := make([]Row, len(a.records))
	for i, rec := range a.records {
		row := Row{
			Record:   rec,
			Label:    rec.Name,
			Priority: rec.String(priorityID),
			Done:     rec.Bool(doneID),
			Toggle:   a.src.CheckUpdatePermission(tableID, rec, model.Fields{doneID: nil}),
			Remove:   a.src.CheckDeletePermission(tableID, rec),
		}
		if row.Label == "" {
			row.Label = UnnamedRecord
		}
		if row.Priority == "" {
			row.Priority = NoPriority
		}
		rows[i] = row
	}
	return rows
}

func (a *App) record(i int) (model.Record, bool) {
	if !a.sel.Ready() || a.sub == nil || i < 0 || i >= len(a.records) {
		return model.Record{}, false
	}
	return a.records[i], true
}

// Toggle flips the done checkbox of row i. It reports whether an update
// was dispatched; nothing is sent without update permission.
func (a *App) Toggle(i int) bool {
	rec, ok := a.record(i)
	if !ok {
		return false
	}
	tableID, doneID := a.sel.Table.ID, a.sel.DoneField.ID
	if c := a.src.CheckUpdatePermission(tableID, rec, model.Fields{doneID: nil}); !c.Allowed {
		a.logger.Debug("toggle not permitted", "record", rec.ID, "reason", c.Reason)
		return false
	}
	a.src.UpdateRecordAsync(tableID, rec, model.Fields{doneID: !rec.Bool(doneID)})
	return true
}

// Delete removes row i's record when permitted.
func (a *App) Delete(i int) bool {
	rec, ok := a.record(i)
	if !ok {
		return false
	}
	tableID := a.sel.Table.ID
	if c := a.src.CheckDeletePermission(tableID, rec); !c.Allowed {
		a.logger.Debug("delete not permitted", "record", rec.ID, "reason", c.Reason)
		return false
	}
	a.src.DeleteRecordAsync(tableID, rec)
	return true
}

// Open expands row i's record.
func (a *App) Open(i int) bool {
	rec, ok := a.record(i)
	if !ok {
		return false
	}
	a.expander.Expand(a.sel.Table, rec)
	return true
}
