package todo

import (
	"github.com/Makepad-fr/tada/internal/model"
)

// Form is the add-task draft. It lives while the selection is ready and
// starts empty each time it comes back.
type Form struct {
	app      *App
	name     string
	priority string
}

func (f *Form) Name() string     { return f.name }
func (f *Form) Priority() string { return f.priority }

func (f *Form) SetName(s string)     { f.name = s }
func (f *Form) SetPriority(s string) { f.priority = s }

// Enabled asks whether a record with a primary and a priority value may
// be created. When it may not, every input and the submit control are off.
func (f *Form) Enabled() model.PermissionCheck {
	sel := f.app.sel
	return f.app.src.CheckCreatePermission(sel.Table.ID, model.Fields{
		sel.Table.PrimaryFieldID: nil,
		sel.PriorityField.ID:     nil,
	})
}

// Submit dispatches the create and clears the draft right away, without
// waiting for the outcome. Empty values are sent as they are.
func (f *Form) Submit() bool {
	if c := f.Enabled(); !c.Allowed {
		f.app.logger.Debug("create not permitted", "reason", c.Reason)
		return false
	}
	sel := f.app.sel
	f.app.src.CreateRecordAsync(sel.Table.ID, model.Fields{
		sel.Table.PrimaryFieldID: f.name,
		sel.PriorityField.ID:     f.priority,
	})
	f.name, f.priority = "", ""
	return true
}
