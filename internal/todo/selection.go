package todo

import (
	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
)

// Selection is the configured table, view and fields after resolution.
// Any of them may be nil: unset, or deleted since it was picked.
type Selection struct {
	Table         *schema.Table
	View          *schema.View
	DoneField     *schema.Field
	PriorityField *schema.Field
}

// Resolve looks the four settings up; dangling ids resolve to nil.
func Resolve(cfg ConfigStore, res SchemaResolver) Selection {
	table := res.TableByIDIfExists(cfg.Get(globalconfig.SelectedTable))
	return Selection{
		Table:         table,
		View:          table.ViewByIDIfExists(cfg.Get(globalconfig.SelectedView)),
		DoneField:     table.FieldByIDIfExists(cfg.Get(globalconfig.SelectedDoneField)),
		PriorityField: table.FieldByIDIfExists(cfg.Get(globalconfig.SelectedPriorityField)),
	}
}

// Ready reports whether tasks can be shown and added.
func (s Selection) Ready() bool {
	return s.Table != nil && s.DoneField != nil && s.PriorityField != nil
}

// Query is the live query for the list: primary, done and priority
// fields of the chosen view, by ascending priority. There is none until
// the selection is ready and the view resolves.
func (s Selection) Query() (model.Query, bool) {
	if !s.Ready() || s.View == nil || s.Table.PrimaryField() == nil {
		return model.Query{}, false
	}
	return model.Query{
		TableID: s.Table.ID,
		ViewID:  s.View.ID,
		Fields:  []string{s.Table.PrimaryFieldID, s.DoneField.ID, s.PriorityField.ID},
		Sorts:   []model.Sort{{FieldID: s.PriorityField.ID, Direction: model.Ascending}},
	}, true
}
