package tui

import (
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/ui"
)

// DetailLines renders every field of rec, in schema order, under the
// record's name.
func DetailLines(t *schema.Table, rec model.Record) []string {
	th := ui.Current()
	name := rec.Name
	if name == "" {
		name = todo.UnnamedRecord
	}
	lines := []string{th.Title.Render(name), ""}
	for _, f := range t.Fields {
		var value string
		switch f.Type {
		case schema.Checkbox:
			value = th.BoxUnchecked
			if rec.Bool(f.ID) {
				value = th.BoxChecked
			}
		default:
			value = rec.String(f.ID)
			if value == "" {
				value = th.Muted.Render("(empty)")
			}
		}
		lines = append(lines, th.Accent.Render(f.Name+":")+" "+value)
	}
	lines = append(lines, "", th.Muted.Render("id "+rec.ID))
	return lines
}

func (m Model) fullRecord() model.Record {
	rec := m.expanded.rec
	if full, ok := m.src.Record(m.expanded.table.ID, rec.ID); ok {
		return full
	}
	return rec
}
