package cli

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/charmbracelet/lipgloss/table"
)

// settingNames maps command line names to settings, in picker order.
var settingNames = []struct {
	name string
	key  globalconfig.Key
}{
	{"table", globalconfig.SelectedTable},
	{"view", globalconfig.SelectedView},
	{"done", globalconfig.SelectedDoneField},
	{"priority", globalconfig.SelectedPriorityField},
}

func settingKey(name string) (globalconfig.Key, bool) {
	for _, s := range settingNames {
		if strings.EqualFold(s.name, name) {
			return s.key, true
		}
	}
	return "", false
}

const configUsage = "usage: tada config [get|set|unset] [table|view|done|priority] [value]"

func (e *env) doConfig(args []string) int {
	if len(args) == 0 || (args[0] == "get" && len(args) == 1) {
		e.printSettings()
		return 0
	}
	if len(args) < 2 {
		ui.Fail(e.opt.Stderr, configUsage)
		return 2
	}
	verb, name := args[0], args[1]
	key, ok := settingKey(name)
	if !ok {
		ui.Fail(e.opt.Stderr, "unknown setting: "+name)
		ui.Hint(e.opt.Stderr, "settings are table, view, done and priority")
		return 2
	}

	switch verb {
	case "get":
		fmt.Fprintln(e.opt.Stdout, e.settings.Get(key))
		return 0
	case "unset":
		if err := e.settings.Unset(key); err != nil {
			ui.Fail(e.opt.Stderr, "config: "+err.Error())
			return 1
		}
		ui.OK(e.opt.Stdout, name+" cleared")
		return 0
	case "set":
		if len(args) < 3 {
			ui.Fail(e.opt.Stderr, configUsage)
			return 2
		}
		id, label, err := e.resolveSetting(key, strings.Join(args[2:], " "))
		if err != nil {
			ui.Fail(e.opt.Stderr, "config: "+err.Error())
			return 1
		}
		if err := e.settings.Set(key, id); err != nil {
			ui.Fail(e.opt.Stderr, "config: "+err.Error())
			return 1
		}
		ui.OK(e.opt.Stdout, fmt.Sprintf("%s set to %s", name, label))
		return 0
	}
	ui.Fail(e.opt.Stderr, configUsage)
	return 2
}

// resolveSetting finds the table, view or field named by ref (id or
// name). Views and fields come from the selected table; the done field
// must be a checkbox and the priority field single line text.
func (e *env) resolveSetting(key globalconfig.Key, ref string) (id, label string, err error) {
	if key == globalconfig.SelectedTable {
		t := e.schema.FindTable(ref)
		if t == nil {
			return "", "", fmt.Errorf("no table %q", ref)
		}
		return t.ID, t.Name, nil
	}

	tbl := e.schema.TableByIDIfExists(e.settings.Get(globalconfig.SelectedTable))
	if tbl == nil {
		return "", "", fmt.Errorf("pick a table first")
	}
	if key == globalconfig.SelectedView {
		v := tbl.FindView(ref)
		if v == nil {
			return "", "", fmt.Errorf("no view %q in table %s", ref, tbl.Name)
		}
		return v.ID, v.Name, nil
	}

	f := tbl.FindField(ref)
	if f == nil {
		return "", "", fmt.Errorf("no field %q in table %s", ref, tbl.Name)
	}
	want := schema.SingleLineText
	if key == globalconfig.SelectedDoneField {
		want = schema.Checkbox
	}
	if !f.IsOneOf(want) {
		return "", "", fmt.Errorf("field %s is %s, want %s", f.Name, f.Type, want)
	}
	return f.ID, f.Name, nil
}

func (e *env) printSettings() {
	t := ui.Current()
	tbl := e.schema.TableByIDIfExists(e.settings.Get(globalconfig.SelectedTable))

	tb := table.New().
		Border(t.Border).
		BorderStyle(t.Muted).
		Headers("SETTING", "VALUE", "ID")
	for _, s := range settingNames {
		id := e.settings.Get(s.key)
		var name string
		switch s.key {
		case globalconfig.SelectedTable:
			if tbl != nil {
				name = tbl.Name
			}
		case globalconfig.SelectedView:
			if v := tbl.ViewByIDIfExists(id); v != nil {
				name = v.Name
			}
		default:
			if f := tbl.FieldByIDIfExists(id); f != nil {
				name = f.Name
			}
		}
		switch {
		case id == "":
			name = "(none)"
		case name == "":
			name = "(missing)"
		}
		tb.Row(s.name, name, id)
	}
	fmt.Fprintln(e.opt.Stdout, tb.String())
}

func (e *env) doSchema() int {
	t := ui.Current()
	for _, tbl := range e.schema.Tables {
		fields := table.New().
			Border(t.Border).
			BorderStyle(t.Muted).
			Headers("FIELD", "ID", "TYPE", "")
		for _, f := range tbl.Fields {
			var notes []string
			if f.ID == tbl.PrimaryFieldID {
				notes = append(notes, "primary")
			}
			if !f.Editable {
				notes = append(notes, "read-only")
			}
			fields.Row(f.Name, f.ID, string(f.Type), strings.Join(notes, ", "))
		}

		lines := []string{t.Title.Render(tbl.Name) + " " + t.Muted.Render(tbl.ID), fields.String(), t.Accent.Render("Views")}
		if len(tbl.Views) == 0 {
			lines = append(lines, t.Muted.Render("(none)"))
		}
		for _, v := range tbl.Views {
			line := fmt.Sprintf("  %s %s", v.Name, t.Muted.Render(v.ID))
			var sorts []string
			for _, s := range v.Sorts {
				name := s.FieldID
				if f := tbl.FieldByIDIfExists(s.FieldID); f != nil {
					name = f.Name
				}
				sorts = append(sorts, name+" "+string(s.Direction))
			}
			if len(sorts) > 0 {
				line += t.Muted.Render(" sorted by " + strings.Join(sorts, ", "))
			}
			lines = append(lines, line)
		}
		ui.Panel(e.opt.Stdout, lines)
	}
	return 0
}
