package tui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/charmbracelet/bubbles/key"
)

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.settingsView())
	b.WriteString("\n\n")

	switch m.mode {
	case modePicker:
		b.WriteString(t.Title.Render("Pick " + settingLabels[globalconfig.Keys[m.setting]]))
		b.WriteString("\n")
		b.WriteString(m.picker.View())
	case modeDetail:
		b.WriteString(ui.PanelString(strings.Join(m.detail, "\n")))
	default:
		b.WriteString(m.tasksView())
		if form := m.formView(); form != "" {
			b.WriteString("\n")
			b.WriteString(form)
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(t.Error.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(t.Muted.Render(helpLine(m.help())))
	return ui.PanelString(b.String())
}

func (m Model) help() []key.Binding {
	switch m.mode {
	case modeForm:
		return m.keys.formHelp()
	case modeConfig:
		return m.keys.configHelp()
	case modePicker:
		return m.keys.pickerHelp()
	case modeDetail:
		return m.keys.detailHelp()
	}
	return m.keys.listHelp()
}

// header shows the title, live counts and progress.
func (m Model) header() string {
	t := ui.Current()
	rows := m.app.Rows()
	done := 0
	for _, r := range rows {
		if r.Done {
			done++
		}
	}
	title := "Tasks"
	if tbl := m.app.Selection().Table; tbl != nil {
		title = tbl.Name
	}
	line := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render(title),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), len(rows)-done,
		t.Accent.Render("Total"), len(rows),
	)
	return line + "\n" + t.Muted.Render(ui.ProgressBar(done, len(rows), 28))
}

func (m Model) settingValue(k globalconfig.Key) string {
	t := ui.Current()
	id := m.cfg.Get(k)
	sel := m.app.Selection()
	var name string
	switch k {
	case globalconfig.SelectedTable:
		if sel.Table != nil {
			name = sel.Table.Name
		}
	case globalconfig.SelectedView:
		if sel.View != nil {
			name = sel.View.Name
		}
	case globalconfig.SelectedDoneField:
		if sel.DoneField != nil {
			name = sel.DoneField.Name
		}
	case globalconfig.SelectedPriorityField:
		if sel.PriorityField != nil {
			name = sel.PriorityField.Name
		}
	}
	switch {
	case name != "":
		return name
	case id != "":
		return t.Error.Render("(missing " + id + ")")
	}
	return t.Muted.Render("(none)")
}

func (m Model) settingsView() string {
	t := ui.Current()
	lines := make([]string, len(globalconfig.Keys))
	for i, k := range globalconfig.Keys {
		prefix := "  "
		label := fmt.Sprintf("%-15s", settingLabels[k]+":")
		if m.mode == modeConfig && i == m.setting {
			prefix = t.Selected.Render(t.Cursor)
			label = t.Accent.Render(label)
		}
		lines[i] = prefix + label + " " + m.settingValue(k)
	}
	return strings.Join(lines, "\n")
}

func (m Model) tasksView() string {
	t := ui.Current()
	sel := m.app.Selection()
	switch {
	case !sel.Ready():
		return t.Muted.Render(notReady)
	case sel.View == nil:
		return t.Muted.Render("Pick a view to see tasks (press c)")
	}
	return m.tasks.View()
}

// formView is empty while no form exists; a form the role may not use is
// shown muted with the reason.
func (m Model) formView() string {
	t := ui.Current()
	f := m.app.Form()
	if f == nil {
		return ""
	}
	title := t.Title.Render("Add task")
	body := m.name.View() + "\n" + m.priority.View()
	if c := f.Enabled(); !c.Allowed {
		title = t.Disabled.Render("Add task")
		body = t.Disabled.Render("Name: "+f.Name()) + "\n" +
			t.Disabled.Render("Priority: "+f.Priority()) + "\n" +
			t.Disabled.Render(c.Reason)
	} else if m.mode != modeForm {
		title += " " + t.Muted.Render("(press a)")
	}
	return ui.PanelString(title + "\n" + body)
}
