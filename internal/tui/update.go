package tui

import (
	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

const notReady = "Pick a table, a done field and a priority field first (press c)"

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tasks.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.tasks, cmd = m.tasks.Update(msg)
		return m, cmd
	}
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		if row, i, ok := m.selectedRow(); ok {
			if !row.Toggle.Allowed {
				m.status = row.Toggle.Reason
			} else {
				m.app.Toggle(i)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if row, i, ok := m.selectedRow(); ok {
			if !row.Remove.Allowed {
				m.status = row.Remove.Reason
			} else {
				m.app.Delete(i)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if _, i, ok := m.selectedRow(); ok && m.app.Open(i) && m.expanded.set {
			m.detail = DetailLines(m.expanded.table, m.fullRecord())
			m.expanded.set = false
			m.mode = modeDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		f := m.app.Form()
		if f == nil {
			m.status = notReady
			return m, nil
		}
		if c := f.Enabled(); !c.Allowed {
			m.status = c.Reason
			return m, nil
		}
		m.mode = modeForm
		m.focus = 0
		m.priority.Blur()
		cmd := m.name.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Configure):
		m.mode = modeConfig
		return m, nil
	}

	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

func (m *Model) leaveForm() {
	m.mode = modeList
	m.name.Blur()
	m.priority.Blur()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.app.Form()
	if f == nil {
		m.leaveForm()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.leaveForm()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if m.focus == 0 {
			m.focus = 1
			m.name.Blur()
			cmd := m.priority.Focus()
			return m, cmd
		}
		m.focus = 0
		m.priority.Blur()
		cmd := m.name.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		f.SetName(m.name.Value())
		f.SetPriority(m.priority.Value())
		if !f.Submit() {
			m.status = f.Enabled().Reason
			return m, nil
		}
		m.status = ""
		m.name.SetValue(f.Name())
		m.priority.SetValue(f.Priority())
		m.focus = 0
		m.priority.Blur()
		cmd := m.name.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.name, cmd = m.name.Update(msg)
		f.SetName(m.name.Value())
	} else {
		m.priority, cmd = m.priority.Update(msg)
		f.SetPriority(m.priority.Value())
	}
	return m, cmd
}

func (m Model) updateConfig(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Configure):
		m.mode = modeList
	case key.Matches(msg, m.keys.Up):
		if m.setting > 0 {
			m.setting--
		}
	case key.Matches(msg, m.keys.Down):
		if m.setting < len(globalconfig.Keys)-1 {
			m.setting++
		}
	case key.Matches(msg, m.keys.Clear):
		k := globalconfig.Keys[m.setting]
		if err := m.cfg.Unset(k); err != nil {
			m.status = err.Error()
			m.logger.Error("clear setting", "key", k, "err", err)
			return m, nil
		}
		cmd := m.refresh()
		return m, cmd
	case key.Matches(msg, m.keys.Open):
		return m.openPicker()
	}
	return m, nil
}

// settingLabels are shown next to each key of globalconfig.Keys.
var settingLabels = map[globalconfig.Key]string{
	globalconfig.SelectedTable:         "Table",
	globalconfig.SelectedView:          "View",
	globalconfig.SelectedDoneField:     "Done Field",
	globalconfig.SelectedPriorityField: "Priority Field",
}

// options lists the choices for a setting. Views and fields are scoped
// to the selected table; field pickers only offer the allowed types.
func (m Model) options(k globalconfig.Key) ([]list.Item, string) {
	table := m.app.Selection().Table
	var items []list.Item
	fieldItems := func(types ...schema.FieldType) {
		for _, f := range table.FieldsOfType(types...) {
			items = append(items, optionItem{id: f.ID, name: f.Name})
		}
	}

	switch k {
	case globalconfig.SelectedTable:
		for _, t := range m.schema.Tables {
			items = append(items, optionItem{id: t.ID, name: t.Name})
		}
		return items, ""
	}

	if table == nil {
		return nil, "Pick a table first"
	}
	switch k {
	case globalconfig.SelectedView:
		for _, v := range table.Views {
			items = append(items, optionItem{id: v.ID, name: v.Name})
		}
		if len(items) == 0 {
			return nil, "Table " + table.Name + " has no views"
		}
	case globalconfig.SelectedDoneField:
		fieldItems(schema.Checkbox)
		if len(items) == 0 {
			return nil, "Table " + table.Name + " has no checkbox field"
		}
	case globalconfig.SelectedPriorityField:
		fieldItems(schema.SingleLineText)
		if len(items) == 0 {
			return nil, "Table " + table.Name + " has no single line text field"
		}
	}
	return items, ""
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	k := globalconfig.Keys[m.setting]
	items, reason := m.options(k)
	if reason != "" {
		m.status = reason
		return m, nil
	}
	cmd := m.picker.SetItems(items)
	m.picker.ResetFilter()
	m.picker.Select(0)
	current := m.cfg.Get(k)
	for i, it := range items {
		if it.(optionItem).id == current {
			m.picker.Select(i)
			break
		}
	}
	m.mode = modePicker
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeConfig
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		it, ok := m.picker.SelectedItem().(optionItem)
		m.mode = modeConfig
		if !ok {
			return m, nil
		}
		k := globalconfig.Keys[m.setting]
		if err := m.cfg.Set(k, it.id); err != nil {
			m.status = err.Error()
			m.logger.Error("save setting", "key", k, "err", err)
			return m, nil
		}
		m.logger.Debug("setting changed", "key", k, "value", it.id)
		cmd := m.refresh()
		return m, cmd
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Open):
		m.mode = modeList
		m.detail = nil
	}
	return m, nil
}
