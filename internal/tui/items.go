package tui

import (
	"fmt"
	"io"

	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// taskItem adapts a row to bubbles/list. index is the row's position in
// the App, which filtering does not change.
type taskItem struct {
	row   todo.Row
	index int
}

func (i taskItem) FilterValue() string { return i.row.Label }

// Custom delegate to control how rows render (single line)
type taskDelegate struct{}

func (d taskDelegate) Height() int                               { return 1 }
func (d taskDelegate) Spacing() int                              { return 0 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	t := ui.Current()

	box := t.Muted.Render(t.BoxUnchecked)
	text := it.row.Text()
	if it.row.Done {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	if !it.row.Toggle.Allowed {
		checked := t.BoxUnchecked
		if it.row.Done {
			checked = t.BoxChecked
		}
		box = t.Disabled.Render(checked)
	}
	line := box + " " + text
	if !it.row.Remove.Allowed {
		line += " " + t.Disabled.Render("(locked)")
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(t.Cursor)
	}
	fmt.Fprint(w, prefix+line)
}

// optionItem is one choice in a picker.
type optionItem struct {
	id   string
	name string
}

func (i optionItem) FilterValue() string { return i.name }

type optionDelegate struct{}

func (d optionDelegate) Height() int                               { return 1 }
func (d optionDelegate) Spacing() int                              { return 0 }
func (d optionDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d optionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(optionItem)
	if !ok {
		return
	}
	t := ui.Current()
	prefix := "  "
	name := it.name
	if index == m.Index() {
		prefix = t.Selected.Render(t.Cursor)
		name = t.Accent.Render(name)
	}
	fmt.Fprint(w, prefix+name)
}

func newList(items []list.Item, delegate list.ItemDelegate, singular, plural string) list.Model {
	t := ui.Current()
	l := list.New(items, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = t.Muted
	l.Styles.StatusBar = t.Muted
	l.Styles.NoItems = t.Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName(singular, plural)
	return l
}
