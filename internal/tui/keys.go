package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Toggle    key.Binding
	Delete    key.Binding
	Open      key.Binding
	Add       key.Binding
	Configure key.Binding
	Clear     key.Binding
	Up        key.Binding
	Down      key.Binding
	Next      key.Binding
	Submit    key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Configure: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "configure")),
		Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Next:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next input")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Delete, k.Open, k.Add, k.Configure, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Back}
}

func (k keyMap) configHelp() []key.Binding {
	pick := k.Open
	pick.SetHelp("enter", "pick")
	return []key.Binding{k.Up, k.Down, pick, k.Clear, k.Back}
}

func (k keyMap) pickerHelp() []key.Binding {
	pick := k.Submit
	pick.SetHelp("enter", "select")
	return []key.Binding{k.Up, k.Down, pick, k.Back}
}

func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Back}
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
