package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive view and blocks until the user quits.
// Mutations still in flight are left to the caller to wait for.
func Run(d Deps, opts ...tea.ProgramOption) error {
	watch, stop := d.Config.Watch()
	defer stop()

	m, err := New(d)
	if err != nil {
		return err
	}
	defer m.Close()

	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	_, err = tea.NewProgram(m.WithWatch(watch), opts...).Run()
	return err
}
