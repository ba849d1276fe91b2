// Package tui is the interactive view of the to-do list: the settings
// panel with its pickers, the live task list, the add form and the
// record detail.
package tui

import (
	"errors"
	"io"
	"time"

	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// ConfigStore is the settings store the pickers write to.
type ConfigStore interface {
	todo.ConfigStore
	Set(key globalconfig.Key, value string) error
	Unset(key globalconfig.Key) error
	Watch() (<-chan globalconfig.Key, func())
	Reload() error
}

// RecordSource adds full record lookup, used by the detail view.
type RecordSource interface {
	todo.RecordSource
	Record(tableID, recordID string) (model.Record, bool)
}

type Deps struct {
	Config ConfigStore
	Schema *schema.Schema
	Source RecordSource
	Logger *log.Logger
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfig
	modePicker
	modeDetail
)

// expansion receives the record the App asked to expand.
type expansion struct {
	table *schema.Table
	rec   model.Record
	set   bool
}

type Model struct {
	app    *todo.App
	cfg    ConfigStore
	schema *schema.Schema
	src    RecordSource
	logger *log.Logger
	keys   keyMap

	watch     <-chan globalconfig.Key
	listening <-chan []model.Record
	expanded  *expansion

	mode     mode
	tasks    list.Model
	picker   list.Model
	setting  int // index into globalconfig.Keys
	name     textinput.Model
	priority textinput.Model
	focus    int // 0 name, 1 priority
	detail   []string
	status   string

	width, height int
}

// recordsMsg carries a sequence pushed on from. closed is set when the
// subscription ended.
type recordsMsg struct {
	from    <-chan []model.Record
	records []model.Record
	closed  bool
}

type configMsg struct{ closed bool }

// reloadMsg asks the model to re-read the settings file, picking up
// edits made by other processes.
type reloadMsg struct{}

const reloadInterval = 2 * time.Second

func tickReload() tea.Cmd {
	return tea.Tick(reloadInterval, func(time.Time) tea.Msg { return reloadMsg{} })
}

func waitRecords(ch <-chan []model.Record) tea.Cmd {
	return func() tea.Msg {
		recs, ok := <-ch
		return recordsMsg{from: ch, records: recs, closed: !ok}
	}
}

func waitConfig(ch <-chan globalconfig.Key) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-ch
		return configMsg{closed: !ok}
	}
}

// New resolves the settings and opens the live query. Call Close when
// done with the model.
func New(d Deps) (Model, error) {
	if d.Config == nil || d.Schema == nil || d.Source == nil {
		return Model{}, errors.New("tui: config, schema and source are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	exp := &expansion{}
	m := Model{
		cfg:      d.Config,
		schema:   d.Schema,
		src:      d.Source,
		logger:   logger,
		keys:     defaultKeys(),
		expanded: exp,
		width:    80,
		height:   24,
	}
	m.app = todo.New(d.Config, d.Schema, d.Source, todo.ExpanderFunc(func(t *schema.Table, rec model.Record) {
		exp.table, exp.rec, exp.set = t, rec, true
	}), logger)

	m.tasks = newList(nil, taskDelegate{}, "task", "tasks")
	m.picker = newList(nil, optionDelegate{}, "option", "options")

	m.name = textinput.New()
	m.name.Prompt = "Name: "
	m.name.Placeholder = "New task..."
	m.name.CharLimit = 200
	m.priority = textinput.New()
	m.priority.Prompt = "Priority: "
	m.priority.Placeholder = "e.g. High"
	m.priority.CharLimit = 50

	if err := m.app.Refresh(); err != nil {
		return Model{}, err
	}
	m.listening = m.app.Updates()
	m.syncTasks()
	m.resize()
	return m, nil
}

// WithWatch makes the model follow settings changed elsewhere.
func (m Model) WithWatch(ch <-chan globalconfig.Key) Model {
	m.watch = ch
	return m
}

func (m Model) Close() { m.app.Close() }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickReload()}
	if m.listening != nil {
		cmds = append(cmds, waitRecords(m.listening))
	}
	if m.watch != nil {
		cmds = append(cmds, waitConfig(m.watch))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case recordsMsg:
		if msg.closed || !m.app.Apply(msg.from, msg.records) {
			return m, nil
		}
		cmd := m.syncTasks()
		return m, tea.Batch(cmd, waitRecords(msg.from))

	case configMsg:
		if msg.closed {
			return m, nil
		}
		cmd := m.refresh()
		return m, tea.Batch(cmd, waitConfig(m.watch))

	case reloadMsg:
		if err := m.cfg.Reload(); err != nil {
			m.status = err.Error()
			m.logger.Error("reload settings", "err", err)
		}
		cmd := m.refresh()
		return m, tea.Batch(cmd, tickReload())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfig:
			return m.updateConfig(msg)
		case modePicker:
			return m.updatePicker(msg)
		case modeDetail:
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	if m.mode == modePicker {
		m.picker, cmd = m.picker.Update(msg)
	} else {
		m.tasks, cmd = m.tasks.Update(msg)
	}
	return m, cmd
}

// refresh re-resolves the settings after a change and follows the new
// query, if any.
func (m *Model) refresh() tea.Cmd {
	if err := m.app.Refresh(); err != nil {
		m.status = err.Error()
		m.logger.Error("refresh view", "err", err)
	}
	if f := m.app.Form(); f != nil {
		if m.name.Value() != f.Name() {
			m.name.SetValue(f.Name())
		}
		if m.priority.Value() != f.Priority() {
			m.priority.SetValue(f.Priority())
		}
	} else {
		m.name.SetValue("")
		m.priority.SetValue("")
		if m.mode == modeForm {
			m.leaveForm()
		}
	}

	var cmd tea.Cmd
	if ch := m.app.Updates(); ch != m.listening {
		m.listening = ch
		if ch != nil {
			cmd = waitRecords(ch)
		}
	}
	return tea.Batch(m.syncTasks(), cmd)
}

func (m *Model) syncTasks() tea.Cmd {
	rows := m.app.Rows()
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = taskItem{row: r, index: i}
	}
	return m.tasks.SetItems(items)
}

func (m *Model) resize() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	h := m.height - 16
	if h < 3 {
		h = 3
	}
	m.tasks.SetSize(w, h)
	m.picker.SetSize(w, h)
	m.name.Width = w - len(m.name.Prompt) - 2
	m.priority.Width = w - len(m.priority.Prompt) - 2
}

func (m Model) selectedRow() (todo.Row, int, bool) {
	it, ok := m.tasks.SelectedItem().(taskItem)
	if !ok {
		return todo.Row{}, 0, false
	}
	return it.row, it.index, true
}
