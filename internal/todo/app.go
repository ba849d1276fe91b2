package todo

import (
	"io"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/charmbracelet/log"
)

// App composes settings, schema and record source into the to-do view.
// It is not safe for concurrent use; drive it from one goroutine (the UI
// loop) and feed it pushed sequences through Apply.
type App struct {
	cfg      ConfigStore
	schema   SchemaResolver
	src      RecordSource
	expander Expander
	logger   *log.Logger

	sel     Selection
	query   model.Query
	sub     model.Subscription
	records []model.Record
	form    *Form
}

func New(cfg ConfigStore, res SchemaResolver, src RecordSource, expander Expander, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if expander == nil {
		expander = ExpanderFunc(func(*schema.Table, model.Record) {})
	}
	return &App{cfg: cfg, schema: res, src: src, expander: expander, logger: logger}
}

// Refresh re-resolves the settings. The live query is replaced only when
// it changed; an unresolved selection closes it and issues none.
func (a *App) Refresh() error {
	a.sel = Resolve(a.cfg, a.schema)

	if a.sel.Ready() {
		if a.form == nil {
			a.form = &Form{app: a}
		}
	} else {
		a.form = nil
	}

	q, ok := a.sel.Query()
	if !ok {
		a.unsubscribe()
		return nil
	}
	if a.sub != nil && a.query.Equal(q) {
		return nil
	}
	a.unsubscribe()
	sub, err := a.src.Subscribe(q)
	if err != nil {
		return err
	}
	a.sub = sub
	a.query = q
	a.records = sub.Records()
	a.logger.Debug("query opened", "table", q.TableID, "view", q.ViewID, "records", len(a.records))
	return nil
}

func (a *App) unsubscribe() {
	if a.sub != nil {
		a.sub.Close()
		a.logger.Debug("query closed", "table", a.query.TableID, "view", a.query.ViewID)
	}
	a.sub = nil
	a.query = model.Query{}
	a.records = nil
}

// Close ends the live query.
func (a *App) Close() { a.unsubscribe() }

func (a *App) Selection() Selection { return a.sel }

// Updates is the current query's push channel, nil without a query.
func (a *App) Updates() <-chan []model.Record {
	if a.sub == nil {
		return nil
	}
	return a.sub.Updates()
}

// Apply installs a sequence pushed on from. Sequences from a query that
// has since been replaced are dropped.
func (a *App) Apply(from <-chan []model.Record, records []model.Record) bool {
	if a.sub == nil || from != a.sub.Updates() {
		return false
	}
	a.records = records
	return true
}

// Form is nil unless the selection is ready.
func (a *App) Form() *Form { return a.form }
