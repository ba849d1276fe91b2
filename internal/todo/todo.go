// Package todo turns a configured table of the base into a prioritized
// to-do list: it resolves the settings, keeps one live query open, maps
// records to rows and owns the add-task draft. Every mutation is handed
// to the record source and never awaited.
package todo

import (
	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
)

// ConfigStore yields the persisted selection.
type ConfigStore interface {
	Get(key globalconfig.Key) string
}

type SchemaResolver interface {
	TableByIDIfExists(id string) *schema.Table
}

// RecordSource is the host side of the view: live queries, permission
// checks and fire-and-forget mutations.
type RecordSource interface {
	Subscribe(q model.Query) (model.Subscription, error)

	CheckCreatePermission(tableID string, fields model.Fields) model.PermissionCheck
	CheckUpdatePermission(tableID string, rec model.Record, fields model.Fields) model.PermissionCheck
	CheckDeletePermission(tableID string, rec model.Record) model.PermissionCheck

	CreateRecordAsync(tableID string, fields model.Fields) <-chan error
	UpdateRecordAsync(tableID string, rec model.Record, fields model.Fields) <-chan error
	DeleteRecordAsync(tableID string, rec model.Record) <-chan error
}

// Expander opens a record's detail view.
type Expander interface {
	Expand(table *schema.Table, rec model.Record)
}

// ExpanderFunc adapts a function to Expander.
type ExpanderFunc func(table *schema.Table, rec model.Record)

func (f ExpanderFunc) Expand(table *schema.Table, rec model.Record) { f(table, rec) }
