// Package schema describes the tables, fields and views of a record base
// and resolves identifiers against them. Lookups never fail: an unknown
// or deleted identifier resolves to nil.
package schema

import (
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/hashicorp/hcl/v2"
)

type Schema struct {
	Tables []*Table
	byID   map[string]*Table
}

// TableByIDIfExists returns nil for unknown ids and for a nil schema.
func (s *Schema) TableByIDIfExists(id string) *Table {
	if s == nil || id == "" {
		return nil
	}
	return s.byID[id]
}

// FindTable looks a table up by id, then by case-insensitive name.
func (s *Schema) FindTable(ref string) *Table {
	if t := s.TableByIDIfExists(ref); t != nil {
		return t
	}
	if s == nil {
		return nil
	}
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, ref) {
			return t
		}
	}
	return nil
}

type Table struct {
	ID             string
	Name           string
	PrimaryFieldID string
	Fields         []*Field
	Views          []*View

	fields map[string]*Field
	views  map[string]*View
}

func (t *Table) PrimaryField() *Field {
	return t.FieldByIDIfExists(t.PrimaryFieldID)
}

func (t *Table) FieldByIDIfExists(id string) *Field {
	if t == nil || id == "" {
		return nil
	}
	return t.fields[id]
}

func (t *Table) ViewByIDIfExists(id string) *View {
	if t == nil || id == "" {
		return nil
	}
	return t.views[id]
}

func (t *Table) FindField(ref string) *Field {
	if f := t.FieldByIDIfExists(ref); f != nil {
		return f
	}
	if t == nil {
		return nil
	}
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, ref) {
			return f
		}
	}
	return nil
}

func (t *Table) FindView(ref string) *View {
	if v := t.ViewByIDIfExists(ref); v != nil {
		return v
	}
	if t == nil {
		return nil
	}
	for _, v := range t.Views {
		if strings.EqualFold(v.Name, ref) {
			return v
		}
	}
	return nil
}

// FieldsOfType lists the table's fields a picker restricted to types offers.
func (t *Table) FieldsOfType(types ...FieldType) []*Field {
	if t == nil {
		return nil
	}
	var out []*Field
	for _, f := range t.Fields {
		if f.IsOneOf(types...) {
			out = append(out, f)
		}
	}
	return out
}

// View is a filtered, sorted projection of a table.
type View struct {
	ID     string
	Name   string
	Filter hcl.Expression // nil or a null-valued expression means "all records"
	Sorts  []model.Sort
}
