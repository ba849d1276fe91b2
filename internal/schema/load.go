package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

//go:embed default.hcl
var defaultSchema []byte

type fileSpec struct {
	Tables []tableSpec `hcl:"table,block"`
}

type tableSpec struct {
	ID           string      `hcl:"id,label"`
	Name         string      `hcl:"name"`
	PrimaryField string      `hcl:"primary_field,optional"`
	Fields       []fieldSpec `hcl:"field,block"`
	Views        []viewSpec  `hcl:"view,block"`
}

type fieldSpec struct {
	ID       string `hcl:"id,label"`
	Name     string `hcl:"name"`
	Type     string `hcl:"type"`
	Editable *bool  `hcl:"editable,optional"`
}

type viewSpec struct {
	ID     string         `hcl:"id,label"`
	Name   string         `hcl:"name"`
	Filter hcl.Expression `hcl:"filter,optional"`
	Sorts  []sortSpec     `hcl:"sort,block"`
}

type sortSpec struct {
	Field     string `hcl:"field"`
	Direction string `hcl:"direction,optional"`
}

// Load reads the schema file at path. A missing file (or an empty path)
// yields the built-in schema.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default()
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(src, path)
}

// Default returns the built-in single-table schema.
func Default() (*Schema, error) {
	return Parse(defaultSchema, "default.hcl")
}

// Parse decodes and validates an HCL schema document.
func Parse(src []byte, filename string) (*Schema, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse schema %s: %w", filename, diags)
	}

	var spec fileSpec
	if diags := gohcl.DecodeBody(file.Body, nil, &spec); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode schema %s: %w", filename, diags)
	}

	s, diags := build(spec)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid schema %s: %w", filename, diags)
	}
	return s, nil
}

func build(spec fileSpec) (*Schema, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	s := &Schema{byID: make(map[string]*Table)}

	for _, ts := range spec.Tables {
		if _, dup := s.byID[ts.ID]; dup {
			diags = append(diags, errorDiag("Duplicate table", fmt.Sprintf("Table %q is declared more than once.", ts.ID), nil))
			continue
		}
		t, tdiags := buildTable(ts)
		diags = append(diags, tdiags...)
		s.Tables = append(s.Tables, t)
		s.byID[t.ID] = t
	}
	if len(s.Tables) == 0 {
		diags = append(diags, errorDiag("No tables", "A schema needs at least one \"table\" block.", nil))
	}
	return s, diags
}

func buildTable(ts tableSpec) (*Table, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	t := &Table{
		ID:     ts.ID,
		Name:   ts.Name,
		fields: make(map[string]*Field),
		views:  make(map[string]*View),
	}

	names := make(map[string]bool)
	for _, fs := range ts.Fields {
		ft := FieldType(fs.Type)
		switch {
		case t.fields[fs.ID] != nil:
			diags = append(diags, errorDiag("Duplicate field", fmt.Sprintf("Field %q is declared more than once in table %q.", fs.ID, ts.ID), nil))
			continue
		case names[strings.ToLower(fs.Name)]:
			diags = append(diags, errorDiag("Duplicate field name", fmt.Sprintf("Field name %q is used more than once in table %q.", fs.Name, ts.ID), nil))
			continue
		case !ft.Valid():
			diags = append(diags, errorDiag("Unknown field type", fmt.Sprintf("Field %q has unknown type %q.", fs.ID, fs.Type), nil))
			continue
		}
		f := &Field{ID: fs.ID, Name: fs.Name, Type: ft, Editable: true}
		if fs.Editable != nil {
			f.Editable = *fs.Editable
		}
		t.Fields = append(t.Fields, f)
		t.fields[f.ID] = f
		names[strings.ToLower(f.Name)] = true
	}

	t.PrimaryFieldID = ts.PrimaryField
	if t.PrimaryFieldID == "" && len(t.Fields) > 0 {
		t.PrimaryFieldID = t.Fields[0].ID
	}
	if t.PrimaryField() == nil {
		diags = append(diags, errorDiag("Missing primary field", fmt.Sprintf("Table %q has no primary field %q.", ts.ID, t.PrimaryFieldID), nil))
	}

	for _, vs := range ts.Views {
		if t.views[vs.ID] != nil {
			diags = append(diags, errorDiag("Duplicate view", fmt.Sprintf("View %q is declared more than once in table %q.", vs.ID, ts.ID), nil))
			continue
		}
		v := &View{ID: vs.ID, Name: vs.Name, Filter: vs.Filter}
		diags = append(diags, checkFilter(t, vs.Filter)...)
		for _, ss := range vs.Sorts {
			dir := model.Direction(strings.ToLower(ss.Direction))
			if dir == "" {
				dir = model.Ascending
			}
			if dir != model.Ascending && dir != model.Descending {
				diags = append(diags, errorDiag("Invalid sort direction", fmt.Sprintf("View %q sorts by %q with direction %q; use \"asc\" or \"desc\".", vs.ID, ss.Field, ss.Direction), nil))
				continue
			}
			if t.fields[ss.Field] == nil {
				diags = append(diags, errorDiag("Unknown sort field", fmt.Sprintf("View %q sorts by unknown field %q.", vs.ID, ss.Field), nil))
				continue
			}
			v.Sorts = append(v.Sorts, model.Sort{FieldID: ss.Field, Direction: dir})
		}
		t.Views = append(t.Views, v)
		t.views[v.ID] = v
	}
	return t, diags
}

// checkFilter allows references to `id` and to `fields.<name>` /
// `fields["<name>"]` of existing fields only.
func checkFilter(t *Table, expr hcl.Expression) hcl.Diagnostics {
	if expr == nil {
		return nil
	}
	var diags hcl.Diagnostics
	for _, tr := range expr.Variables() {
		switch tr.RootName() {
		case "id":
			continue
		case "fields":
		default:
			diags = append(diags, errorDiag("Unknown variable", fmt.Sprintf("Filters can only use \"fields\" and \"id\", not %q.", tr.RootName()), tr.SourceRange().Ptr()))
			continue
		}
		if len(tr) < 2 {
			continue
		}
		var name string
		switch step := tr[1].(type) {
		case hcl.TraverseAttr:
			name = step.Name
		case hcl.TraverseIndex:
			if step.Key.Type() == cty.String && step.Key.IsKnown() && !step.Key.IsNull() {
				name = step.Key.AsString()
			}
		}
		if name != "" && fieldByName(t, name) == nil {
			diags = append(diags, errorDiag("Unknown field in filter", fmt.Sprintf("Table %q has no field named %q.", t.ID, name), tr.SourceRange().Ptr()))
		}
	}
	return diags
}

func fieldByName(t *Table, name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func errorDiag(summary, detail string, subject *hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject,
	}
}
