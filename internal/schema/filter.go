package schema

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Match evaluates the view's filter against a full record of t.
func (v *View) Match(t *Table, rec model.Record) (bool, error) {
	if v == nil || v.Filter == nil {
		return true, nil
	}
	val, diags := v.Filter.Value(evalContext(t, rec))
	if diags.HasErrors() {
		return false, fmt.Errorf("view %s: %w", v.ID, diags)
	}
	if val.IsNull() {
		return true, nil
	}
	b, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("view %s: filter must be a bool, got %s", v.ID, val.Type().FriendlyName())
	}
	if !b.IsKnown() || b.IsNull() {
		return false, nil
	}
	return b.True(), nil
}

func evalContext(t *Table, rec model.Record) *hcl.EvalContext {
	attrs := make(map[string]cty.Value, len(t.Fields))
	for _, f := range t.Fields {
		attrs[f.Name] = ctyValue(f, rec.CellValue(f.ID))
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"fields": cty.ObjectVal(attrs),
			"id":     cty.StringVal(rec.ID),
		},
	}
}

func ctyValue(f *Field, v any) cty.Value {
	switch f.Type {
	case Checkbox:
		b, _ := v.(bool)
		return cty.BoolVal(b)
	case Number:
		if n, ok := v.(float64); ok {
			return cty.NumberFloatVal(n)
		}
		return cty.NullVal(cty.Number)
	default:
		s, _ := v.(string)
		return cty.StringVal(s)
	}
}
