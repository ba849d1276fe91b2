package schema

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// CompareValues orders two cell values of a field of type t. Empty
// cells come first; text compares case-insensitively.
func CompareValues(t FieldType, a, b any) int {
	ae, be := isEmpty(a), isEmpty(b)
	switch {
	case ae && be:
		return 0
	case ae:
		return -1
	case be:
		return 1
	}
	switch t {
	case Checkbox:
		ab, _ := a.(bool)
		bb, _ := b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case Number:
		an, _ := a.(float64)
		bn, _ := b.(float64)
		return cmp.Compare(an, bn)
	default:
		as, _ := a.(string)
		bs, _ := b.(string)
		if c := strings.Compare(strings.ToLower(as), strings.ToLower(bs)); c != 0 {
			return c
		}
		return strings.Compare(as, bs)
	}
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	}
	return false
}

// SortRecords stably sorts recs of table t by sorts in order. Sorts on
// unknown fields are ignored, so ties keep their incoming order.
func SortRecords(t *Table, recs []model.Record, sorts []model.Sort) {
	type key struct {
		field *Field
		desc  bool
	}
	keys := make([]key, 0, len(sorts))
	for _, s := range sorts {
		if f := t.FieldByIDIfExists(s.FieldID); f != nil {
			keys = append(keys, key{field: f, desc: s.Direction == model.Descending})
		}
	}
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(recs, func(a, b model.Record) int {
		for _, k := range keys {
			c := CompareValues(k.field.Type, a.CellValue(k.field.ID), b.CellValue(k.field.ID))
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
