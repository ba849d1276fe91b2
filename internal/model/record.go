package model

import (
	"fmt"
	"strconv"
	"time"
)

// Fields maps field IDs to cell values. A value is a string, bool,
// float64, or nil for an empty cell. In permission checks nil stands
// for "a value that is not known yet".
type Fields map[string]any

// Record is one row of a table, as handed out by the record base.
// Records are values: mutating one never changes the base.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"-"` // primary field, rendered as text
	Fields    Fields    `json:"fields"`
}

func (r Record) CellValue(fieldID string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[fieldID]
}

// Bool reads a checkbox cell. Empty cells are unchecked.
func (r Record) Bool(fieldID string) bool {
	b, _ := r.CellValue(fieldID).(bool)
	return b
}

// String renders a cell as text; empty cells render as "".
func (r Record) String(fieldID string) string {
	return FormatValue(r.CellValue(fieldID))
}

// Clone returns a copy whose Fields map can be changed independently.
func (r Record) Clone() Record {
	out := r
	out.Fields = make(Fields, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// FormatValue renders a cell value the way list rows show it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
