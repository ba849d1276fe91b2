package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidValue is returned when a cell value does not fit its field.
var ErrInvalidValue = errors.New("invalid cell value")

type FieldType string

const (
	SingleLineText FieldType = "singleLineText"
	MultilineText  FieldType = "multilineText"
	Checkbox       FieldType = "checkbox"
	Number         FieldType = "number"
)

func (t FieldType) Valid() bool {
	switch t {
	case SingleLineText, MultilineText, Checkbox, Number:
		return true
	}
	return false
}

// Validate checks the Go type of a cell value. nil (empty) always fits.
func (t FieldType) Validate(v any) error {
	if v == nil {
		return nil
	}
	ok := false
	switch t {
	case SingleLineText, MultilineText:
		_, ok = v.(string)
	case Checkbox:
		_, ok = v.(bool)
	case Number:
		_, ok = v.(float64)
	}
	if !ok {
		return fmt.Errorf("%w: %T for %s field", ErrInvalidValue, v, t)
	}
	return nil
}

// ParseValue converts user input into a cell value of type t.
// Empty input yields an empty cell, except for text fields where it
// stays an empty string.
func (t FieldType) ParseValue(s string) (any, error) {
	switch t {
	case SingleLineText, MultilineText:
		return s, nil
	case Checkbox:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "false", "no", "0", "off":
			return false, nil
		case "true", "yes", "1", "on", "x":
			return true, nil
		}
		return nil, fmt.Errorf("%w: %q is not a checkbox value", ErrInvalidValue, s)
	case Number:
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: unknown field type %q", ErrInvalidValue, t)
}

// Field is a typed column of a table.
type Field struct {
	ID       string
	Name     string
	Type     FieldType
	Editable bool
}

// IsOneOf reports whether the field's type is in types.
// An empty list allows every type.
func (f *Field) IsOneOf(types ...FieldType) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if f.Type == t {
			return true
		}
	}
	return false
}
