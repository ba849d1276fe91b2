package base

import (
	"errors"
	"fmt"
)

var (
	ErrTableNotFound  = errors.New("table not found")
	ErrViewNotFound   = errors.New("view not found")
	ErrFieldNotFound  = errors.New("field not found")
	ErrRecordNotFound = errors.New("record not found")
	ErrPermission     = errors.New("permission denied")
	ErrClosed         = errors.New("base is closed")
)

// PermissionError is returned when a mutation reaches the base even
// though its permission check says no.
type PermissionError struct {
	Op     string
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrPermission, e.Reason)
}

func (e *PermissionError) Unwrap() error { return ErrPermission }
