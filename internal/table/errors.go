package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrColumnNotFound matches any *ColumnNotFoundError.
	ErrColumnNotFound = errors.New("column not found")
	// ErrType matches any *TypeError.
	ErrType = errors.New("type error")
)

// ColumnNotFoundError reports a reference to a column the table does not have.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column %q not found (table has no columns)", e.Column)
	}
	return fmt.Sprintf("column %q not found; available: %s", e.Column, strings.Join(e.Available, ", "))
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }

// TypeError reports a value that a numeric-only operation cannot handle.
type TypeError struct {
	Column string
	Row    int // 0-based; -1 when the whole column is at fault
	Value  string
	Reason string
}

func (e *TypeError) Error() string {
	parts := []string{"type error"}
	if e.Column != "" {
		parts[0] = fmt.Sprintf("type error in column %q", e.Column)
	}
	if e.Row >= 0 {
		parts = append(parts, fmt.Sprintf("at row %d", e.Row))
	}
	if e.Value != "" {
		parts = append(parts, fmt.Sprintf("value=%q", e.Value))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, " - ")
}

func (e *TypeError) Is(target error) bool { return target == ErrType }
