package stats

import (
	"errors"
	"fmt"
)

// ErrPrecondition matches any *PreconditionError.
var ErrPrecondition = errors.New("test precondition not met")

// PreconditionError reports a sample a statistical test cannot run on.
type PreconditionError struct {
	Test   string
	Column string
	N      int
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s on %q (n=%d): %s", e.Test, e.Column, e.N, e.Reason)
	}
	return fmt.Sprintf("%s (n=%d): %s", e.Test, e.N, e.Reason)
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }
