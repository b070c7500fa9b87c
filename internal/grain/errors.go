package grain

import (
	"errors"
	"fmt"
)

// ErrInconsistent means some column does not have one entry per grain.
var ErrInconsistent = errors.New("grain: inconsistent table")

// ColumnError names the column that broke the consistency check.
type ColumnError struct {
	Column string
	Len    int
	Want   int
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("grain: column %s has %d rows, want %d", e.Column, e.Len, e.Want)
}

func (e *ColumnError) Unwrap() error { return ErrInconsistent }
