package task

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrEmptyTitle = errors.New("title must not be empty")
)

// FormatError reports user input that could not be parsed, such as a due
// date that is not YYYY-MM-DD or a task ID that is not a positive integer.
type FormatError struct {
	Field string
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Input)
}

func (e *FormatError) Unwrap() error { return e.Err }
