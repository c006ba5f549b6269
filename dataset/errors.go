package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource indicates a source with no lines at all.
	ErrEmptySource = errors.New("source is empty")

	// ErrMissingColumn indicates a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrShortRow indicates a data row with fewer fields than the header.
	ErrShortRow = errors.New("row has fewer fields than header")

	// ErrInvalidYear indicates a missing or non-numeric year that was replaced by the default.
	ErrInvalidYear = errors.New("invalid release year")

	// ErrUnreadableTag indicates an audio file whose tag could not be read.
	ErrUnreadableTag = errors.New("unreadable tag")
)

// MissingColumnError names the first required column absent from a header.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn, e.Column)
}

// Is reports whether target is ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// RowError is a non-fatal failure tied to one source line.
type RowError struct {
	Line   int    // 1-based, the header is line 1
	Source string // file the row came from, empty for streams
	Err    error
}

func (e RowError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}
