// Package project defines project-level errors
package project

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned for documents that lack nodes, edges or metadata
	ErrInvalidFormat = errors.New("invalid project file format")

	// Record validation errors
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrNilDocument      = errors.New("project document cannot be nil")
	ErrProjectNotFound  = errors.New("project not found")

	// Filter validation errors
	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrInvalidOffset    = errors.New("offset cannot be negative")
	ErrInvalidTimeRange = errors.New("invalid time range: since is after before")

	// Persistence errors
	ErrSaveFailed   = errors.New("failed to save project")
	ErrLoadFailed   = errors.New("failed to load project")
	ErrDeleteFailed = errors.New("failed to delete project")
)

// FormatError describes why a project document was rejected. It unwraps to
// ErrInvalidFormat.
type FormatError struct {
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrInvalidFormat, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: missing %s", ErrInvalidFormat, e.Field)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrInvalidFormat, e.Err)
	}
	return ErrInvalidFormat.Error()
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidFormat}
	}
	return []error{ErrInvalidFormat, e.Err}
}
