package store

import (
	"errors"
	"fmt"

	"github.com/AntoineGS/tidysnips/internal/snippet"
)

// Sentinel errors for store operations
var (
	ErrDuplicateName = errors.New("duplicate snippet name")
	ErrNotFound      = errors.New("snippet not found")
)

// DuplicateNameError is returned when precedence keeps the existing snippet.
type DuplicateNameError struct {
	Name     string
	Existing snippet.SourceKind
	Incoming snippet.SourceKind
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s: %v (%s snippet kept over %s)", e.Name, ErrDuplicateName, e.Existing, e.Incoming)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// InsertError records a snippet that could not be inserted at all.
type InsertError struct {
	Err  error
	Name string
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert %q: %v", e.Name, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// NotFoundError names a snippet that is not in the store.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
