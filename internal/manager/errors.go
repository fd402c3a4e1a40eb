package manager

import (
	"errors"
	"fmt"
)

// Sentinel errors for common manager operations
var (
	ErrSnippetExists = errors.New("snippet already exists")
	ErrNotEditable   = errors.New("snippet has no backing file")
	ErrNoCollection  = errors.New("no snippet collection gist found")
)

// SnippetError records an error and the operation and snippet that caused it.
type SnippetError struct {
	Err  error
	Op   string
	Name string
}

func (e *SnippetError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *SnippetError) Unwrap() error {
	return e.Err
}

// NewSnippetError creates a new SnippetError
func NewSnippetError(op, name string, err error) *SnippetError {
	return &SnippetError{
		Op:   op,
		Name: name,
		Err:  err,
	}
}
