package template

import (
	"errors"
	"fmt"
)

// Sentinel errors for template operations
var (
	ErrMissingVariableValue = errors.New("missing variable value")
	ErrInvalidDefault       = errors.New("invalid variable default")
)

// MissingVariableError names the required variable that has no value.
type MissingVariableError struct {
	Name  string
	Index int
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("variable $%d (%s): %v", e.Index, e.Name, ErrMissingVariableValue)
}

func (e *MissingVariableError) Unwrap() error {
	return ErrMissingVariableValue
}
