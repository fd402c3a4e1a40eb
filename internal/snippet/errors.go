package snippet

import (
	"errors"
	"fmt"
)

// Sentinel errors for snippet records
var (
	ErrParseAmbiguous    = errors.New("ambiguous meta header")
	ErrUnknownSourceKind = errors.New("unknown source kind")
	ErrEmptyName         = errors.New("snippet name is empty")
	ErrInvalidName       = errors.New("invalid snippet name")
	ErrInvalidMetaKey    = errors.New("meta key must be letters and digits only")
	ErrInvalidMetaValue  = errors.New("meta value must fit on one line")
)

// ParseError records a header line that looked like meta but did not parse.
type ParseError struct {
	Err  error
	Text string
	Line int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
