// Package snippet defines the snippet record and the codec between stored
// snippet files and their structured form.
package snippet

import (
	"fmt"
	"strings"
)

// SourceKind records where a snippet came from. It decides which entry wins
// when two snippets share a name.
type SourceKind int

// Known source kinds. The zero value is deliberately not a valid kind.
const (
	SourceDirectory SourceKind = iota + 1
	SourceUser
	SourceGist
)

func (k SourceKind) String() string {
	switch k {
	case SourceDirectory:
		return "directory"
	case SourceUser:
		return "user"
	case SourceGist:
		return "gist"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Valid reports whether k is one of the known source kinds.
func (k SourceKind) Valid() bool {
	return k == SourceDirectory || k == SourceUser || k == SourceGist
}

// ParseSourceKind converts a kind name back into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "directory", "dir":
		return SourceDirectory, nil
	case "user":
		return SourceUser, nil
	case "gist":
		return SourceGist, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSourceKind, s)
	}
}

// Snippet is a named template with placeholder variables and annotations.
type Snippet struct {
	Meta       *Meta
	Name       string
	Template   string
	OriginPath string
	Source     SourceKind
}

// FromSource decodes raw file content into a Snippet. A malformed header line
// does not fail the snippet: the error is returned alongside a usable record
// and wraps ErrParseAmbiguous.
func FromSource(name, raw, originPath string, kind SourceKind) (Snippet, error) {
	if err := ValidateName(name); err != nil {
		return Snippet{}, err
	}

	doc, err := Decode(raw)
	s := Snippet{
		Name:       name,
		Template:   doc.Template,
		Meta:       doc.Meta,
		Source:     kind,
		OriginPath: originPath,
	}

	return s, err
}

// Encode returns the stored file text for the snippet.
func (s Snippet) Encode() string {
	return Encode(s.Meta, s.Template)
}

// Lang returns the language hint from the meta header, if any.
func (s Snippet) Lang() (string, bool) {
	if s.Meta == nil {
		return "", false
	}
	return s.Meta.Get("lang")
}

// Clone returns a copy that shares no mutable state with s.
func (s Snippet) Clone() Snippet {
	c := s
	c.Meta = s.Meta.Clone()
	return c
}

// ValidateName checks that name can be used both as a store key and as a
// file name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
