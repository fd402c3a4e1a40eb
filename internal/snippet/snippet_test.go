package snippet

import (
	"errors"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
	}{
		{"for-loop", nil},
		{"react component.jsx", nil},
		{"", ErrEmptyName},
		{"   ", ErrEmptyName},
		{"a/b", ErrInvalidName},
		{`a\b`, ErrInvalidName},
		{"..", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestFromSource(t *testing.T) {
	s, err := FromSource("log", "##lang: js\nconsole.log({{$1:value}});", "/snips/log", SourceDirectory)
	if err != nil {
		t.Fatalf("FromSource() error: %v", err)
	}
	if s.Template != "console.log({{$1:value}});" {
		t.Errorf("Template = %q", s.Template)
	}
	if lang, ok := s.Lang(); !ok || lang != "js" {
		t.Errorf("Lang() = %q, %v", lang, ok)
	}
	if s.Encode() != "##lang: js\nconsole.log({{$1:value}});" {
		t.Errorf("Encode() = %q", s.Encode())
	}
}

func TestFromSource_AmbiguousHeaderStillUsable(t *testing.T) {
	s, err := FromSource("x", "##ok: 1\n## broken\nbody", "", SourceUser)
	if !errors.Is(err, ErrParseAmbiguous) {
		t.Fatalf("error = %v, want ErrParseAmbiguous", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 2 {
		t.Errorf("ParseError line = %+v, want 2", pe)
	}
	if s.Name != "x" || s.Template != "## broken\nbody" {
		t.Errorf("snippet = %+v", s)
	}
}

func TestFromSource_InvalidName(t *testing.T) {
	if _, err := FromSource("a/b", "body", "", SourceUser); !errors.Is(err, ErrInvalidName) {
		t.Errorf("error = %v, want ErrInvalidName", err)
	}
}

func TestParseSourceKind(t *testing.T) {
	for _, k := range []SourceKind{SourceDirectory, SourceUser, SourceGist} {
		got, err := ParseSourceKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseSourceKind(%q) = %v, %v", k.String(), got, err)
		}
	}

	if _, err := ParseSourceKind("ftp"); !errors.Is(err, ErrUnknownSourceKind) {
		t.Errorf("ParseSourceKind(ftp) error = %v", err)
	}
	if SourceKind(0).Valid() {
		t.Error("zero SourceKind should not be valid")
	}
}

func TestClone_Independent(t *testing.T) {
	s := Snippet{Name: "a", Meta: MetaFromPairs("lang", "go")}
	c := s.Clone()
	c.Meta.Set("lang", "rust")
	if v, _ := s.Meta.Get("lang"); v != "go" {
		t.Errorf("original meta mutated: %q", v)
	}
}
