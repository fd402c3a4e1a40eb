package snippet

import (
	"fmt"
	"regexp"
	"strings"
)

const headerPrefix = "##"

var (
	headerLine = regexp.MustCompile(`^##([A-Za-z0-9]+):(.*)$`)
	metaKey    = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	lineBreak  = regexp.MustCompile(`\r?\n`)
)

// Document is the structured form of a stored snippet file.
type Document struct {
	Meta     *Meta
	Template string
}

// Decode splits raw file text into its meta header and template body.
//
// Leading lines of the form "##key: value" are consumed into Meta until the
// first line that is not a header. When that line still starts with "##" the
// header is considered ambiguous: decoding stops there as usual and a
// *ParseError is returned with the otherwise valid Document.
func Decode(raw string) (Document, error) {
	doc := Document{Meta: NewMeta()}
	if raw == "" {
		return doc, nil
	}

	lines := lineBreak.Split(raw, -1)

	var parseErr error
	consumed := 0
	for consumed < len(lines) {
		line := lines[consumed]
		m := headerLine.FindStringSubmatch(line)
		if m == nil {
			if strings.HasPrefix(line, headerPrefix) {
				parseErr = &ParseError{Line: consumed + 1, Text: line, Err: ErrParseAmbiguous}
			}
			break
		}
		doc.Meta.Set(m[1], strings.TrimSpace(m[2]))
		consumed++
	}

	doc.Template = strings.Join(lines[consumed:], "\n")

	return doc, parseErr
}

// ValidateMetaKey checks that key can be written as a header line and read
// back by Decode.
func ValidateMetaKey(key string) error {
	if !metaKey.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidMetaKey, key)
	}
	return nil
}

// ValidateMeta checks every entry of meta before it is encoded.
func ValidateMeta(meta *Meta) error {
	for _, k := range meta.Keys() {
		if err := ValidateMetaKey(k); err != nil {
			return err
		}
		if v, _ := meta.Get(k); strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("%w: %s", ErrInvalidMetaValue, k)
		}
	}
	return nil
}

// Encode renders meta and template back into stored file text. Meta entries
// are written in insertion order.
func Encode(meta *Meta, template string) string {
	lines := make([]string, 0, meta.Len()+1)
	for _, k := range meta.Keys() {
		v, _ := meta.Get(k)
		lines = append(lines, headerPrefix+k+": "+v)
	}

	if len(lines) == 0 {
		return template
	}

	return strings.Join(append(lines, template), "\n")
}
