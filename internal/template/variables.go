// Package template finds, previews and resolves snippet placeholders, and
// renders variable defaults declared in snippet meta headers.
package template

import (
	"regexp"
	"strconv"
	"strings"
)

// Sentinel markers with special meaning at insertion time.
const (
	CursorMark   = "{{!cursor}}"
	SelectedMark = "{{!selected}}"
)

var placeholderPattern = regexp.MustCompile(`\{\{\$([1-9][0-9]*)(\?)?:([A-Za-z0-9]+)\}\}`)

// VariableSpec describes one placeholder occurrence. Specs that share an
// Index are linked and always resolve to the same value.
type VariableSpec struct {
	Name     string
	Index    int
	Optional bool
}

// String formats the spec as "$1:name", with "?" for optional variables.
func (v VariableSpec) String() string {
	opt := ""
	if v.Optional {
		opt = "?"
	}
	return "$" + strconv.Itoa(v.Index) + opt + ":" + v.Name
}

// ExtractVariables returns one spec per placeholder occurrence, left to right.
// Linked duplicates are kept; use UniqueVariables to collapse them.
func ExtractVariables(tpl string) []VariableSpec {
	matches := placeholderPattern.FindAllStringSubmatch(tpl, -1)
	specs := make([]VariableSpec, 0, len(matches))
	for _, m := range matches {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			// Out of int range; not a usable index.
			continue
		}
		specs = append(specs, VariableSpec{
			Index:    idx,
			Optional: m[2] == "?",
			Name:     m[3],
		})
	}
	return specs
}

// UniqueVariables collapses linked occurrences into one field per index, in
// order of first appearance. The first occurrence names the field; the field
// is optional only when every occurrence is optional.
func UniqueVariables(specs []VariableSpec) []VariableSpec {
	pos := make(map[int]int, len(specs))
	var out []VariableSpec
	for _, s := range specs {
		if i, ok := pos[s.Index]; ok {
			out[i].Optional = out[i].Optional && s.Optional
			continue
		}
		pos[s.Index] = len(out)
		out = append(out, s)
	}
	return out
}

// Substitute replaces every placeholder with the value supplied for its
// index. Optional placeholders without a value become empty. In strict mode a
// required placeholder with a missing or empty value fails with a
// *MissingVariableError and nothing is substituted.
func Substitute(tpl string, values map[int]string, strict bool) (string, error) {
	if strict {
		for _, s := range UniqueVariables(ExtractVariables(tpl)) {
			if !s.Optional && values[s.Index] == "" {
				return "", &MissingVariableError{Index: s.Index, Name: s.Name}
			}
		}
	}

	return replacePlaceholders(tpl, func(s VariableSpec) string {
		return values[s.Index]
	}), nil
}

// Preview renders tpl for display while values are still being collected.
// Unfilled placeholders show their label in angle brackets and the cursor
// marker is dropped.
func Preview(tpl string, values map[int]string) string {
	out := replacePlaceholders(tpl, func(s VariableSpec) string {
		if v := values[s.Index]; v != "" {
			return v
		}
		return "<" + s.Name + ">"
	})
	return strings.ReplaceAll(out, CursorMark, "")
}

// HasUnresolved reports whether any required spec has an empty value.
func HasUnresolved(values map[int]string, specs []VariableSpec) bool {
	for _, s := range specs {
		if !s.Optional && values[s.Index] == "" {
			return true
		}
	}
	return false
}

func replacePlaceholders(tpl string, value func(VariableSpec) string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		m := placeholderPattern.FindStringSubmatch(match)
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return match
		}
		return value(VariableSpec{Index: idx, Optional: m[2] == "?", Name: m[3]})
	})
}
