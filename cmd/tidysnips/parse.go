package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AntoineGS/tidysnips/internal/insert"
	"github.com/AntoineGS/tidysnips/internal/snippet"
)

var (
	errBadAssignment = errors.New("expected <index>=<value>")
	errBadMeta       = errors.New("expected <key>=<value>")
	errBadPosition   = errors.New("expected <line>:<col>, both starting at 1")
)

// parseAssignments turns repeated "--set 1=value" flags into variable values.
func parseAssignments(pairs []string) (map[int]string, error) {
	values := make(map[int]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errBadAssignment, p)
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(k), "$"))
		if err != nil || idx < 1 {
			return nil, fmt.Errorf("%w: %q", errBadAssignment, p)
		}
		values[idx] = v
	}
	return values, nil
}

// parseMeta turns repeated "--meta key=value" flags into a meta header,
// keeping flag order.
func parseMeta(pairs []string) (*snippet.Meta, error) {
	kv := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", errBadMeta, p)
		}
		if err := snippet.ValidateMetaKey(k); err != nil {
			return nil, err
		}
		kv = append(kv, k, strings.TrimSpace(v))
	}
	return snippet.MetaFromPairs(kv...), nil
}

// parsePosition reads a 1-based "line:col" into a zero-based position.
func parsePosition(s string) (insert.Position, error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return insert.Position{}, fmt.Errorf("%w: %q", errBadPosition, s)
	}
	line, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil || line < 1 {
		return insert.Position{}, fmt.Errorf("%w: %q", errBadPosition, s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil || col < 1 {
		return insert.Position{}, fmt.Errorf("%w: %q", errBadPosition, s)
	}
	return insert.Position{Line: line - 1, Col: col - 1}, nil
}

// parseRange reads "line:col-line:col".
func parseRange(s string) (insert.Range, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return insert.Range{}, fmt.Errorf("expected <line>:<col>-<line>:<col>: %q", s)
	}
	start, err := parsePosition(a)
	if err != nil {
		return insert.Range{}, err
	}
	end, err := parsePosition(b)
	if err != nil {
		return insert.Range{}, err
	}
	return insert.Range{Start: start, End: end}.Normalize(), nil
}

// readTemplate reads a template from path, or from in when path is "" or "-".
func readTemplate(path string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // user-chosen template file
	}
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
