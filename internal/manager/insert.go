package manager

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/AntoineGS/tidysnips/internal/insert"
	"github.com/AntoineGS/tidysnips/internal/snippet"
	tmpl "github.com/AntoineGS/tidysnips/internal/template"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Prepared is a snippet ready to be filled in: its distinct variables in
// focus order and the values they start with.
type Prepared struct {
	Values  map[int]string
	Snippet snippet.Snippet
	Fields  []tmpl.VariableSpec
}

// Prepare looks up name and computes the starting values of its variables.
// Rendered defaults win over the values of the last usage.
func (m *Manager) Prepare(name string) (*Prepared, error) {
	sn, err := m.Get(name)
	if err != nil {
		return nil, err
	}

	p := &Prepared{
		Snippet: sn,
		Fields:  tmpl.UniqueVariables(tmpl.ExtractVariables(sn.Template)),
		Values:  make(map[int]string),
	}

	known := make(map[int]bool, len(p.Fields))
	for _, f := range p.Fields {
		known[f.Index] = true
	}

	for idx, v := range m.lastValues(name) {
		if known[idx] {
			p.Values[idx] = v
		}
	}

	defaults, err := m.templateEngine.Defaults(sn)
	if err != nil {
		m.logger.Warn("snippet defaults not rendered", slog.String("snippet", name), slog.String("error", err.Error()))
	}
	for idx, v := range defaults {
		if known[idx] {
			p.Values[idx] = v
		}
	}

	return p, nil
}

// MergeValues overlays explicit values on the prepared ones.
func (p *Prepared) MergeValues(values map[int]string) map[int]string {
	out := make(map[int]string, len(p.Values)+len(values))
	for k, v := range p.Values {
		out[k] = v
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}

// Unresolved reports whether a required variable is still empty.
func (p *Prepared) Unresolved(values map[int]string) bool {
	return tmpl.HasUnresolved(values, p.Fields)
}

// Render fills the snippet with values and drops the cursor and selection
// markers. Every required variable must have a value.
func (m *Manager) Render(name string, values map[int]string) (string, error) {
	sn, err := m.Get(name)
	if err != nil {
		return "", err
	}

	out, err := tmpl.Substitute(sn.Template, values, true)
	if err != nil {
		return "", NewSnippetError("render", name, err)
	}
	out = strings.ReplaceAll(out, tmpl.CursorMark, "")
	out = strings.ReplaceAll(out, tmpl.SelectedMark, "")

	m.recordUsage(name, values)
	return out, nil
}

// InsertRequest describes one insertion of a snippet into a buffer.
type InsertRequest struct {
	Values    map[int]string
	Name      string
	Prepend   string
	Append    string
	Prefilled bool
}

// Insert fills the snippet and plans its insertion at the buffer's cursor or
// over its selection. The plan is applied to buf unless DryRun is set. A
// missing required value leaves buf untouched.
func (m *Manager) Insert(buf insert.Buffer, req InsertRequest) (insert.Plan, error) {
	plan, err := m.plan(buf, req)
	if err != nil || m.DryRun {
		return plan, err
	}

	insert.Apply(buf, plan)
	m.recordUsage(req.Name, req.Values)

	return plan, nil
}

func (m *Manager) plan(buf insert.Buffer, req InsertRequest) (insert.Plan, error) {
	sn, err := m.Get(req.Name)
	if err != nil {
		return insert.Plan{}, err
	}

	body, err := tmpl.Substitute(sn.Template, req.Values, true)
	if err != nil {
		return insert.Plan{}, NewSnippetError("insert", req.Name, err)
	}

	ctx := insert.NewContext(buf)
	var selected string
	if ctx.Selection != nil {
		selected = insert.TextInRange(buf, *ctx.Selection)
	}

	plan := insert.Compute(ctx, insert.Request{
		Template:     body,
		Prepend:      req.Prepend,
		Append:       req.Append,
		SelectedText: selected,
		Prefilled:    req.Prefilled,
	})

	m.logger.Debug("insertion planned",
		slog.String("snippet", req.Name),
		slog.Int("line", plan.Range.Start.Line),
		slog.Int("col", plan.Range.Start.Col),
		slog.Bool("lineBreakBefore", plan.LineBreakBefore),
		slog.Bool("lineBreakAfter", plan.LineBreakAfter))

	return plan, nil
}

// FileInsertion is the outcome of inserting a snippet into a file.
type FileInsertion struct {
	Before string
	After  string
	Diff   string
	Plan   insert.Plan
}

// InsertFile inserts a snippet into the file at path, at cursor or over sel
// when it is set. The file is rewritten unless DryRun is set; the diff of the
// change is returned either way.
func (m *Manager) InsertFile(path string, cursor insert.Position, sel *insert.Range, req InsertRequest) (*FileInsertion, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-chosen target file
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	buf := insert.NewLinesBuffer(string(data))
	buf.SetCursor(cursor)
	if sel != nil {
		buf.Select(*sel)
	}

	plan, err := m.plan(buf, req)
	if err != nil {
		return nil, err
	}
	// The in-memory buffer is edited even in dry-run mode so the diff shows the result.
	insert.Apply(buf, plan)

	res := &FileInsertion{
		Before: string(data),
		After:  buf.String(),
		Plan:   plan,
	}
	res.Diff = unifiedDiff(path, res.Before, res.After)

	if m.DryRun {
		return res, nil
	}

	mode := os.FileMode(0600)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(res.After), mode); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	m.recordUsage(req.Name, req.Values)

	m.logger.Info("snippet inserted", slog.String("snippet", req.Name), slog.String("file", path))
	return res, nil
}

// unifiedDiff renders a line diff between before and after using sergi/go-diff.
func unifiedDiff(path, before, after string) string {
	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	sb.WriteString("--- " + path + "\n")
	sb.WriteString("+++ " + path + " (with snippet)\n")

	for _, diff := range diffs {
		lines := strings.Split(diff.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			switch diff.Type {
			case diffmatchpatch.DiffDelete:
				sb.WriteString("- " + line + "\n")
			case diffmatchpatch.DiffInsert:
				sb.WriteString("+ " + line + "\n")
			case diffmatchpatch.DiffEqual:
				sb.WriteString("  " + line + "\n")
			}
		}
	}

	return sb.String()
}
