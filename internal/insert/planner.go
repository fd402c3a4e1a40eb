package insert

import (
	"strings"

	tmpl "github.com/AntoineGS/tidysnips/internal/template"
)

// Context describes where an insertion happens. It is built per attempt and
// never stored.
type Context struct {
	// Selection is nil when nothing is selected.
	Selection *Range
	// CurrentLineText is the line holding the cursor, or the selection start.
	CurrentLineText string
	// NextLineText is the line after the cursor line, or after the
	// selection end.
	NextLineText string
	// TextAfterCursorOnLine is what follows the cursor, or the selection
	// end, on its line.
	TextAfterCursorOnLine string
	Cursor                Position
}

// NewContext captures the insertion context from buf. With a selection the
// cursor is taken to be the selection start.
func NewContext(buf Buffer) Context {
	ctx := Context{Cursor: buf.Cursor()}
	end := ctx.Cursor

	if sel, ok := buf.Selection(); ok && !sel.Empty() {
		sel = sel.Normalize()
		ctx.Selection = &sel
		ctx.Cursor = sel.Start
		end = sel.End
	}

	ctx.CurrentLineText = buf.Line(ctx.Cursor.Line)

	endLine := buf.Line(end.Line)
	if end.Col < len(endLine) {
		ctx.TextAfterCursorOnLine = endLine[end.Col:]
	}
	if end.Line+1 < buf.LineCount() {
		ctx.NextLineText = buf.Line(end.Line + 1)
	}

	return ctx
}

// Request is a resolved template plus the caller-provided fragments.
type Request struct {
	// Template has its variables substituted already. It may still hold
	// the cursor and selected-text markers.
	Template string
	// Prepend and Append are partially typed text found before and after
	// the snippet trigger; they are joined to the body with a space.
	Prepend string
	Append  string
	// SelectedText replaces the selected-text marker.
	SelectedText string
	// Prefilled is set when the snippet search was seeded from the current
	// line; the line is then replaced instead of getting a new line below.
	Prefilled bool
}

// Plan is the edit an insertion produces. The buffer owner applies it.
type Plan struct {
	Text            string
	Indent          string
	Range           Range
	Cursor          Position
	IndentFirstLine bool
	LineBreakBefore bool
	LineBreakAfter  bool
}

// Compute plans inserting req at ctx. It does not touch any buffer.
func Compute(ctx Context, req Request) Plan {
	var p Plan
	hasSelection := ctx.Selection != nil && !ctx.Selection.Empty()

	// Indentation and leading break.
	switch {
	case hasSelection:
		p.Indent = leadingWhitespace(ctx.CurrentLineText)
	case strings.TrimSpace(ctx.CurrentLineText) != "":
		p.Indent = leadingWhitespace(ctx.CurrentLineText)
		p.IndentFirstLine = true
		p.LineBreakBefore = !req.Prefilled
	default:
		p.Indent = strings.Repeat(" ", max(ctx.Cursor.Col, 0))
		p.IndentFirstLine = true
	}

	body := joinFragments(req.Prepend, req.Template, req.Append)
	if strings.Contains(body, tmpl.SelectedMark) {
		body = expandSelected(body, req.SelectedText)
	}

	lines, markLine, markCol := indentLines(body, p.Indent, p.IndentFirstLine)

	// Splice range and trailing break.
	switch {
	case p.LineBreakBefore:
		p.Range = Range{Start: ctx.Cursor, End: ctx.Cursor}
	case hasSelection:
		p.Range = ctx.Selection.Normalize()
	default:
		line := ctx.Cursor.Line
		p.Range = Range{
			Start: Position{Line: line, Col: 0},
			End:   Position{Line: line, Col: len(ctx.CurrentLineText)},
		}
	}
	if !hasSelection && (hasContent(ctx.NextLineText) || hasContent(ctx.TextAfterCursorOnLine)) {
		p.LineBreakAfter = true
	}

	// Final cursor.
	startLine := p.Range.Start.Line
	lead := 0
	if p.LineBreakBefore {
		lead = 1
	}
	// Column where the first block line begins in the buffer.
	firstCol := 0
	if !p.LineBreakBefore {
		firstCol = p.Range.Start.Col
	}

	if markLine >= 0 {
		p.Cursor = Position{Line: startLine + markLine + lead, Col: markCol}
		if markLine == 0 {
			p.Cursor.Col += firstCol
		}
	} else {
		last := len(lines) - 1
		if (last > 0 || p.IndentFirstLine) && strings.TrimSpace(lines[last]) == "" {
			lines[last] = p.Indent
		}
		lineLen := len(lines[last])
		if last == 0 {
			lineLen += firstCol
		}
		p.Cursor = Position{Line: startLine + last + lead, Col: min(ctx.Cursor.Col, lineLen)}
	}

	text := strings.Join(lines, "\n")
	if p.LineBreakBefore {
		text = "\n" + text
	}
	if p.LineBreakAfter {
		text += "\n"
	}
	p.Text = text

	return p
}

// Apply performs plan on buf: the edit first, then the cursor move.
func Apply(buf Buffer, plan Plan) {
	buf.ReplaceRange(plan.Range, plan.Text)
	buf.SetCursor(plan.Cursor)
}

// indentLines prefixes every line of body with indent (the first only when
// indentFirst is set) and strips cursor markers, returning the line and column
// of the first one, or -1 when there is none.
func indentLines(body, indent string, indentFirst bool) ([]string, int, int) {
	lines := strings.Split(body, "\n")
	markLine, markCol := -1, 0

	for i, line := range lines {
		if i > 0 || indentFirst {
			line = indent + line
		}
		for {
			idx := strings.Index(line, tmpl.CursorMark)
			if idx < 0 {
				break
			}
			if markLine < 0 {
				markLine, markCol = i, idx
			}
			line = line[:idx] + line[idx+len(tmpl.CursorMark):]
		}
		lines[i] = line
	}

	return lines, markLine, markCol
}

func joinFragments(prepend, body, appendix string) string {
	if prepend != "" {
		body = prepend + " " + body
	}
	if appendix != "" {
		body = body + " " + appendix
	}
	return body
}
