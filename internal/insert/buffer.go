// Package insert plans how a resolved snippet is spliced into a text buffer:
// indentation, surrounding line breaks, selected-text expansion and the final
// cursor position.
package insert

import "strings"

// Position is a zero-based line and byte column in a buffer.
type Position struct {
	Line int
	Col  int
}

// Before reports whether p comes strictly before o.
func (p Position) Before(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Col < o.Col)
}

// Range is the span between two positions, End exclusive.
type Range struct {
	Start Position
	End   Position
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Normalize returns r with Start before End.
func (r Range) Normalize() Range {
	if r.End.Before(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Buffer is the editing capability the planner needs from a host editor.
type Buffer interface {
	Line(n int) string
	LineCount() int
	Cursor() Position
	Selection() (Range, bool)
	ReplaceRange(r Range, text string)
	SetCursor(p Position)
}

// TextInRange returns the text buf holds between r.Start and r.End.
func TextInRange(buf Buffer, r Range) string {
	r = r.Normalize()
	if r.Empty() {
		return ""
	}

	var sb strings.Builder
	for n := r.Start.Line; n <= r.End.Line && n < buf.LineCount(); n++ {
		line := buf.Line(n)
		from, to := 0, len(line)
		if n == r.Start.Line {
			from = clamp(r.Start.Col, 0, len(line))
		}
		if n == r.End.Line {
			to = clamp(r.End.Col, from, len(line))
		}
		if n > r.Start.Line {
			sb.WriteByte('\n')
		}
		sb.WriteString(line[from:to])
	}
	return sb.String()
}

// LinesBuffer is an in-memory Buffer over a text document.
type LinesBuffer struct {
	selection *Range
	lines     []string
	cursor    Position
}

// NewLinesBuffer splits text into lines. A trailing newline yields a final
// empty line so String round-trips the input.
func NewLinesBuffer(text string) *LinesBuffer {
	return &LinesBuffer{lines: strings.Split(text, "\n")}
}

// String returns the document text.
func (b *LinesBuffer) String() string {
	return strings.Join(b.lines, "\n")
}

// Line returns line n, or "" when n is out of range.
func (b *LinesBuffer) Line(n int) string {
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

// LineCount returns the number of lines.
func (b *LinesBuffer) LineCount() int {
	return len(b.lines)
}

// Cursor returns the cursor position.
func (b *LinesBuffer) Cursor() Position {
	return b.cursor
}

// SetCursor moves the cursor to an existing line. The column may lie past
// the end of the line (a virtual column, as on an empty indented line).
func (b *LinesBuffer) SetCursor(p Position) {
	b.cursor = Position{Line: clamp(p.Line, 0, len(b.lines)-1), Col: max(p.Col, 0)}
}

// Select sets the active selection and moves the cursor to its end.
func (b *LinesBuffer) Select(r Range) {
	r = Range{Start: b.clampPosition(r.Start), End: b.clampPosition(r.End)}
	b.selection = &r
	b.cursor = r.End
}

// Selection returns the active selection.
func (b *LinesBuffer) Selection() (Range, bool) {
	if b.selection == nil {
		return Range{}, false
	}
	return *b.selection, true
}

// ReplaceRange replaces the text in r with text and clears the selection.
func (b *LinesBuffer) ReplaceRange(r Range, text string) {
	r = r.Normalize()
	start, end := b.clampPosition(r.Start), b.clampPosition(r.End)

	prefix := b.lines[start.Line][:start.Col]
	suffix := b.lines[end.Line][end.Col:]
	replacement := strings.Split(prefix+text+suffix, "\n")

	lines := make([]string, 0, len(b.lines)-(end.Line-start.Line)+len(replacement))
	lines = append(lines, b.lines[:start.Line]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[end.Line+1:]...)

	b.lines = lines
	b.selection = nil
}

func (b *LinesBuffer) clampPosition(p Position) Position {
	line := clamp(p.Line, 0, len(b.lines)-1)
	return Position{Line: line, Col: clamp(p.Col, 0, len(b.lines[line]))}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
