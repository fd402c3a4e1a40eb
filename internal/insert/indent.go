package insert

import (
	"strings"

	tmpl "github.com/AntoineGS/tidysnips/internal/template"
)

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func hasContent(s string) bool {
	return strings.TrimSpace(s) != ""
}

// dedent removes the indentation shared by all non-blank lines.
func dedent(lines []string) []string {
	minIndent := -1
	for _, l := range lines {
		if !hasContent(l) {
			continue
		}
		if n := len(leadingWhitespace(l)); minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent <= 0 {
		return lines
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l[min(minIndent, len(leadingWhitespace(l))):]
	}
	return out
}

// expandSelected replaces each selected-text marker with the dedented
// selection. Continuation lines take the indentation of the marker's line.
func expandSelected(body, selected string) string {
	selLines := dedent(strings.Split(selected, "\n"))

	bodyLines := strings.Split(body, "\n")
	for i, line := range bodyLines {
		if !strings.Contains(line, tmpl.SelectedMark) {
			continue
		}
		indent := leadingWhitespace(line)

		var sb strings.Builder
		sb.WriteString(selLines[0])
		for _, l := range selLines[1:] {
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(l)
		}
		bodyLines[i] = strings.ReplaceAll(line, tmpl.SelectedMark, sb.String())
	}

	return strings.Join(bodyLines, "\n")
}
