package manager

import (
	"fmt"
	"io"
	"strings"

	"github.com/AntoineGS/tidysnips/internal/snippet"
	tmpl "github.com/AntoineGS/tidysnips/internal/template"
)

// List writes the snippets matching query and lang with their source and
// variables. A zero source lists every source.
func (m *Manager) List(w io.Writer, query, lang string, source snippet.SourceKind) error {
	var snippets []snippet.Snippet
	for _, sn := range m.Search(query, lang) {
		if source == 0 || sn.Source == source {
			snippets = append(snippets, sn)
		}
	}
	if len(snippets) == 0 {
		_, err := fmt.Fprintln(w, "No snippets found.")
		return err
	}

	for _, sn := range snippets {
		line := fmt.Sprintf("%s [%s]", sn.Name, sn.Source)
		if l, ok := sn.Lang(); ok {
			line += " (" + l + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}

		fields := tmpl.UniqueVariables(tmpl.ExtractVariables(sn.Template))
		if len(fields) > 0 {
			labels := make([]string, 0, len(fields))
			for _, f := range fields {
				labels = append(labels, f.String())
			}
			fmt.Fprintf(w, "├─ vars: %s\n", strings.Join(labels, ", "))
		}
		if sn.OriginPath != "" {
			fmt.Fprintf(w, "└─ file: %s\n", sn.OriginPath)
		}
	}

	return nil
}
