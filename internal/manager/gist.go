package manager

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/AntoineGS/tidysnips/internal/loader"
	"github.com/AntoineGS/tidysnips/internal/snippet"
)

// ImportReport summarizes a gist import.
type ImportReport struct {
	Errors   []error
	Imported int
	Removed  int
}

// ImportGist stores the files of a gist API payload as Gist snippets in the
// gist directory. With deleteLocal, previously imported gist snippets are
// removed first. A gist snippet replaces an earlier gist snippet of the same
// name; user snippets keep precedence.
func (m *Manager) ImportGist(data []byte, deleteLocal bool) (*ImportReport, error) {
	gists, err := loader.DecodeGists(data)
	if err != nil {
		return nil, fmt.Errorf("importing gist: %w", err)
	}

	res := loader.GistSources(gists)
	report := &ImportReport{Errors: res.Errors}

	if deleteLocal {
		report.Removed = m.clearGistSnippets(report)
	}

	for _, src := range res.Sources {
		if err := m.checkContext(); err != nil {
			return report, err
		}
		if err := m.importSource(src); err != nil {
			m.logger.Warn("gist file not imported",
				slog.String("name", src.Name),
				slog.String("error", err.Error()))
			report.Errors = append(report.Errors, err)
			continue
		}
		report.Imported++
	}

	m.logger.Info("gist imported",
		slog.Int("imported", report.Imported),
		slog.Int("removed", report.Removed),
		slog.Int("errors", len(report.Errors)))

	return report, nil
}

func (m *Manager) clearGistSnippets(report *ImportReport) int {
	removed := 0
	for _, sn := range m.store.All() {
		if sn.Source != snippet.SourceGist {
			continue
		}
		if !m.DryRun && sn.OriginPath != "" {
			if err := m.gistSink.Delete(sn.OriginPath); err != nil && !errors.Is(err, loader.ErrNotFound) {
				report.Errors = append(report.Errors, err)
				continue
			}
		}
		if !m.DryRun {
			m.store.Remove(sn.Name)
		}
		removed++
	}
	return removed
}

func (m *Manager) importSource(src loader.Source) error {
	sn, err := src.Snippet()
	if err != nil && !errors.Is(err, snippet.ErrParseAmbiguous) {
		return NewSnippetError("import", src.Name, err)
	}

	existing, exists := m.store.Get(sn.Name)
	if exists && existing.Source == snippet.SourceUser {
		return NewSnippetError("import", sn.Name, ErrSnippetExists)
	}

	if m.DryRun {
		m.logger.Info("would import gist snippet", slog.String("name", sn.Name))
		return nil
	}

	path, err := m.gistSink.Create(sn.Name, src.Raw)
	if errors.Is(err, loader.ErrExists) {
		path = filepath.Join(m.Config.GistDir, sn.Name)
		err = m.gistSink.Rewrite(path, src.Raw)
	}
	if err != nil {
		return NewSnippetError("import", sn.Name, err)
	}
	sn.OriginPath = path

	if _, err := m.store.Insert(sn); err != nil {
		return NewSnippetError("import", sn.Name, err)
	}
	return nil
}

// ExportGist builds the upload payload for the user's and imported gist
// snippets. existing is the API payload of the collection gist, or of the
// user's gist listing, or nil when the collection gist does not exist yet.
func (m *Manager) ExportGist(existing []byte) ([]byte, error) {
	var target *loader.Gist
	if len(existing) > 0 {
		gists, err := loader.DecodeGists(existing)
		if err != nil {
			return nil, fmt.Errorf("reading existing gist: %w", err)
		}
		g, ok := loader.FindCollectionGist(gists)
		if !ok && len(gists) == 1 {
			g, ok = gists[0], true
		}
		if !ok {
			return nil, ErrNoCollection
		}
		target = &g
	}

	var snippets []snippet.Snippet
	for _, sn := range m.store.All() {
		if sn.Source == snippet.SourceUser || sn.Source == snippet.SourceGist {
			snippets = append(snippets, sn)
		}
	}

	return loader.EncodeGistPayload(snippets, target)
}
