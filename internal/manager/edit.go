package manager

import (
	"log/slog"

	"github.com/AntoineGS/tidysnips/internal/loader"
	"github.com/AntoineGS/tidysnips/internal/snippet"
)

// Create writes a new user snippet to the default directory and adds it to
// the store. A user snippet of the same name must not exist; snippets from
// other sources are shadowed by the new one.
func (m *Manager) Create(name, template string, meta *snippet.Meta) (snippet.Snippet, error) {
	if err := snippet.ValidateName(name); err != nil {
		return snippet.Snippet{}, NewSnippetError("create", name, err)
	}
	if err := snippet.ValidateMeta(meta); err != nil {
		return snippet.Snippet{}, NewSnippetError("create", name, err)
	}
	if existing, ok := m.store.Get(name); ok && existing.Source == snippet.SourceUser {
		return snippet.Snippet{}, NewSnippetError("create", name, ErrSnippetExists)
	}

	sn := snippet.Snippet{
		Name:     name,
		Template: template,
		Meta:     meta,
		Source:   snippet.SourceUser,
	}

	if m.DryRun {
		m.logger.Info("would create snippet", slog.String("name", name))
		return sn, nil
	}

	path, err := m.userSink.Create(name, sn.Encode())
	if err != nil {
		return snippet.Snippet{}, NewSnippetError("create", name, err)
	}
	sn.OriginPath = path

	if _, err := m.store.Insert(sn); err != nil {
		return snippet.Snippet{}, NewSnippetError("create", name, err)
	}

	m.logger.Info("snippet created", slog.String("name", name), slog.String("path", path))
	return sn, nil
}

// Update renames the snippet to newName and replaces its template, each
// only when it differs. An empty newName keeps the name.
func (m *Manager) Update(name, newName, template string) (snippet.Snippet, error) {
	sn, err := m.Get(name)
	if err != nil {
		return snippet.Snippet{}, NewSnippetError("update", name, err)
	}
	if sn.OriginPath == "" {
		return snippet.Snippet{}, NewSnippetError("update", name, ErrNotEditable)
	}
	if newName == "" {
		newName = name
	}

	if newName != name {
		if err := snippet.ValidateName(newName); err != nil {
			return snippet.Snippet{}, NewSnippetError("rename", name, err)
		}
		if _, taken := m.store.Get(newName); taken {
			return snippet.Snippet{}, NewSnippetError("rename", newName, ErrSnippetExists)
		}

		if !m.DryRun {
			path, err := m.sinkFor(sn).Rename(sn.OriginPath, newName)
			if err != nil {
				return snippet.Snippet{}, NewSnippetError("rename", name, err)
			}
			if err := m.store.Rename(name, newName, path); err != nil {
				return snippet.Snippet{}, NewSnippetError("rename", name, err)
			}
			sn.OriginPath = path
			m.renameHistory(name, newName)
		}
		sn.Name = newName
		m.logger.Info("snippet renamed", slog.String("from", name), slog.String("to", newName))
	}

	if template != sn.Template {
		sn.Template = template
		if !m.DryRun {
			if err := m.sinkFor(sn).Rewrite(sn.OriginPath, sn.Encode()); err != nil {
				return snippet.Snippet{}, NewSnippetError("rewrite", sn.Name, err)
			}
			if _, err := m.store.Insert(sn); err != nil {
				return snippet.Snippet{}, NewSnippetError("rewrite", sn.Name, err)
			}
		}
		m.logger.Info("snippet rewritten", slog.String("name", sn.Name))
	}

	return sn, nil
}

// SetMeta replaces the meta header of a snippet and rewrites its file.
func (m *Manager) SetMeta(name string, meta *snippet.Meta) (snippet.Snippet, error) {
	sn, err := m.Get(name)
	if err != nil {
		return snippet.Snippet{}, NewSnippetError("update", name, err)
	}
	if sn.OriginPath == "" {
		return snippet.Snippet{}, NewSnippetError("update", name, ErrNotEditable)
	}
	if err := snippet.ValidateMeta(meta); err != nil {
		return snippet.Snippet{}, NewSnippetError("update", name, err)
	}
	if sn.Meta.Equal(meta) {
		return sn, nil
	}

	sn.Meta = meta
	if m.DryRun {
		return sn, nil
	}
	if err := m.sinkFor(sn).Rewrite(sn.OriginPath, sn.Encode()); err != nil {
		return snippet.Snippet{}, NewSnippetError("rewrite", name, err)
	}
	if _, err := m.store.Insert(sn); err != nil {
		return snippet.Snippet{}, NewSnippetError("rewrite", name, err)
	}

	return sn, nil
}

// Delete removes the snippet file, the store entry and its usage history.
func (m *Manager) Delete(name string) error {
	sn, err := m.Get(name)
	if err != nil {
		return NewSnippetError("delete", name, err)
	}

	if m.DryRun {
		m.logger.Info("would delete snippet", slog.String("name", name), slog.String("path", sn.OriginPath))
		return nil
	}

	if sn.OriginPath != "" {
		if err := m.sinkFor(sn).Delete(sn.OriginPath); err != nil {
			return NewSnippetError("delete", name, err)
		}
	}
	m.store.Remove(name)

	if m.stateStore != nil {
		if err := m.stateStore.RemoveSnippet(name); err != nil {
			m.logger.Warn("failed to remove usage history", slog.String("snippet", name), slog.String("error", err.Error()))
		}
	}

	m.logger.Info("snippet deleted", slog.String("name", name))
	return nil
}

// sinkFor returns the sink that owns the snippet's file. Edits of existing
// files only use the origin path, so Directory snippets go through the user sink.
func (m *Manager) sinkFor(sn snippet.Snippet) loader.Sink {
	if sn.Source == snippet.SourceGist {
		return m.gistSink
	}
	return m.userSink
}

func (m *Manager) renameHistory(oldName, newName string) {
	if m.stateStore == nil {
		return
	}
	if err := m.stateStore.RenameSnippet(oldName, newName); err != nil {
		m.logger.Warn("failed to move usage history",
			slog.String("from", oldName),
			slog.String("to", newName),
			slog.String("error", err.Error()))
	}
}
