// Package store keeps the in-memory, name-sorted set of snippets and decides
// which snippet wins when two sources provide the same name.
package store

import (
	"cmp"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/AntoineGS/tidysnips/internal/snippet"
)

// Outcome describes what Insert did with a snippet.
type Outcome int

// Insert outcomes.
const (
	OutcomeRejected Outcome = iota
	OutcomeAdded
	OutcomeReplaced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeReplaced:
		return "replaced"
	default:
		return "rejected"
	}
}

// Store is an ordered set of snippets keyed by name and sorted by name.
//
// Store does no locking. Callers that load from several sources concurrently
// must merge the results one batch at a time.
type Store struct {
	logger   *slog.Logger
	snippets []snippet.Snippet
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// WithLogger returns a copy of the store that logs to logger. The copy owns
// its snippets; later changes to either store do not show in the other.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	s2 := *s
	s2.logger = logger
	s2.snippets = slices.Clone(s.snippets)
	return &s2
}

// CanReplace reports whether a snippet from incoming may overwrite an existing
// snippet from existing with the same name. Sources that need a deliberate
// action (user edits, gist imports) outrank directory scans.
func CanReplace(existing, incoming snippet.SourceKind) bool {
	switch existing {
	case snippet.SourceDirectory:
		return incoming.Valid()
	case snippet.SourceUser:
		return incoming == snippet.SourceUser
	case snippet.SourceGist:
		return incoming == snippet.SourceUser || incoming == snippet.SourceGist
	default:
		return false
	}
}

// Insert adds sn, or replaces the snippet of the same name when precedence
// allows it. A rejected insert leaves the store unchanged and returns an
// error wrapping ErrDuplicateName.
func (s *Store) Insert(sn snippet.Snippet) (Outcome, error) {
	if !sn.Source.Valid() {
		return OutcomeRejected, &InsertError{Name: sn.Name, Err: snippet.ErrUnknownSourceKind}
	}
	if err := snippet.ValidateName(sn.Name); err != nil {
		return OutcomeRejected, &InsertError{Name: sn.Name, Err: err}
	}

	i, found := s.find(sn.Name)
	if !found {
		s.snippets = slices.Insert(s.snippets, i, sn.Clone())
		return OutcomeAdded, nil
	}

	existing := s.snippets[i]
	if !CanReplace(existing.Source, sn.Source) {
		return OutcomeRejected, &DuplicateNameError{
			Name:     sn.Name,
			Existing: existing.Source,
			Incoming: sn.Source,
		}
	}

	s.snippets[i] = sn.Clone()
	return OutcomeReplaced, nil
}

// InsertAll inserts every snippet in order. A failing snippet does not stop
// the batch; its error is logged and returned in the result.
func (s *Store) InsertAll(snippets []snippet.Snippet) []error {
	var errs []error
	for _, sn := range snippets {
		outcome, err := s.Insert(sn)
		if err != nil {
			s.logger.Warn("snippet not stored",
				slog.String("name", sn.Name),
				slog.String("source", sn.Source.String()),
				slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		s.logger.Debug("snippet stored",
			slog.String("name", sn.Name),
			slog.String("source", sn.Source.String()),
			slog.String("outcome", outcome.String()))
	}
	return errs
}

// Remove deletes the snippet called name. Removing a missing name is a no-op.
func (s *Store) Remove(name string) {
	if i, found := s.find(name); found {
		s.snippets = slices.Delete(s.snippets, i, i+1)
	}
}

// Get returns a copy of the snippet called name.
func (s *Store) Get(name string) (snippet.Snippet, bool) {
	i, found := s.find(name)
	if !found {
		return snippet.Snippet{}, false
	}
	return s.snippets[i].Clone(), true
}

// Rename moves the snippet oldName to newName and records originPath as its
// file. An empty originPath keeps the current one. The target name must be free.
func (s *Store) Rename(oldName, newName, originPath string) error {
	if err := snippet.ValidateName(newName); err != nil {
		return err
	}
	i, found := s.find(oldName)
	if !found {
		return &NotFoundError{Name: oldName}
	}
	if oldName == newName {
		if originPath != "" {
			s.snippets[i].OriginPath = originPath
		}
		return nil
	}
	if _, taken := s.find(newName); taken {
		existing, _ := s.Get(newName)
		return &DuplicateNameError{Name: newName, Existing: existing.Source, Incoming: s.snippets[i].Source}
	}

	sn := s.snippets[i]
	s.snippets = slices.Delete(s.snippets, i, i+1)
	sn.Name = newName
	if originPath != "" {
		sn.OriginPath = originPath
	}
	j, _ := s.find(newName)
	s.snippets = slices.Insert(s.snippets, j, sn)

	return nil
}

// Len returns the number of stored snippets.
func (s *Store) Len() int {
	return len(s.snippets)
}

// All returns copies of every snippet in name order.
func (s *Store) All() []snippet.Snippet {
	out := make([]snippet.Snippet, len(s.snippets))
	for i, sn := range s.snippets {
		out[i] = sn.Clone()
	}
	return out
}

// Search returns the snippets whose name contains query, ignoring case, in
// store order. The query is matched literally. An empty query matches every
// snippet. When lang is set, only snippets with a "lang" meta value equal to
// or containing lang are returned.
func (s *Store) Search(query, lang string) []snippet.Snippet {
	q := strings.ToLower(query)
	l := strings.ToLower(strings.TrimSpace(lang))

	var out []snippet.Snippet
	for _, sn := range s.snippets {
		if q != "" && !strings.Contains(strings.ToLower(sn.Name), q) {
			continue
		}
		if l != "" && !matchesLang(sn, l) {
			continue
		}
		out = append(out, sn.Clone())
	}
	return out
}

func matchesLang(sn snippet.Snippet, lang string) bool {
	v, ok := sn.Lang()
	if !ok {
		return false
	}
	v = strings.ToLower(v)
	return v == lang || strings.Contains(v, lang)
}

// find returns the position of name, or where it would be inserted.
func (s *Store) find(name string) (int, bool) {
	return slices.BinarySearchFunc(s.snippets, name, func(sn snippet.Snippet, target string) int {
		return cmp.Compare(sn.Name, target)
	})
}
