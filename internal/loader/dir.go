// Package loader reads raw snippet files from directories, writes them back,
// and converts gist payloads to and from raw snippet sources.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/AntoineGS/tidysnips/internal/snippet"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentDirs bounds how many directories are scanned at once.
const maxConcurrentDirs = 4

// Source is one raw snippet as found by a loader.
type Source struct {
	Name       string
	Raw        string
	OriginPath string
	Kind       snippet.SourceKind
}

// Snippet decodes the source through the snippet codec.
func (s Source) Snippet() (snippet.Snippet, error) {
	return snippet.FromSource(s.Name, s.Raw, s.OriginPath, s.Kind)
}

// DirSpec names a directory and the source kind its files get.
type DirSpec struct {
	Path string
	Kind snippet.SourceKind
}

// Result is everything a load produced. Failures are per file; one bad file
// never hides the others.
type Result struct {
	Sources []Source
	Errors  []error
}

// DirLoader scans snippet directories.
type DirLoader struct {
	logger *slog.Logger
}

// NewDirLoader creates a DirLoader that logs through logger.
func NewDirLoader(logger *slog.Logger) *DirLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirLoader{logger: logger}
}

// Load scans dirs concurrently. Sources come back grouped by directory in the
// order of dirs, and by file name within a directory, whatever order the scans
// finished in. A missing directory is skipped without error.
func (l *DirLoader) Load(ctx context.Context, dirs []DirSpec) (Result, error) {
	perDir := make([]Result, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDirs)

	for i, d := range dirs {
		g.Go(func() error {
			res, err := l.loadDir(gctx, d)
			if err != nil {
				return err
			}
			perDir[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var out Result
	for _, r := range perDir {
		out.Sources = append(out.Sources, r.Sources...)
		out.Errors = append(out.Errors, r.Errors...)
	}

	return out, nil
}

// loadDir only returns an error when ctx is canceled; everything else is a
// per-file or per-directory failure recorded in the Result.
func (l *DirLoader) loadDir(ctx context.Context, d DirSpec) (Result, error) {
	var res Result

	entries, err := os.ReadDir(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("snippet directory missing", slog.String("dir", d.Path))
			return res, nil
		}
		res.Errors = append(res.Errors, &FileError{Op: "scan", Path: d.Path, Err: err})
		return res, nil
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		path := filepath.Join(d.Path, e.Name())
		data, err := os.ReadFile(path) //nolint:gosec // path comes from a configured snippet directory
		if err != nil {
			l.logger.Warn("skipping unreadable snippet",
				slog.String("path", path),
				slog.String("error", err.Error()))
			res.Errors = append(res.Errors, &FileError{Op: "read", Path: path, Err: err})
			continue
		}

		res.Sources = append(res.Sources, Source{
			Name:       e.Name(),
			Raw:        string(data),
			OriginPath: path,
			Kind:       d.Kind,
		})
	}

	slices.SortFunc(res.Sources, func(a, b Source) int { return strings.Compare(a.Name, b.Name) })
	l.logger.Debug("scanned snippet directory",
		slog.String("dir", d.Path),
		slog.String("kind", d.Kind.String()),
		slog.Int("files", len(res.Sources)))

	return res, nil
}

// FileError records a failed file operation.
type FileError struct {
	Err  error
	Op   string
	Path string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
