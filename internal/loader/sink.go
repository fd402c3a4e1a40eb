package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AntoineGS/tidysnips/internal/snippet"
)

// File permissions for written snippets.
const (
	DirPerms  os.FileMode = 0750
	FilePerms os.FileMode = 0600
)

// Sentinel errors for persistence
var (
	ErrExists   = errors.New("file already exists")
	ErrNotFound = errors.New("file not found")
)

// Sink persists encoded snippets.
type Sink interface {
	Create(name, encoded string) (string, error)
	Rename(originPath, newName string) (string, error)
	Rewrite(originPath, encoded string) error
	Delete(originPath string) error
}

// FileSink stores each snippet as one file, named after the snippet, in Dir.
type FileSink struct {
	Dir string
}

// NewFileSink creates a FileSink writing new snippets to dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Create writes a new snippet file and returns its path. It refuses to
// overwrite an existing file.
func (s *FileSink) Create(name, encoded string) (string, error) {
	if err := snippet.ValidateName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, DirPerms); err != nil {
		return "", &FileError{Op: "mkdir", Path: s.Dir, Err: err}
	}

	path := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerms) //nolint:gosec // name validated above
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", &FileError{Op: "create", Path: path, Err: ErrExists}
		}
		return "", &FileError{Op: "create", Path: path, Err: err}
	}

	if _, err := f.WriteString(encoded); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", &FileError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &FileError{Op: "close", Path: path, Err: err}
	}

	return path, nil
}

// Rename renames the file at originPath to newName in the same directory and
// returns the new path. The target must not exist.
func (s *FileSink) Rename(originPath, newName string) (string, error) {
	if err := snippet.ValidateName(newName); err != nil {
		return "", err
	}
	if _, err := os.Stat(originPath); err != nil {
		return "", &FileError{Op: "rename", Path: originPath, Err: notFound(err)}
	}

	target := filepath.Join(filepath.Dir(originPath), newName)
	if _, err := os.Stat(target); err == nil {
		return "", &FileError{Op: "rename", Path: target, Err: ErrExists}
	}

	if err := os.Rename(originPath, target); err != nil {
		return "", &FileError{Op: "rename", Path: originPath, Err: err}
	}

	return target, nil
}

// Rewrite replaces the content of an existing snippet file.
func (s *FileSink) Rewrite(originPath, encoded string) error {
	info, err := os.Stat(originPath)
	if err != nil {
		return &FileError{Op: "rewrite", Path: originPath, Err: notFound(err)}
	}

	if err := os.WriteFile(originPath, []byte(encoded), info.Mode().Perm()); err != nil {
		return &FileError{Op: "rewrite", Path: originPath, Err: err}
	}

	return nil
}

// Delete removes a snippet file.
func (s *FileSink) Delete(originPath string) error {
	if err := os.Remove(originPath); err != nil {
		return &FileError{Op: "delete", Path: originPath, Err: notFound(err)}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
