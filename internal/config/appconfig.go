// Package config provides configuration management for tidysnips.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the configuration stored in ~/.config/tidysnips/config.yaml.
// Paths are kept unexpanded on disk; Load expands them.
type AppConfig struct {
	// DefaultDir holds the user's own snippets. New snippets are created here.
	DefaultDir string `yaml:"default_dir"`

	// SnippetDirs are extra, automatically discovered snippet directories.
	SnippetDirs []string `yaml:"snippet_dirs,omitempty"`

	// GistDir holds snippets imported from a gist.
	GistDir string `yaml:"gist_dir"`

	// StateDB is the usage history database.
	StateDB string `yaml:"state_db"`

	// GitHubLogin is used to locate the user's snippet gist.
	GitHubLogin string `yaml:"github_login,omitempty"`

	// HistoryLimit is how many usages are kept per snippet.
	HistoryLimit int `yaml:"history_limit"`
}

const (
	appConfigDir        = ".config/tidysnips"
	appConfigFile       = "config.yaml"
	defaultHistoryLimit = 20
)

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	base := "~/" + appConfigDir
	return &AppConfig{
		DefaultDir:   base + "/snippets",
		GistDir:      base + "/gists",
		StateDB:      base + "/history.db",
		HistoryLimit: defaultHistoryLimit,
	}
}

// AppConfigPath returns the path where the app config is stored.
// Returns an empty string if the home directory cannot be determined.
func AppConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, appConfigDir, appConfigFile)
}

// LoadAppConfig loads the app configuration from ~/.config/tidysnips/config.yaml
func LoadAppConfig() (*AppConfig, error) {
	path := AppConfigPath()
	if path == "" {
		return nil, fmt.Errorf("getting home directory: %w", os.ErrNotExist)
	}

	return LoadAppConfigFrom(path)
}

// LoadAppConfigFrom loads the app configuration from path. A missing file
// yields the defaults. Unset fields are filled from the defaults and every
// path is expanded.
func LoadAppConfigFrom(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path, intentional
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading app config: %w", err)
	default:
		var fromFile AppConfig
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("parsing app config: %w", err)
		}
		cfg.merge(&fromFile)
	}

	expanded := cfg.Expanded()
	if err := expanded.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return expanded, nil
}

func (a *AppConfig) merge(other *AppConfig) {
	if other.DefaultDir != "" {
		a.DefaultDir = other.DefaultDir
	}
	if other.GistDir != "" {
		a.GistDir = other.GistDir
	}
	if other.StateDB != "" {
		a.StateDB = other.StateDB
	}
	if other.HistoryLimit != 0 {
		a.HistoryLimit = other.HistoryLimit
	}
	a.SnippetDirs = other.SnippetDirs
	a.GitHubLogin = other.GitHubLogin
}

// Expanded returns a copy with ~ and environment variables expanded in every path.
func (a *AppConfig) Expanded() *AppConfig {
	out := *a
	out.DefaultDir = ExpandPath(a.DefaultDir, nil)
	out.GistDir = ExpandPath(a.GistDir, nil)
	out.StateDB = ExpandPath(a.StateDB, nil)
	out.SnippetDirs = make([]string, 0, len(a.SnippetDirs))
	for _, d := range a.SnippetDirs {
		out.SnippetDirs = append(out.SnippetDirs, ExpandPath(d, nil))
	}
	return &out
}

// Validate checks the configuration and reports every problem found.
func (a *AppConfig) Validate() error {
	errs := &ValidationErrors{}

	if a.DefaultDir == "" {
		errs.Add(NewFieldError("default_dir", "", ErrEmptyPath))
	}
	if a.GistDir == "" {
		errs.Add(NewFieldError("gist_dir", "", ErrEmptyPath))
	}
	if a.StateDB == "" {
		errs.Add(NewFieldError("state_db", "", ErrEmptyPath))
	}
	if a.HistoryLimit < 0 {
		errs.Add(NewFieldError("history_limit", fmt.Sprint(a.HistoryLimit), ErrNegativeLimit))
	}

	// Importing a gist clears the gist directory, so it must not hold other snippets.
	if a.GistDir != "" && samePath(a.GistDir, a.DefaultDir) {
		errs.Add(NewFieldError("gist_dir", a.GistDir, ErrOverlappingDirs))
	}

	for i, d := range a.SnippetDirs {
		field := fmt.Sprintf("snippet_dirs[%d]", i)
		switch {
		case d == "":
			errs.Add(NewFieldError(field, d, ErrEmptyPath))
		case samePath(d, a.DefaultDir) || samePath(d, a.GistDir):
			errs.Add(NewFieldError(field, d, ErrOverlappingDirs))
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// SaveAppConfig saves the app configuration to ~/.config/tidysnips/config.yaml
func SaveAppConfig(cfg *AppConfig) error {
	path := AppConfigPath()
	if path == "" {
		return fmt.Errorf("getting home directory: %w", os.ErrNotExist)
	}

	return SaveAppConfigTo(cfg, path)
}

// SaveAppConfigTo writes the app configuration to path.
func SaveAppConfigTo(cfg *AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := marshalYAML(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	content := fmt.Sprintf("# tidysnips app configuration\n\n%s", string(data))

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ and environment variables in a single path.
func ExpandPath(path string, envVars map[string]string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	for key, value := range envVars {
		path = strings.ReplaceAll(path, "$"+key, value)
	}

	return os.ExpandEnv(path)
}

func marshalYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
