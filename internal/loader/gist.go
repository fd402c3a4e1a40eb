package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/AntoineGS/tidysnips/internal/snippet"
)

// DefaultGistDescription marks the gist that holds a user's snippet collection.
const DefaultGistDescription = "My code snippets (created using tidysnips)"

// GitHubAPI is the base URL gist API paths are built on.
const GitHubAPI = "https://api.github.com"

// Sentinel errors for gist payloads
var (
	ErrInvalidGistURL = errors.New("cannot find gist id or user in URL")
	ErrMissingContent = errors.New("gist file content not included")
)

var (
	gistIDPattern   = regexp.MustCompile(`gist\.github\.com/([a-zA-Z0-9-]+)/([a-zA-Z0-9]+)`)
	gistUserPattern = regexp.MustCompile(`gist\.github\.com/([a-zA-Z0-9-]+)`)
)

// GistRef identifies a single gist or all gists of a user.
type GistRef struct {
	User string
	ID   string
}

// APIURL returns the API endpoint for the reference: the gist itself when an
// id is known, the user's gist listing otherwise.
func (r GistRef) APIURL() string {
	if r.ID != "" {
		return GitHubAPI + "/gists/" + r.ID
	}
	return GitHubAPI + "/users/" + r.User + "/gists"
}

// ParseGistURL understands gist.github.com/<user>/<id>, gist.github.com/<user>
// and gist.github.com/<user>/public.
func ParseGistURL(url string) (GistRef, error) {
	if m := gistIDPattern.FindStringSubmatch(url); m != nil && m[2] != "public" {
		return GistRef{User: m[1], ID: m[2]}, nil
	}
	if m := gistUserPattern.FindStringSubmatch(url); m != nil {
		return GistRef{User: m[1]}, nil
	}
	return GistRef{}, fmt.Errorf("%w: %s", ErrInvalidGistURL, url)
}

// GistFile is one file of a gist.
type GistFile struct {
	Content  *string `json:"content,omitempty"`
	Filename string  `json:"filename,omitempty"`
	Language string  `json:"language,omitempty"`
}

// Gist is the subset of the gist API object tidysnips reads and writes.
type Gist struct {
	Files       map[string]GistFile `json:"files"`
	ID          string              `json:"id,omitempty"`
	URL         string              `json:"url,omitempty"`
	HTMLURL     string              `json:"html_url,omitempty"`
	Description string              `json:"description"`
	Public      bool                `json:"public"`
}

// DecodeGists parses either one gist object or a list of gists.
func DecodeGists(data []byte) ([]Gist, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var gists []Gist
		if err := json.Unmarshal(data, &gists); err != nil {
			return nil, fmt.Errorf("parsing gist list: %w", err)
		}
		return gists, nil
	}

	var g Gist
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing gist: %w", err)
	}
	return []Gist{g}, nil
}

// GistSources turns gist files into raw snippet sources of kind Gist, sorted
// by name. Files without inline content (as in gist listings) are reported
// and skipped.
func GistSources(gists []Gist) Result {
	var res Result
	for _, g := range gists {
		for name, f := range g.Files {
			if f.Content == nil {
				res.Errors = append(res.Errors, &FileError{Op: "import", Path: g.ID + "/" + name, Err: ErrMissingContent})
				continue
			}
			res.Sources = append(res.Sources, Source{
				Name: name,
				Raw:  *f.Content,
				Kind: snippet.SourceGist,
			})
		}
	}
	sort.SliceStable(res.Sources, func(i, j int) bool { return res.Sources[i].Name < res.Sources[j].Name })
	return res
}

// FindCollectionGist returns the gist carrying DefaultGistDescription.
func FindCollectionGist(gists []Gist) (Gist, bool) {
	for _, g := range gists {
		if g.Description == DefaultGistDescription {
			return g, true
		}
	}
	return Gist{}, false
}

// EncodeGistPayload builds the request body that uploads snippets. When
// existing is given, its files that are not part of the upload are marked for
// deletion so the gist mirrors the collection.
func EncodeGistPayload(snippets []snippet.Snippet, existing *Gist) ([]byte, error) {
	files := make(map[string]*GistFile, len(snippets))
	if existing != nil {
		for name := range existing.Files {
			files[name] = nil
		}
	}
	for _, s := range snippets {
		content := s.Encode()
		files[s.Name] = &GistFile{Content: &content}
	}

	payload := struct {
		Files       map[string]*GistFile `json:"files"`
		Description string               `json:"description"`
		Public      bool                 `json:"public"`
	}{
		Description: DefaultGistDescription,
		Public:      true,
		Files:       files,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding gist payload: %w", err)
	}
	return data, nil
}
