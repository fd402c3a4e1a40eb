package loader

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/AntoineGS/tidysnips/internal/snippet"
)

func TestParseGistURL(t *testing.T) {
	tests := []struct {
		url     string
		want    GistRef
		wantAPI string
		wantErr bool
	}{
		{
			url:     "https://gist.github.com/zaggino/61ae7090b1d9e67ea013",
			want:    GistRef{User: "zaggino", ID: "61ae7090b1d9e67ea013"},
			wantAPI: "https://api.github.com/gists/61ae7090b1d9e67ea013",
		},
		{
			url:     "https://gist.github.com/zaggino/public",
			want:    GistRef{User: "zaggino"},
			wantAPI: "https://api.github.com/users/zaggino/gists",
		},
		{
			url:     "https://gist.github.com/zaggino",
			want:    GistRef{User: "zaggino"},
			wantAPI: "https://api.github.com/users/zaggino/gists",
		},
		{url: "https://example.com/nothing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseGistURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidGistURL) {
					t.Errorf("error = %v, want ErrInvalidGistURL", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGistURL() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseGistURL() = %+v, want %+v", got, tt.want)
			}
			if got.APIURL() != tt.wantAPI {
				t.Errorf("APIURL() = %q, want %q", got.APIURL(), tt.wantAPI)
			}
		})
	}
}

const singleGist = `{
  "id": "abc",
  "description": "snips",
  "public": true,
  "files": {
    "zeta": {"filename": "zeta", "content": "##lang: js\nz()"},
    "alpha": {"filename": "alpha", "content": "a()"}
  }
}`

func TestDecodeGists_Single(t *testing.T) {
	gists, err := DecodeGists([]byte(singleGist))
	if err != nil {
		t.Fatalf("DecodeGists() error: %v", err)
	}
	res := GistSources(gists)
	if len(res.Errors) != 0 {
		t.Errorf("errors = %v", res.Errors)
	}
	if len(res.Sources) != 2 || res.Sources[0].Name != "alpha" || res.Sources[1].Name != "zeta" {
		t.Fatalf("Sources = %+v", res.Sources)
	}
	for _, s := range res.Sources {
		if s.Kind != snippet.SourceGist {
			t.Errorf("%s kind = %s, want gist", s.Name, s.Kind)
		}
	}
	if res.Sources[1].Raw != "##lang: js\nz()" {
		t.Errorf("Raw = %q", res.Sources[1].Raw)
	}
}

func TestDecodeGists_ListWithoutContent(t *testing.T) {
	data := `[{"id": "1", "description": "x", "files": {"a": {"filename": "a"}}}]`
	gists, err := DecodeGists([]byte(data))
	if err != nil {
		t.Fatalf("DecodeGists() error: %v", err)
	}
	res := GistSources(gists)
	if len(res.Sources) != 0 || len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrMissingContent) {
		t.Errorf("result = %+v", res)
	}
}

func TestDecodeGists_Invalid(t *testing.T) {
	if _, err := DecodeGists([]byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestEncodeGistPayload(t *testing.T) {
	snippets := []snippet.Snippet{
		{Name: "a", Template: "a()", Meta: snippet.MetaFromPairs("lang", "js"), Source: snippet.SourceUser},
	}
	existing := &Gist{Files: map[string]GistFile{"old": {Filename: "old"}, "a": {Filename: "a"}}}

	data, err := EncodeGistPayload(snippets, existing)
	if err != nil {
		t.Fatalf("EncodeGistPayload() error: %v", err)
	}

	var decoded struct {
		Files       map[string]*GistFile `json:"files"`
		Description string               `json:"description"`
		Public      bool                 `json:"public"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.Description != DefaultGistDescription || !decoded.Public {
		t.Errorf("payload header = %+v", decoded)
	}
	if f, ok := decoded.Files["old"]; !ok || f != nil {
		t.Errorf("old file should be null, got %v (present=%v)", f, ok)
	}
	if f := decoded.Files["a"]; f == nil || f.Content == nil || *f.Content != "##lang: js\na()" {
		t.Errorf("file a = %+v", f)
	}
}

func TestFindCollectionGist(t *testing.T) {
	gists := []Gist{{ID: "1", Description: "other"}, {ID: "2", Description: DefaultGistDescription}}
	g, ok := FindCollectionGist(gists)
	if !ok || g.ID != "2" {
		t.Errorf("FindCollectionGist() = %+v, %v", g, ok)
	}
	if _, ok := FindCollectionGist(gists[:1]); ok {
		t.Error("expected no match")
	}
}
