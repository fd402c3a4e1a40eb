package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AntoineGS/tidysnips/internal/config"
	"github.com/AntoineGS/tidysnips/internal/insert"
	"github.com/AntoineGS/tidysnips/internal/snippet"
	"github.com/spf13/pflag"
)

// executeCmd runs the CLI with args and returns everything it printed.
func executeCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// writeConfig creates an app configuration rooted in a temp directory.
func writeConfig(t *testing.T) (cfgPath, dir string) {
	t.Helper()

	dir = t.TempDir()
	cfg := &config.AppConfig{
		DefaultDir:   filepath.Join(dir, "snippets"),
		GistDir:      filepath.Join(dir, "gists"),
		StateDB:      filepath.Join(dir, "history.db"),
		HistoryLimit: 5,
	}
	cfgPath = filepath.Join(dir, "config.yaml")
	if err := config.SaveAppConfigTo(cfg, cfgPath); err != nil {
		t.Fatalf("SaveAppConfigTo() error = %v", err)
	}
	return cfgPath, dir
}

const forrTemplate = "for {{$1:i}} := range {{$2:items}} {\n\t{{!cursor}}\n}\n"

func TestRunInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "custom", "config.yaml")

	out, err := executeCmd(t, "", "--config", path, "init")
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(out, "App configuration saved to "+path) {
		t.Errorf("unexpected output:\n%s", out)
	}

	cfg, err := config.LoadAppConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadAppConfigFrom() error = %v", err)
	}
	if want := filepath.Join(home, ".config", "tidysnips", "snippets"); cfg.DefaultDir != want {
		t.Errorf("DefaultDir = %s, want %s", cfg.DefaultDir, want)
	}
	if info, err := os.Stat(cfg.DefaultDir); err != nil || !info.IsDir() {
		t.Errorf("default dir %s not created: %v", cfg.DefaultDir, err)
	}

	_, err = executeCmd(t, "", "--config", path, "init")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v, want already exists", err)
	}

	if _, err := executeCmd(t, "", "--config", path, "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestSnippetLifecycle(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	out, err := executeCmd(t, forrTemplate, "--config", cfgPath, "add", "forr", "--meta", "lang=go")
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	if !strings.Contains(out, "Created snippet forr") {
		t.Errorf("add output:\n%s", out)
	}

	stored, err := os.ReadFile(filepath.Join(dir, "snippets", "forr"))
	if err != nil {
		t.Fatalf("reading stored snippet: %v", err)
	}
	if want := "##lang: go\n" + strings.TrimSuffix(forrTemplate, "\n"); string(stored) != want {
		t.Errorf("stored = %q, want %q", stored, want)
	}

	out, err = executeCmd(t, "", "--config", cfgPath, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	for _, want := range []string{"forr [user] (go)", "├─ vars: $1:i, $2:items"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCmd(t, "", "--config", cfgPath, "render", "forr", "--set", "1=k", "--set", "2=xs")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if want := "for k := range xs {\n\t\n}\n"; out != want {
		t.Errorf("render output = %q, want %q", out, want)
	}

	// The last values used pre-fill the next run.
	out, err = executeCmd(t, "", "--config", cfgPath, "vars", "forr")
	if err != nil {
		t.Fatalf("vars error = %v", err)
	}
	if want := "$1:i = \"k\"\n$2:items = \"xs\"\n"; out != want {
		t.Errorf("vars output = %q, want %q", out, want)
	}

	out, err = executeCmd(t, "", "--config", cfgPath, "recent")
	if err != nil {
		t.Fatalf("recent error = %v", err)
	}
	if !strings.Contains(out, "forr") {
		t.Errorf("recent output missing forr:\n%s", out)
	}

	if _, err := executeCmd(t, "", "--config", cfgPath, "edit", "forr", "--name", "loop", "--meta", "lang="); err != nil {
		t.Fatalf("edit error = %v", err)
	}
	out, err = executeCmd(t, "", "--config", cfgPath, "show", "loop")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if want := strings.TrimSuffix(forrTemplate, "\n") + "\n"; out != want {
		t.Errorf("show output = %q, want %q", out, want)
	}

	if _, err := executeCmd(t, "", "--config", cfgPath, "rm", "loop"); err != nil {
		t.Fatalf("rm error = %v", err)
	}
	if _, err := executeCmd(t, "", "--config", cfgPath, "show", "loop"); err == nil {
		t.Error("show after rm succeeded, want not found")
	}
}

func TestRender_MissingValue(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	if _, err := executeCmd(t, forrTemplate, "--config", cfgPath, "add", "forr"); err != nil {
		t.Fatalf("add error = %v", err)
	}

	_, err := executeCmd(t, "", "--config", cfgPath, "render", "forr", "--set", "1=k")
	if err == nil || !strings.Contains(err.Error(), "items") {
		t.Errorf("render error = %v, want missing items", err)
	}
}

func TestInsert(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	if _, err := executeCmd(t, forrTemplate, "--config", cfgPath, "add", "forr"); err != nil {
		t.Fatalf("add error = %v", err)
	}

	target := filepath.Join(dir, "main.go")
	original := "func f() {\n\tx := 1\n}\n"
	if err := os.WriteFile(target, []byte(original), 0o600); err != nil {
		t.Fatal(err)
	}

	args := []string{"--config", cfgPath, "insert", "forr", "--file", target, "--at", "2:8", "--set", "1=i", "--set", "2=rows"}

	out, err := executeCmd(t, "", append(args, "--dry-run")...)
	if err != nil {
		t.Fatalf("insert --dry-run error = %v", err)
	}
	if !strings.Contains(out, "+ \tfor i := range rows {") {
		t.Errorf("dry-run diff missing inserted line:\n%s", out)
	}
	if data, _ := os.ReadFile(target); string(data) != original {
		t.Errorf("dry run changed the file:\n%s", data)
	}

	out, err = executeCmd(t, "", args...)
	if err != nil {
		t.Fatalf("insert error = %v", err)
	}
	if !strings.Contains(out, "Inserted forr into "+target) {
		t.Errorf("insert output:\n%s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\tx := 1\n\tfor i := range rows {\n") {
		t.Errorf("file after insert:\n%s", data)
	}
}

func TestGistImportExport(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	payload := `{"id":"abc","description":"My code snippets (created using tidysnips)","files":{"iferr":{"filename":"iferr","content":"if err != nil {\n\treturn {{$1:err}}\n}"}}}`
	out, err := executeCmd(t, payload, "--config", cfgPath, "import-gist", "-")
	if err != nil {
		t.Fatalf("import-gist error = %v", err)
	}
	if !strings.Contains(out, "Imported 1 snippets") {
		t.Errorf("import output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "gists", "iferr")); err != nil {
		t.Errorf("gist snippet not written: %v", err)
	}

	out, err = executeCmd(t, "", "--config", cfgPath, "list", "--source", "gist")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "iferr [gist]") {
		t.Errorf("list output:\n%s", out)
	}

	out, err = executeCmd(t, "", "--config", cfgPath, "list", "--source", "user")
	if err != nil {
		t.Fatalf("list --source user error = %v", err)
	}
	if !strings.Contains(out, "No snippets found.") {
		t.Errorf("list --source user output:\n%s", out)
	}

	if _, err := executeCmd(t, "", "--config", cfgPath, "list", "--source", "nope"); err == nil {
		t.Error("list --source nope: want error")
	}

	existing := filepath.Join(dir, "existing.json")
	if err := os.WriteFile(existing, []byte(`{"id":"abc","description":"x","files":{"old":{"filename":"old"}}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err = executeCmd(t, "", "--config", cfgPath, "export-gist", "--existing", existing)
	if err != nil {
		t.Fatalf("export-gist error = %v", err)
	}
	for _, want := range []string{`"old": null`, `"iferr": {`, `"description": "My code snippets (created using tidysnips)"`} {
		if !strings.Contains(out, want) {
			t.Errorf("export output missing %s:\n%s", want, out)
		}
	}
}

func TestExportGist_NewCollection(t *testing.T) {
	cfgPath, dir := writeConfig(t)

	if _, err := executeCmd(t, "echo {{$1:msg}}", "--config", cfgPath, "add", "say", "--meta", "lang=sh"); err != nil {
		t.Fatalf("add error = %v", err)
	}

	out, err := executeCmd(t, "", "--config", cfgPath, "export-gist")
	if err != nil {
		t.Fatalf("export-gist error = %v", err)
	}
	for _, want := range []string{`"say": {`, `"content": "##lang: sh\necho {{$1:msg}}"`, `"public": true`} {
		if !strings.Contains(out, want) {
			t.Errorf("export output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "null") {
		t.Errorf("export without existing gist deletes files:\n%s", out)
	}

	target := filepath.Join(dir, "payload.json")
	out, err = executeCmd(t, "", "--config", cfgPath, "export-gist", "--output", target)
	if err != nil {
		t.Fatalf("export-gist --output error = %v", err)
	}
	if !strings.Contains(out, "Gist payload written to "+target) {
		t.Errorf("export --output output:\n%s", out)
	}
	if data, err := os.ReadFile(target); err != nil || !strings.Contains(string(data), `"say"`) {
		t.Errorf("payload file = %q, %v", data, err)
	}
}

func TestRootCmd_SubcommandFlagsDoNotClash(t *testing.T) {
	root := newRootCmd()
	for _, sub := range root.Commands() {
		t.Run(sub.Name(), func(t *testing.T) {
			seen := map[string]string{}
			check := func(name, short string) {
				if short == "" {
					return
				}
				if other, ok := seen[short]; ok && other != name {
					t.Errorf("-%s used by --%s and --%s", short, other, name)
				}
				seen[short] = name
			}
			for _, fs := range []*pflag.FlagSet{root.PersistentFlags(), sub.LocalNonPersistentFlags()} {
				fs.VisitAll(func(f *pflag.Flag) { check(f.Name, f.Shorthand) })
			}
		})
	}
}

func TestGistAPI(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://gist.github.com/alice/abc123", want: "https://api.github.com/gists/abc123\n"},
		{url: "https://gist.github.com/alice", want: "https://api.github.com/users/alice/gists\n"},
		{url: "https://example.com/alice", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			out, err := executeCmd(t, "", "gist-api", tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pairs   []string
		want    map[int]string
		wantErr bool
	}{
		{name: "plain", pairs: []string{"1=a", "2=b=c"}, want: map[int]string{1: "a", 2: "b=c"}},
		{name: "dollar", pairs: []string{"$3=x"}, want: map[int]string{3: "x"}},
		{name: "empty_value", pairs: []string{"1="}, want: map[int]string{1: ""}},
		{name: "no_equals", pairs: []string{"1"}, wantErr: true},
		{name: "zero_index", pairs: []string{"0=a"}, wantErr: true},
		{name: "not_a_number", pairs: []string{"x=a"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseAssignments(tt.pairs)
			if tt.wantErr {
				if !errors.Is(err, errBadAssignment) {
					t.Errorf("error = %v, want errBadAssignment", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%d] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestParseMeta(t *testing.T) {
	t.Parallel()

	meta, err := parseMeta([]string{"lang=go", "desc = a loop "})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got := meta.Keys(); len(got) != 2 || got[0] != "lang" || got[1] != "desc" {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := meta.Get("desc"); v != "a loop" {
		t.Errorf("desc = %q", v)
	}

	if _, err := parseMeta([]string{"=x"}); !errors.Is(err, errBadMeta) {
		t.Errorf("error = %v, want errBadMeta", err)
	}
	if _, err := parseMeta([]string{"my-key=v", "lang=go"}); !errors.Is(err, snippet.ErrInvalidMetaKey) {
		t.Errorf("error = %v, want ErrInvalidMetaKey", err)
	}
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    insert.Range
		wantErr bool
	}{
		{in: "1:1-2:3", want: insert.Range{Start: insert.Position{}, End: insert.Position{Line: 1, Col: 2}}},
		{in: "3:2-1:5", want: insert.Range{Start: insert.Position{Col: 4}, End: insert.Position{Line: 2, Col: 1}}},
		{in: "1:1", wantErr: true},
		{in: "0:1-1:1", wantErr: true},
		{in: "1:x-2:2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseRange(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadTemplate(t *testing.T) {
	t.Parallel()

	got, err := readTemplate("-", strings.NewReader("a\nb\n"))
	if err != nil || got != "a\nb" {
		t.Errorf("stdin: got %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "tpl")
	if err := os.WriteFile(path, []byte("x {{$1:y}}"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = readTemplate(path, nil)
	if err != nil || got != "x {{$1:y}}" {
		t.Errorf("file: got %q, %v", got, err)
	}

	if _, err := readTemplate(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("missing file: want error")
	}
}

func TestDetectPlatform_Overrides(t *testing.T) {
	t.Cleanup(func() { osOverride, userName, hostName = "", "", "" })

	osOverride, userName, hostName = "windows", "bob", "buildbox"
	plat, err := detectPlatform()
	if err != nil {
		t.Fatalf("detectPlatform() error = %v", err)
	}
	if plat.OS != "windows" || plat.User != "bob" || plat.Hostname != "buildbox" {
		t.Errorf("platform = %+v", plat)
	}

	osOverride = "plan9"
	if _, err := detectPlatform(); err == nil {
		t.Error("invalid OS override: want error")
	}
}

func TestRender_UsesUserOverride(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	if _, err := executeCmd(t, "// by {{$1:author}}", "--config", cfgPath, "add", "sig", "--meta", "default1={{ .User }}"); err != nil {
		t.Fatalf("add error = %v", err)
	}

	out, err := executeCmd(t, "", "--config", cfgPath, "--user", "carol", "render", "sig")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if out != "// by carol\n" {
		t.Errorf("render output = %q", out)
	}
}
