package template

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/AntoineGS/tidysnips/internal/snippet"
	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/registry/env"
	"github.com/go-sprout/sprout/registry/std"
	sproutstrings "github.com/go-sprout/sprout/registry/strings"
	sprouttime "github.com/go-sprout/sprout/registry/time"
)

// DefaultKeyPrefix is the meta key prefix declaring a variable default, as in
// "##default1: {{ .User }}".
const DefaultKeyPrefix = "default"

// Engine renders Go templates with sprout functions against a Context.
type Engine struct {
	ctx   *Context
	funcs template.FuncMap
}

// NewEngine creates an Engine bound to ctx.
func NewEngine(ctx *Context) *Engine {
	handler := sprout.New()
	// Registry registration only fails on duplicate registries.
	_ = handler.AddRegistries(
		std.NewRegistry(),
		sproutstrings.NewRegistry(),
		env.NewRegistry(),
		sprouttime.NewRegistry(),
	)

	if ctx == nil {
		ctx = &Context{Env: map[string]string{}}
	}

	return &Engine{ctx: ctx, funcs: handler.Build()}
}

func (e *Engine) render(name, text string, data *Context) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tpl, err := template.New(name).Option("missingkey=zero").Funcs(e.funcs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// Defaults renders the default values that s declares for its variables.
// A default that fails to render is reported in the returned error and left
// out of the map; the other defaults are still returned.
func (e *Engine) Defaults(s snippet.Snippet) (map[int]string, error) {
	out := make(map[int]string)
	if s.Meta == nil {
		return out, nil
	}

	lang, _ := s.Lang()
	data := e.ctx.forSnippet(s.Name, lang)

	var failed []string
	for _, key := range s.Meta.Keys() {
		idx, ok := defaultIndex(key)
		if !ok {
			continue
		}
		raw, _ := s.Meta.Get(key)
		v, err := e.render(s.Name+"/"+key, raw, data)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		out[idx] = v
	}

	if len(failed) > 0 {
		return out, fmt.Errorf("%w: %s", ErrInvalidDefault, strings.Join(failed, "; "))
	}
	return out, nil
}

func defaultIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, DefaultKeyPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 1 {
		return 0, false
	}
	return idx, true
}
