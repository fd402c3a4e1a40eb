package template

import (
	"os"
	"strings"

	"github.com/AntoineGS/tidysnips/internal/platform"
)

// Context holds platform-aware data available to default value templates.
type Context struct {
	Env      map[string]string
	OS       string
	Hostname string
	User     string
	// Snippet and Lang describe the snippet whose defaults are rendered.
	Snippet string
	Lang    string
}

// NewContextFromPlatform creates a Context from platform detection results,
// merging platform EnvVars with the process environment.
func NewContextFromPlatform(p *platform.Platform) *Context {
	env := make(map[string]string)

	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	// Platform-specific env vars override the process env
	for k, v := range p.EnvVars {
		env[k] = v
	}

	return &Context{
		OS:       p.OS,
		Hostname: p.Hostname,
		User:     p.User,
		Env:      env,
	}
}

func (c *Context) forSnippet(name, lang string) *Context {
	c2 := *c
	c2.Snippet = name
	c2.Lang = lang
	return &c2
}
