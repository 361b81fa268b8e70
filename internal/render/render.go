// Package render substitutes ${NAME} references in template text with values
// from a Context.
package render

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// RequiredKeys must be present in every Context used for generation.
var RequiredKeys = []string{
	"org_name",
	"repo_name",
	"default_branch",
	"default_foundation",
	"default_pipeline",
}

// EnvPrefix namespaces entries from the environment-variable sub-mapping.
const EnvPrefix = "env_"

var (
	varPattern   = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)
	shellPattern = regexp.MustCompile(`^#!\S*(/|\s)(ba|z|k|da)?sh(\s|$)`)
)

// Context is an immutable set of render variables. Keys are lower-case.
type Context struct {
	values map[string]string
}

// NewContext builds a Context from plain values and an environment-variable
// sub-mapping. Env entries become reachable as env_<name>.
func NewContext(values, env map[string]string) Context {
	m := make(map[string]string, len(values)+len(env))
	for k, v := range values {
		m[strings.ToLower(k)] = v
	}
	for k, v := range env {
		m[EnvPrefix+strings.ToLower(k)] = v
	}
	return Context{values: m}
}

// Lookup is an exact-key lookup.
func (c Context) Lookup(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Keys returns the sorted variable names.
func (c Context) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Missing returns the required keys c does not define.
func (c Context) Missing() []string {
	var out []string
	for _, k := range RequiredKeys {
		if _, ok := c.values[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// Validate returns an error naming every missing required key.
func (c Context) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("render context missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsShellScript reports whether the first line of text is an interpreter
// marker for a shell dialect.
func IsShellScript(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return shellPattern.MatchString(strings.TrimRight(first, "\r"))
}

// Render replaces every ${NAME} reference in text. Shell scripts look NAME
// up exactly as written so upper-case shell variables are never shadowed;
// every other file lower-cases NAME first. Unknown references are left as is.
func Render(text string, ctx Context) string {
	preserveCase := IsShellScript(text)
	return varPattern.ReplaceAllStringFunc(text, func(ref string) string {
		name := ref[2 : len(ref)-1]
		if !preserveCase {
			name = strings.ToLower(name)
		}
		if v, ok := ctx.Lookup(name); ok {
			return v
		}
		return ref
	})
}

// Unresolved returns the distinct references Render would leave untouched,
// in order of first appearance.
func Unresolved(text string, ctx Context) []string {
	preserveCase := IsShellScript(text)
	var out []string
	seen := make(map[string]bool)
	for _, m := range varPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if !preserveCase {
			name = strings.ToLower(name)
		}
		if _, ok := ctx.Lookup(name); ok || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}
