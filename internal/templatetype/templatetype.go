package templatetype

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Type identifies a template variant.
type Type string

const (
	Kustomize Type = "kustomize"
	Helm      Type = "helm"
	CLITool   Type = "cli-tool"
)

// TasksRoot is the directory holding task categories.
const TasksRoot = "ci/tasks"

// CommonCategories are emitted and required for every template type.
var CommonCategories = []string{"common", "tkgi", "testing"}

// All returns every supported template type in declaration order.
func All() []Type {
	return []Type{Kustomize, Helm, CLITool}
}

// Parse converts a user-supplied name to a Type. Matching is case-insensitive.
func Parse(name string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(All(), t) {
		return t, nil
	}
	names := make([]string, 0, len(All()))
	for _, v := range All() {
		names = append(names, string(v))
	}
	return "", fmt.Errorf("unknown template type %q, must be one of: %s", name, strings.Join(names, ", "))
}

func (t Type) String() string { return string(t) }

// Categories returns the task categories specific to t. Categories may be
// shared between types (k8s is used by both kustomize and helm).
func (t Type) Categories() []string {
	switch t {
	case Kustomize:
		return []string{"k8s"}
	case Helm:
		return []string{"helm", "k8s"}
	case CLITool:
		return []string{"cli-tool"}
	default:
		return nil
	}
}

// IsCommonCategory reports whether category is included for every type.
func IsCommonCategory(category string) bool {
	return slices.Contains(CommonCategories, category)
}

// IsCategoryAllowed reports whether files under ci/tasks/<category> belong in
// a project of type t. A category claimed only by other template types is
// rejected; categories nobody claims are allowed.
func IsCategoryAllowed(t Type, category string) bool {
	if IsCommonCategory(category) || slices.Contains(t.Categories(), category) {
		return true
	}
	for _, other := range All() {
		if other != t && slices.Contains(other.Categories(), category) {
			return false
		}
	}
	return true
}

// RequiredFile is a file every project of a type must contain.
type RequiredFile struct {
	Path       string
	Executable bool
}

// Patterns are the content rules every standalone script must satisfy.
type Patterns struct {
	Shebang    *regexp.Regexp
	StrictMode *regexp.Regexp
	ScriptDir  *regexp.Regexp
}

// Descriptor is the structural contract of a template type.
type Descriptor struct {
	Type             Type
	RequiredDirs     []string
	RequiredFiles    []RequiredFile
	CriticalTaskDirs []string
	ScriptPatterns   Patterns
}

// Clone returns a copy whose slices can be modified freely. Compiled
// patterns are immutable and shared.
func (d Descriptor) Clone() Descriptor {
	return Descriptor{
		Type:             d.Type,
		RequiredDirs:     slices.Clone(d.RequiredDirs),
		RequiredFiles:    slices.Clone(d.RequiredFiles),
		CriticalTaskDirs: slices.Clone(d.CriticalTaskDirs),
		ScriptPatterns:   d.ScriptPatterns,
	}
}

// AllCategories returns the common categories followed by the type-specific ones.
func (d Descriptor) AllCategories() []string {
	return append(slices.Clone(CommonCategories), d.Type.Categories()...)
}

// ExecutableFiles returns the required file paths flagged executable.
func (d Descriptor) ExecutableFiles() []string {
	var out []string
	for _, f := range d.RequiredFiles {
		if f.Executable {
			out = append(out, f.Path)
		}
	}
	return out
}

// Lookup returns a private copy of the descriptor for t.
func Lookup(t Type) (Descriptor, error) {
	d, ok := table[t]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown template type %q", t)
	}
	return d.Clone(), nil
}
