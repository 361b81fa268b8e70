package compliance

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/malston/tkgi-pipeline-standards/internal/manifest"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

// RelaxationSet removes required entries from a single validation run.
// Entries are exact slash-separated paths or doublestar glob patterns.
type RelaxationSet struct {
	SkipDirectories []string `json:"skip_directories,omitempty" yaml:"skip_directories,omitempty"`
	SkipFiles       []string `json:"skip_files,omitempty" yaml:"skip_files,omitempty"`
	SkipTasks       []string `json:"skip_tasks,omitempty" yaml:"skip_tasks,omitempty"`
}

// LoadRelaxations reads a relaxation file. The format follows the file
// extension (.json, .yaml, .yml or .toml) and the content is checked against
// the relaxation schema. Both skip_files and skip-files spellings are read.
func LoadRelaxations(fs afero.Fs, path string) (*RelaxationSet, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading relaxation file: %w", err)
	}

	doc, err := manifest.Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("loading relaxation file: %w", err)
	}

	result, err := manifest.ValidateDocument(manifest.SchemaRelaxation, doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid relaxation file %s: %s", path, result.Summary())
	}

	return &RelaxationSet{
		SkipDirectories: stringList(doc, "skip_directories", "skip-directories"),
		SkipFiles:       stringList(doc, "skip_files", "skip-files"),
		SkipTasks:       stringList(doc, "skip_tasks", "skip-tasks"),
	}, nil
}

func stringList(doc map[string]any, keys ...string) []string {
	var out []string
	for _, k := range keys {
		items, _ := doc[k].([]any)
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Merge returns the union of r and other. Duplicates are dropped.
func (r RelaxationSet) Merge(other RelaxationSet) RelaxationSet {
	return RelaxationSet{
		SkipDirectories: union(r.SkipDirectories, other.SkipDirectories),
		SkipFiles:       union(r.SkipFiles, other.SkipFiles),
		SkipTasks:       union(r.SkipTasks, other.SkipTasks),
	}
}

// IsEmpty reports whether the set relaxes nothing.
func (r RelaxationSet) IsEmpty() bool {
	return len(r.SkipDirectories) == 0 && len(r.SkipFiles) == 0 && len(r.SkipTasks) == 0
}

// Apply returns a copy of d without the relaxed entries.
func (r RelaxationSet) Apply(d templatetype.Descriptor) templatetype.Descriptor {
	out := d.Clone()
	out.RequiredDirs = relax(out.RequiredDirs, r.SkipDirectories, func(s string) string { return s })
	out.RequiredFiles = relax(out.RequiredFiles, r.SkipFiles, func(f templatetype.RequiredFile) string { return f.Path })
	out.CriticalTaskDirs = relax(out.CriticalTaskDirs, r.SkipTasks, func(s string) string { return s })
	return out
}

// relax drops every entry matched by a pattern. A pattern that names an
// entry exactly removes only that entry; otherwise it is treated as a glob
// and removes every entry it matches.
func relax[T any](entries []T, patterns []string, key func(T) string) []T {
	for _, p := range patterns {
		if i := slices.IndexFunc(entries, func(e T) bool { return key(e) == p }); i >= 0 {
			entries = slices.Delete(entries, i, i+1)
			continue
		}
		entries = slices.DeleteFunc(entries, func(e T) bool {
			ok, err := doublestar.Match(p, key(e))
			return err == nil && ok
		})
	}
	return entries
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
